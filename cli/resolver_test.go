package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolve_Flatten(t *testing.T) {
	src := `
config:
  log_level: debug
  log-pretty: false
  render:
    max-depth: 20
    strict: true
  tags: [a, b]
  unset: null
`

	res, err := resolve("config")(strings.NewReader(src))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got, ok := res.(config)
	if !ok {
		t.Fatalf("expected config resolver, got %T", res)
	}

	want := map[string]any{
		"log-level":        "debug",
		"log-pretty":       false,
		"render-max-depth": "20",
		"render-strict":    true,
		"tags":             "a,b",
	}

	if len(got) != len(want) {
		t.Errorf("expected %d keys, got %d: %v", len(want), len(got), got)
	}

	for key, value := range want {
		if got[key] != value {
			t.Errorf("%s: expected %v (%T), got %v (%T)",
				key, value, value, got[key], got[key])
		}
	}
}

func TestResolve_TopLevelWithoutNamespace(t *testing.T) {
	res, err := resolve("config")(strings.NewReader("log-format: json\n"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if got := res.(config)["log-format"]; got != "json" {
		t.Errorf("expected json, got %v", got)
	}
}

func TestResolve_EmptyAndInvalid(t *testing.T) {
	res, err := resolve("config")(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}

	if len(res.(config)) != 0 {
		t.Errorf("expected empty config, got %v", res)
	}

	if _, err := resolve("config")(strings.NewReader("- a\n- b\n")); err == nil {
		t.Error("expected error for a sequence document")
	}
}

func TestResolve_AppliesToKongFlags(t *testing.T) {
	src := `
config:
  log-level: debug
  render:
    max-depth: 20
    strict: true
  max-depth: 99
`

	res, err := resolve("config")(strings.NewReader(src))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var cli struct {
		Log struct {
			Level string `default:"info"`
		} `embed:"" prefix:"log-"`

		Render struct {
			MaxDepth int  `default:"50"`
			Strict   bool `default:"false"`
		} `cmd:""`
	}

	parser, err := kong.New(&cli, kong.Resolvers(res), kong.Exit(func(int) {}))
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}

	if _, err := parser.Parse([]string{"render"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cli.Log.Level != "debug" {
		t.Errorf("log level: expected debug, got %q", cli.Log.Level)
	}

	if cli.Render.MaxDepth != 20 || !cli.Render.Strict {
		t.Errorf("render flags: expected 20/true, got %d/%v",
			cli.Render.MaxDepth, cli.Render.Strict)
	}

	if _, err := parser.Parse([]string{"render", "--max-depth=3"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cli.Render.MaxDepth != 3 {
		t.Errorf("command line must override config, got %d", cli.Render.MaxDepth)
	}
}

func TestJSONConfigFile(t *testing.T) {
	if got := jsonConfigFile("/a/b/config.yaml"); got != "/a/b/config.json" {
		t.Errorf("got %q", got)
	}
}
