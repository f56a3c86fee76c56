package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initTestCLI struct {
	Verbose bool   `help:"Verbose output"`
	Level   string `default:"info" help:"Log level"`
	Empty   string `help:"Unset value"`
	Secret  string `default:"x" help:"Hidden value" hidden:""`

	Render struct {
		Depth int `default:"7" help:"Depth"`
	} `cmd:"" default:"1" help:"Render"`
}

func initContext(t *testing.T, confPath string, args ...string) *kong.Context {
	t.Helper()

	var cli initTestCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return ktx
}

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ctx := WithContext(t.Context(), initContext(t, confPath, "--verbose"))

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}

				if got := readFile(t, confPath); got != "existing" {
					t.Errorf("existing file modified: %q", got)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			var doc map[string]map[string]any
			if err := yaml.Unmarshal([]byte(readFile(t, confPath)), &doc); err != nil {
				t.Fatalf("generated config is not YAML: %v", err)
			}

			settings, ok := doc[ConfigIdentifier]
			if !ok {
				t.Fatalf("missing %q namespace: %v", ConfigIdentifier, doc)
			}

			if settings["verbose"] != true || settings["level"] != "info" {
				t.Errorf("settings = %v", settings)
			}

			for _, key := range []string{"empty", "secret", "help"} {
				if _, ok := settings[key]; ok {
					t.Errorf("unexpected key %q in %v", key, settings)
				}
			}

			render, ok := settings["render"].(map[string]any)
			if !ok || fmt.Sprint(render["depth"]) != "7" {
				t.Errorf("render settings = %v", settings["render"])
			}
		})
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", false, false},
		{"string", "text", "text"},
		{"empty_string", "", nil},
		{"int", 3, 3},
		{"empty_slice", []string{}, nil},
		{"empty_map", map[string]string{}, nil},
		{"other", struct{ A int }{1}, "{1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flagValue(tt.in); fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("flagValue(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
