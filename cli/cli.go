package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tagmacro/cli/cmd"
	"github.com/ardnew/tagmacro/pkg"
)

// CLI is the top-level command-line interface for tagmacro.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Render cmd.Render `cmd:"" default:"withargs" help:"Render a template against data (default)"`
	Fmt    cmd.Fmt    `cmd:""                    help:"Print the parsed tree of a template"`
	Funcs  cmd.Funcs  `cmd:""                    help:"List builtin functions"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
	Repl   cmd.Repl   `cmd:""                    help:"Render templates interactively"`
}

// defaultDirMode is the permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

// Run executes the tagmacro CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFile := pkg.ConfigFile()

	vars := kong.Vars{
		"version":            pkg.Name + " " + pkg.Version,
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// TextUnmarshaler on logFormat/logLevel applies those flags during
	// parsing, but boolean flags like --log-pretty need the early scan.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, jsonConfigFile(configFile)),
		kong.Configuration(resolve(cmd.ConfigIdentifier), configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with values that bypass
	// TextUnmarshaler, such as TimeLayout and File.
	defer cli.Log.start(ctx)()

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// jsonConfigFile returns the JSON sibling of the YAML configuration file.
func jsonConfigFile(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
