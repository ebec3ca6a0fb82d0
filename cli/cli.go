package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cropenv/cli/cmd"
	"github.com/ardnew/cropenv/pkg"
)

// baseConfig is the file name of the configuration file in the
// configuration directory.
const baseConfig = "config"

// CLI is the top-level command-line interface for cropenv.
type CLI struct {
	Log      logConfig      `embed:"" group:"log"      prefix:"log-"`
	Pprof    pprofConfig    `embed:"" group:"pprof"    prefix:"pprof-"`
	Resolver resolverConfig `embed:"" group:"resolver"`

	Init    cmd.Init    `cmd:"" help:"Initialize configuration file"`
	Env     cmd.Env     `cmd:"" help:"Compose the environment document of a simulation run"`
	Macros  cmd.Macros  `cmd:"" help:"List macros"`
	Resolve cmd.Resolve `cmd:"" help:"Resolve the macros of a document" default:"withargs"`
}

// Run executes the cropenv CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, nil, args...)
}

// run is [Run] with additional kong options, used by tests to redirect
// output and configuration.
func run(
	ctx context.Context,
	exit func(code int),
	extra []kong.Option,
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Resolver.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that the logger is configured before
	// kong reports parse errors, regardless of flag position.
	cli.Log.scan(args)

	opts := []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{
			cli.Log.group(), cli.Pprof.group(), cli.Resolver.group(),
		}),
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
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(configLoader(ctx), configFilePath),
		vars,
	}

	parser, err := kong.New(&cli, append(opts, extra...)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Apply logger flags that have no TextUnmarshaler, such as the time
	// layout and caller.
	cli.Log.start(ctx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithResolver(ctx, cli.Resolver.resolver())

	return ktx.Run(ctx, &cli)
}
