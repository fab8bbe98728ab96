// webui-embed applies config overrides to the firmware settings source and
// embeds the built web UI into a C++ header before the firmware is compiled.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nikicat/webui-embed/internal/cli"
	"github.com/nikicat/webui-embed/internal/config"
	"github.com/nikicat/webui-embed/internal/embed"
	"github.com/nikicat/webui-embed/internal/hook"
	"github.com/nikicat/webui-embed/internal/logging"
	"github.com/nikicat/webui-embed/internal/pipeline"
	"github.com/nikicat/webui-embed/internal/watch"
)

var progName = filepath.Base(os.Args[0])

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "generate":
		runGenerate(os.Args[2:])
	case "patch":
		runPatch(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "hook":
		runHook(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [options]

Commands:
  build         Apply config overrides, build the web UI and embed it
  generate      Embed an already built web UI (fails if nothing was embedded)
  patch         Apply config.json overrides to the settings source only
  watch         Regenerate the header whenever the web UI dist changes
  hook          Manage the PlatformIO pre-build hook

Run '%s <command> -h' for command-specific help.
`, progName, progName)
}

// common holds the flags every pipeline command accepts.
type common struct {
	fs         *flag.FlagSet
	configPath *string
	projectDir *string
	logLevel   *string
	logFormat  *string
	jsonOutput *bool
}

func newCommon(name string) *common {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &common{
		fs:         fs,
		configPath: fs.String("config", "", "Path to config file (default: <project>/"+config.FileName+")"),
		projectDir: fs.String("project", ".", "Firmware project directory"),
		logLevel:   fs.String("log-level", "info", "Log level: debug, info, warn, error"),
		logFormat:  fs.String("log-format", "text", "Log format: text (colored) or json"),
		jsonOutput: fs.Bool("json", false, "Print the result summary as JSON"),
	}
}

// setup loads the config, applies it to flags not explicitly set, installs
// the logger and resolves project paths. With soft set, a broken config
// file is reported and replaced by the defaults.
func (c *common) setup(soft bool) config.Paths {
	cfg, err := loadConfig(*c.configPath, *c.projectDir)
	if err != nil {
		if !soft {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = &config.Config{}
	}
	set := setFlags(c.fs)
	if !set["log-level"] && cfg.LogLevel != "" {
		*c.logLevel = cfg.LogLevel
	}
	if !set["log-format"] && cfg.LogFormat != "" {
		*c.logFormat = cfg.LogFormat
	}
	logging.Setup(*c.logLevel, *c.logFormat)

	paths, err := cfg.Resolve(*c.projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return paths
}

func (c *common) print(res *pipeline.Result) {
	if err := cli.NewFormatter(os.Stdout, *c.jsonOutput).FormatResult(res); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runBuild(args []string) {
	c := newCommon("build")
	hookMode := c.fs.Bool("hook", false, "Pre-build hook mode: never fail the firmware build")
	skipFrontend := c.fs.Bool("skip-frontend", false, "Do not run the web UI build tool")
	buildCommand := c.fs.String("build-command", "", "Web UI build command (default: "+config.DefaultBuildCommand+")")
	noCompress := c.fs.Bool("no-compress", false, "Embed assets without gzip")
	strict := c.fs.Bool("strict", false, "Fail when a config override finds no default to replace")
	c.fs.Parse(args)

	paths := c.setup(*hookMode)
	if *buildCommand != "" {
		paths.BuildCommand = *buildCommand
	}
	if *noCompress {
		paths.Compress = false
	}

	mode := pipeline.Standalone
	if *hookMode {
		mode = pipeline.Hook
	}

	ctx, stop := signalContext()
	defer stop()

	slog.Info("building and embedding web UI", "project", paths.ProjectDir)
	res, err := pipeline.Run(ctx, pipeline.Options{
		Paths:        paths,
		Mode:         mode,
		SkipFrontend: *skipFrontend,
		Strict:       *strict,
	})
	c.print(res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(args []string) {
	c := newCommon("generate")
	noCompress := c.fs.Bool("no-compress", false, "Embed assets without gzip")
	c.fs.Parse(args)

	paths := c.setup(false)
	if *noCompress {
		paths.Compress = false
	}

	res, err := pipeline.Run(context.Background(), pipeline.Options{
		Paths:        paths,
		Mode:         pipeline.Standalone,
		SkipPatch:    true,
		SkipFrontend: true,
		RequireDist:  true,
	})
	if errors.Is(err, embed.ErrNoDistDir) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Build the web UI first with: cd %s && %s\n", paths.WebUIDir, paths.BuildCommand)
		os.Exit(1)
	}
	c.print(res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runPatch(args []string) {
	c := newCommon("patch")
	strict := c.fs.Bool("strict", false, "Fail when a config override finds no default to replace")
	c.fs.Parse(args)

	paths := c.setup(false)
	res, err := pipeline.Run(context.Background(), pipeline.Options{
		Paths:        paths,
		SkipFrontend: true,
		SkipEmbed:    true,
		Strict:       *strict,
	})
	c.print(res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runWatch(args []string) {
	c := newCommon("watch")
	debounce := c.fs.Duration("debounce", config.DefaultDebounce, "Quiet period before regenerating")
	c.fs.Parse(args)

	paths := c.setup(false)
	if setFlags(c.fs)["debounce"] {
		paths.Debounce = *debounce
	}

	regenerate := func() error {
		res, err := pipeline.Run(context.Background(), pipeline.Options{
			Paths:        paths,
			Mode:         pipeline.Standalone,
			SkipPatch:    true,
			SkipFrontend: true,
		})
		if errors.Is(err, pipeline.ErrNothingEmbedded) {
			// The dist directory is often empty mid-build.
			slog.Debug("nothing to embed yet")
			return nil
		}
		if err == nil {
			c.print(res)
		}
		return err
	}

	w, err := watch.New(paths.DistDir, paths.Debounce, regenerate, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating watcher: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signalContext()
	defer stop()

	slog.Info("watching web UI dist", "dir", paths.DistDir, "header", paths.Header)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runHook handles the "hook" subcommand group (install/uninstall/status).
func runHook(args []string) {
	if len(args) == 0 {
		printHookUsage()
		os.Exit(1)
	}

	fs := flag.NewFlagSet("hook "+args[0], flag.ExitOnError)
	projectDir := fs.String("project", ".", "Firmware project directory")
	binary := fs.String("binary", "", "webui-embed binary the hook runs (default: this executable)")
	jsonOutput := fs.Bool("json", false, "Print status as JSON")

	switch args[0] {
	case "install":
		fs.Parse(args[1:])
		if _, err := hook.Install(hook.Options{ProjectDir: *projectDir, Binary: *binary}); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "uninstall":
		fs.Parse(args[1:])
		if err := hook.Uninstall(hook.Options{ProjectDir: *projectDir}); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "status":
		fs.Parse(args[1:])
		st, err := hook.Check(*projectDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cli.NewFormatter(os.Stdout, *jsonOutput).FormatHookStatus(st)
	case "-h", "--help", "help":
		printHookUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown hook command: %s\n\n", args[0])
		printHookUsage()
		os.Exit(1)
	}
}

func printHookUsage() {
	fmt.Fprintf(os.Stderr, `Usage: %s hook <command> [options]

Commands:
  install       Write the PlatformIO pre-build script
  uninstall     Remove the pre-build script
  status        Show whether the hook is installed and registered

Options:
  --project     Firmware project directory (default: .)
  --binary      webui-embed binary the hook runs (install only)
`, progName)
}

// loadConfig loads a config file. An explicit path that doesn't exist is an error.
// A missing default path is silently ignored (returns empty config).
func loadConfig(explicitPath, projectDir string) (*config.Config, error) {
	if explicitPath != "" {
		if _, statErr := os.Stat(explicitPath); statErr != nil {
			return nil, fmt.Errorf("config file not found: %s", explicitPath)
		}
		cfg, err := config.Load(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", explicitPath, err)
		}
		return cfg, nil
	}

	defaultPath := config.DefaultPath(projectDir)
	cfg, err := config.Load(defaultPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", defaultPath, err)
	}
	return cfg, nil
}

// setFlags returns the set of flag names that were explicitly provided on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	m := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { m[f.Name] = true })
	return m
}
