package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Makepad-fr/todolist/internal/cli"
	"github.com/Makepad-fr/todolist/internal/config"
	"github.com/Makepad-fr/todolist/internal/logging"
	"github.com/Makepad-fr/todolist/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Root flags (apply to every subcommand)
	fs := pflag.NewFlagSet("todolist", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		url        string
		file       string
		token      string
		logLevel   string
		logFile    string
		theme      string
		group      bool
	)
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&url, "url", "", "collection endpoint")
	fs.StringVar(&file, "file", "", "read the collection from a JSON file")
	fs.StringVar(&token, "token", "", "bearer token for the endpoint")
	fs.StringVar(&logLevel, "log-level", "", "debug|info|warn|error")
	fs.StringVar(&logFile, "log-file", "", "log file for the interactive list")
	fs.StringVar(&theme, "theme", "", "classic|neon|mono")
	fs.BoolVar(&group, "group", false, "group ls output by pending/done")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			cli.PrintHelp(stdout)
			return 0
		}
		ui.Fail(stderr, err.Error())
		return 2
	}
	rest := fs.Args()
	if len(rest) > 0 && rest[0] == "help" {
		cli.PrintHelp(stdout)
		return 0
	}

	if configPath == "" {
		configPath = strings.TrimSpace(os.Getenv(config.PathEnv))
	}
	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		ui.Fail(stderr, fmt.Sprintf("load config %q: %s", configPath, err))
		return 1
	}
	if cfg, err = config.ApplyEnv(cfg); err != nil {
		ui.Fail(stderr, err.Error())
		return 1
	}
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "url":
			cfg.Source.URL = url
		case "file":
			cfg.Source.File = file
		case "token":
			cfg.Source.Token = token
		case "log-level":
			cfg.Log.Level = logLevel
		case "log-file":
			cfg.Log.File = logFile
		case "theme":
			cfg.UI.Theme = theme
		}
	})
	if err := cfg.Validate(); err != nil {
		ui.Fail(stderr, "config: "+err.Error())
		return 2
	}
	ui.SetTheme(cfg.UI.Theme)

	interactive := len(rest) == 0 || rest[0] == "ui"

	// The interactive list owns the terminal; its logs go to a file or nowhere.
	opt := cli.Options{Group: group, Config: cfg, Stdout: stdout, Stderr: stderr}
	if interactive {
		logger, closeLog, err := logging.Open(cfg.Log.File, cfg.Log.Level)
		if err != nil {
			ui.Fail(stderr, "configure logger: "+err.Error())
			return 1
		}
		defer func() {
			if err := closeLog(); err != nil {
				fmt.Fprintf(stderr, "warning: close log file: %v\n", err)
			}
		}()
		opt.Logger = logger
	} else {
		logger, err := logging.New(stderr, cfg.Log.Level)
		if err != nil {
			ui.Fail(stderr, "configure logger: "+err.Error())
			return 1
		}
		opt.Logger = logger
	}
	opt.Logger.Debug("configuration resolved", "config_path", configPath, "url", cfg.Source.URL, "file", cfg.Source.File)

	code := cli.Run(ctx, rest, opt)
	if code != 0 {
		fmt.Fprintln(stderr)
	}
	return code
}
