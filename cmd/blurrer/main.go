// Package main is the entry point for the blurrer viewer.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dshills/blurrer/internal/app"
	"github.com/dshills/blurrer/internal/config"
	"github.com/dshills/blurrer/internal/document"
	"github.com/dshills/blurrer/internal/logging"
	"github.com/dshills/blurrer/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const sampleText = `Select some text to bring it into focus.

Everything outside the selection is blurred: the overlay covers the
complement of the selection, so only what you have selected stays sharp.

Keys:
	Shift+arrows   extend the selection
	Ctrl+A         select everything
	Ctrl+D         add the next occurrence of the selection
	Ctrl+B         toggle the blur
	Esc            clear the selection
	q, Ctrl+Q      quit
`

type options struct {
	configPath string
	logLevel   string
	logFile    string
	watch      bool
	file       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	doc := document.New(sampleText)
	if opts.file != "" {
		doc, err = document.Load(opts.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	application, err := app.New(term, doc, cfg,
		app.WithLogger(log),
		app.WithConfigPath(opts.configPath),
		app.WithWatch(opts.watch))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	// Quit through the event loop so the terminal is restored.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		sig, ok := <-signals
		if !ok {
			return
		}
		log.Info("signal received", zap.Stringer("signal", sig))
		term.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlQ})
	}()

	log.Info("starting", zap.String("version", version), zap.String("file", opts.file))
	if err := application.Run(); err != nil {
		log.Error("run failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flag.BoolVar(&opts.watch, "watch", false, "Reload the configuration file when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "blurrer - blur everything but the selection\n\n")
		fmt.Fprintf(os.Stderr, "Usage: blurrer [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  blurrer                          Show the built-in sample text\n")
		fmt.Fprintf(os.Stderr, "  blurrer main.go                  View a file\n")
		fmt.Fprintf(os.Stderr, "  blurrer -c theme.toml -watch     Reload theme.toml on save\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment variables prefixed with %s override the config file,\n", config.EnvPrefix)
		fmt.Fprintf(os.Stderr, "e.g. %sEDITOR_TAB_WIDTH=8.\n", config.EnvPrefix)
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("blurrer %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	switch flag.NArg() {
	case 0:
	case 1:
		opts.file = flag.Arg(0)
	default:
		fmt.Fprintf(os.Stderr, "Error: at most one file may be given\n")
		os.Exit(1)
	}

	return opts
}
