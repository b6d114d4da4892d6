// Package main is the entry point for the mcode editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/dshills/mcode/internal/app"
	"github.com/dshills/mcode/internal/config"
	"github.com/dshills/mcode/internal/logging"
	"github.com/dshills/mcode/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

type flags struct {
	configPath string
	logLevel   string
	logFile    string
	file       string
}

func main() {
	os.Exit(run())
}

func run() int {
	f, code, done := parseFlags()
	if done {
		return code
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}
	if f.logLevel != "" {
		level, err := config.ParseLevel(f.logLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitConfig
		}
		cfg.Log.Level = level
	}
	if f.logFile != "" {
		cfg.Log.Path = f.logFile
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Path:        cfg.Log.Path,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return exitConfig
	}
	defer func() { _ = logger.Sync() }()

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: mcode needs an interactive terminal")
		return exitError
	}

	// Create terminal backend
	screen, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return exitError
	}

	application, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: f.configPath,
		File:       f.file,
		Backend:    screen,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return exitError
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		sig, ok := <-signals
		if !ok {
			return
		}
		logger.Info("signal received", zap.Stringer("signal", sig))
		application.Shutdown()
	}()

	logger.Info("starting", zap.String("version", version), zap.String("file", f.file))
	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return exitOK
		}
		logger.Error("application failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// parseFlags reads the command line. done reports that the program should
// exit with code without starting the editor.
func parseFlags() (f flags, code int, done bool) {
	var showVersion bool

	fs := flag.NewFlagSet("mcode", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", config.DefaultPath(), "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&f.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFile, "log-file", "", `Log file path, "-" disables logging`)
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "mcode - a small Python editor with a terminal panel\n\n")
		fmt.Fprintf(os.Stderr, "Usage: mcode [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+O open   Ctrl+S save   F5 run   Ctrl+T terminal   Ctrl+Q quit\n")
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return f, exitOK, true
		}
		return f, exitConfig, true
	}

	if showVersion {
		fmt.Printf("mcode %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return f, exitOK, true
	}

	switch fs.NArg() {
	case 0:
	case 1:
		f.file = fs.Arg(0)
	default:
		fmt.Fprintln(os.Stderr, "Error: at most one file can be opened")
		fs.Usage()
		return f, exitConfig, true
	}
	return f, exitOK, false
}
