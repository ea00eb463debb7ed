// Command capbridge bridges a client without OS access to sockets, files
// and the clock over a newline-delimited text protocol on stdin/stdout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/codefionn/capbridge/internal/bridge"
	"github.com/codefionn/capbridge/internal/config"
	"github.com/codefionn/capbridge/internal/logger"
	"github.com/codefionn/capbridge/internal/sandbox"
	"golang.org/x/term"
)

// version is injected at build time via -ldflags.
var version = "dev"

type stringSlice []string

func (s *stringSlice) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	if value == "" {
		return fmt.Errorf("value cannot be empty")
	}
	*s = append(*s, value)
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	flags := flag.NewFlagSet("capbridge", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var (
		configPath   = flags.String("config", config.GetConfigPath(), "path to config file")
		logLevel     = flags.String("log-level", "", "log level: debug, info, warn, error, none")
		logFile      = flags.String("log-file", "", "log to this file instead of stderr")
		diagnostic   = flags.Bool("diagnostic", false, "echo all protocol traffic to stderr")
		showVersion  = flags.Bool("version", false, "print version and exit")
		allowedReads stringSlice
	)
	flags.Var(&allowedReads, "allow-read", "confine FileRead to this path (repeatable; enables the sandbox)")

	if parseErr := flags.Parse(args); parseErr != nil {
		if errors.Is(parseErr, flag.ErrHelp) {
			return nil
		}
		return parseErr
	}

	if *showVersion {
		fmt.Println("capbridge " + version)
		return nil
	}

	// Load configuration; environment overrides the file, flags override both.
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnvOverrides()

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFile != "" {
		cfg.LogPath = *logFile
	}
	if *diagnostic {
		cfg.Diagnostic = true
	}
	if len(allowedReads) > 0 {
		cfg.Sandbox.Enabled = true
		cfg.Sandbox.ReadPaths = append(cfg.Sandbox.ReadPaths, allowedReads.toStrings()...)
	}

	// Initialize logging before anything that can fail.
	var loggerInitialized bool
	defer func() {
		if !loggerInitialized {
			return
		}
		if err != nil {
			logger.Error("Fatal error: %v", err)
		}
		if closeErr := logger.Global().Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", closeErr)
		}
	}()

	if initErr := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); initErr != nil {
		return fmt.Errorf("failed to initialize logger: %w", initErr)
	}
	loggerInitialized = true

	// Route stdlib slog output from any library into the same sink.
	slog.SetDefault(slog.New(logger.NewSlogHandler(logger.Global())))

	logger.Info("capbridge %s starting", version)

	// The protocol expects a machine client on the control streams.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Warn("Control input is a terminal; expecting newline-delimited protocol commands")
	}

	// Install filesystem confinement after the log file is open: open
	// descriptors are unaffected by the restriction.
	sb, err := sandbox.New(cfg.Sandbox.Enabled, cfg.Sandbox.ReadPaths, cfg.Sandbox.BestEffort)
	if err != nil {
		return fmt.Errorf("failed to configure sandbox: %w", err)
	}
	if applyErr := sb.Apply(); applyErr != nil {
		return fmt.Errorf("failed to apply sandbox: %w", applyErr)
	}

	server := bridge.New(os.Stdin, os.Stdout)
	server.SetSandbox(sb)
	if cfg.Diagnostic {
		server.SetDiagnostic(os.Stderr)
	}

	// A nil return means the control input hit end-of-stream: the single
	// graceful-shutdown signal. Anything else is a fatal framing or I/O
	// error and must terminate the process.
	if runErr := server.Run(); runErr != nil {
		return runErr
	}

	logger.Info("capbridge shutting down")
	return nil
}

func (s stringSlice) toStrings() []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}
