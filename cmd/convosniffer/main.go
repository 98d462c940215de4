// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// convosniffer is the live-conversation control plane. The game-side
// controller pushes conversation state over HTTP; browser overlays and
// the terminal viewer subscribe over a websocket and stay in sync.
//
// Configuration comes from --config, the CONVOSNIFFER_CONFIG
// environment variable, or built-in defaults (listen on
// 0.0.0.0:21830). --address, --log-level and --log-format override the
// file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/convosniffer/lib/clock"
	"github.com/bureau-foundation/convosniffer/lib/config"
	"github.com/bureau-foundation/convosniffer/lib/controlplane"
	"github.com/bureau-foundation/convosniffer/lib/convostore"
	"github.com/bureau-foundation/convosniffer/lib/notify"
	"github.com/bureau-foundation/convosniffer/lib/process"
	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
	"github.com/bureau-foundation/convosniffer/lib/service"
	"github.com/bureau-foundation/convosniffer/lib/version"
	"github.com/bureau-foundation/convosniffer/lib/viewer"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// options are the command-line flags.
type options struct {
	configPath  string
	address     string
	logLevel    string
	logFormat   string
	showVersion bool
	showHelp    bool
}

func parseOptions(args []string) (*options, *pflag.FlagSet, error) {
	var opts options
	flagSet := pflag.NewFlagSet("convosniffer", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.configPath, "config", "", "path to config file (default: $"+config.EnvVar+", else built-in defaults)")
	flagSet.StringVar(&opts.address, "address", "", "listen address, overriding server.address")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.StringVar(&opts.logFormat, "log-format", "", "log format: json or text")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&opts.showHelp, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			opts.showHelp = true
			return &opts, flagSet, nil
		}
		return nil, flagSet, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, flagSet, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return &opts, flagSet, nil
}

// loadConfig resolves the configuration and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. The config has been validated.
func newLogger(w io.Writer, logConfig config.LogConfig) *slog.Logger {
	var level slog.Level
	// UnmarshalText accepts the validated names.
	_ = level.UnmarshalText([]byte(logConfig.Level))

	handlerOptions := &slog.HandlerOptions{Level: level}
	if logConfig.Format == "text" {
		return slog.New(slog.NewTextHandler(w, handlerOptions))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOptions))
}

func run() error {
	opts, flagSet, err := parseOptions(os.Args[1:])
	if err != nil {
		return err
	}
	if opts.showHelp {
		printHelp(flagSet)
		return nil
	}
	if opts.showVersion {
		version.Print("convosniffer")
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Log)

	encoding, err := viewer.ParseEncoding(cfg.Viewer.Encoding)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := notify.New[conversation.Notification](cfg.Bus.Buffer)
	store := convostore.New(bus)
	controlPlane := controlplane.New(controlplane.Config{
		Store:             store,
		Bus:               bus,
		Clock:             clock.Real(),
		Logger:            logger,
		MaxBodyBytes:      cfg.Server.MaxBodyBytes,
		Encoding:          encoding,
		KeepaliveInterval: cfg.Viewer.KeepaliveInterval,
		WriteTimeout:      cfg.Viewer.WriteTimeout,
	})

	server := service.NewHTTPServer(service.HTTPServerConfig{
		Address:         cfg.Server.Address,
		Handler:         controlPlane.Handler(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		OnShutdown:      controlPlane.Close,
		Logger:          logger,
	})

	logger.Info("convosniffer starting",
		"version", version.Info(),
		"environment", string(cfg.Environment),
		"address", cfg.Server.Address,
		"bus_buffer", cfg.Bus.Buffer,
		"viewer_encoding", string(encoding),
	)

	if err := server.Serve(ctx); err != nil {
		return err
	}
	// Sessions may still be closing if shutdown timed out first.
	controlPlane.Close()
	logger.Info("convosniffer stopped")
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `convosniffer: live-conversation control plane.

The game controller drives the conversation over HTTP on port 21830;
viewers connect to /socket (websocket) or open / in a browser source.

Usage:
  convosniffer [flags]

Examples:
  # Run with built-in defaults
  convosniffer

  # Run with a config file and human-readable logs
  convosniffer --config convosniffer.yaml --log-format text

  # Listen on loopback only
  convosniffer --address 127.0.0.1:21830

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
