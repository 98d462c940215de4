// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// convosniffer-viewer is a terminal viewer for a ConvoSniffer control
// plane. On a terminal it runs a live TUI of the current replies; when
// stdout is piped it prints one JSON notification per line instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/convosniffer/lib/netutil"
	"github.com/bureau-foundation/convosniffer/lib/overlayui"
	"github.com/bureau-foundation/convosniffer/lib/process"
	"github.com/bureau-foundation/convosniffer/lib/version"
	"github.com/bureau-foundation/convosniffer/lib/viewer"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	server    string
	encoding  string
	noColor   bool
	once      bool
	logOutput string
	showHelp  bool
}

func parseOptions(args []string) (*options, *pflag.FlagSet, error) {
	var opts options
	flagSet := pflag.NewFlagSet("convosniffer-viewer", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.server, "server", "127.0.0.1:21830", "control plane host:port, or a ws:// URL")
	flagSet.StringVar(&opts.encoding, "encoding", "", "frame encoding to request: json or cbor (default: server's choice)")
	flagSet.BoolVar(&opts.noColor, "no-color", false, "disable colors")
	flagSet.BoolVar(&opts.once, "once", false, "exit when the connection ends instead of reconnecting")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "write JSON log records to this file")
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
	if opts.encoding != "" {
		if _, err := viewer.ParseEncoding(opts.encoding); err != nil {
			return nil, flagSet, err
		}
	}
	return &opts, flagSet, nil
}

// socketURL turns the --server value into the websocket URL.
func socketURL(server, encoding string) (string, error) {
	target := &url.URL{Scheme: "ws", Host: server, Path: "/socket"}
	if parsed, err := url.Parse(server); err == nil && (parsed.Scheme == "ws" || parsed.Scheme == "wss") {
		target = parsed
		if target.Path == "" || target.Path == "/" {
			target.Path = "/socket"
		}
	}
	if target.Host == "" {
		return "", fmt.Errorf("invalid server %q", server)
	}
	if encoding != "" {
		query := target.Query()
		query.Set("encoding", encoding)
		target.RawQuery = query.Encode()
	}
	return target.String(), nil
}

func run() error {
	// Handle --version before flag parsing to match the other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("convosniffer-viewer")
		return nil
	}

	opts, flagSet, err := parseOptions(os.Args[1:])
	if err != nil {
		return err
	}
	if opts.showHelp {
		printHelp(flagSet)
		return nil
	}

	target, err := socketURL(opts.server, opts.encoding)
	if err != nil {
		return err
	}

	// The TUI owns the terminal; logs go to a file or nowhere.
	logger := slog.New(slog.DiscardHandler)
	if opts.logOutput != "" {
		file, err := os.Create(opts.logOutput)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer file.Close()
		logger = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	events := overlayui.Stream(ctx, overlayui.StreamConfig{
		URL:       target,
		Reconnect: !opts.once,
		Logger:    logger,
	})

	if !interactive {
		err := overlayui.PrintEvents(ctx, os.Stdout, events)
		if err != nil && netutil.IsExpectedCloseError(err) {
			return nil
		}
		return err
	}

	renderer := lipgloss.NewRenderer(os.Stdout)
	if opts.noColor || os.Getenv("NO_COLOR") != "" {
		renderer.SetColorProfile(termenv.Ascii)
	}
	model := overlayui.NewModel(events, overlayui.ModelOptions{
		Renderer: renderer,
		Source:   opts.server,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `convosniffer-viewer: terminal viewer for a ConvoSniffer control plane.

Shows the live reply list with key bindings. When stdout is not a
terminal, prints one JSON notification per line instead.

Usage:
  convosniffer-viewer [flags]

Examples:
  # Watch the local control plane
  convosniffer-viewer

  # Watch a stream machine, without colors
  convosniffer-viewer --server 192.168.1.20:21830 --no-color

  # Log notifications as JSON lines
  convosniffer-viewer --once | tee session.jsonl

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
