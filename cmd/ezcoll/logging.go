package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// setupTUILogging sends logs to debug.log under --debug and drops them
// otherwise, since the alt screen owns the terminal.
func setupTUILogging(debug bool) (func(), error) {
	if !debug {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return func() {}, nil
	}

	f, err := tea.LogToFile("debug.log", "debug")
	if err != nil {
		return nil, fmt.Errorf("could not open debug log: %w", err)
	}
	slog.SetDefault(slog.New(newHandler(f, slog.LevelDebug, true)))
	return func() { f.Close() }, nil
}

// setupCLILogging logs to stderr, coloured when stderr is a terminal
func setupCLILogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	fd := os.Stderr.Fd()
	noColor := !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	slog.SetDefault(slog.New(newHandler(os.Stderr, level, noColor)))
}

func newHandler(w io.Writer, level slog.Level, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
}
