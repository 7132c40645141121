package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/meigma/vfs/internal/config"
)

// newLogger creates the command logger. With format auto, a terminal gets
// slog.TextHandler output and anything else (pipes, CI, tests) gets JSON.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	options := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	format := cfg.Log.Format
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "text"
		}
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
