// Package cli contains the cobra commands for the standup binary.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/standup/internal/adapters/transport"
	"github.com/example/standup/internal/config"
	"github.com/example/standup/internal/wire"
)

// configFlag is read by every subcommand; registered on the root command.
var configFlag string

// RegisterGlobalFlags attaches the shared flags to the root command.
func RegisterGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file (defaults apply when omitted)")
}

// newRuntime builds the object graph for a one-shot command. The memory
// transport is inert here: one-shot commands never send.
func newRuntime() (*wire.Runtime, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	return wire.New(wire.Options{
		Config:    cfg,
		Transport: transport.NewMemory(),
		Log:       newLogger(),
	})
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// NewContext returns the context for a one-shot command.
func NewContext() context.Context {
	return context.Background()
}
