package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voiceterm/voiceterm/internal/config"
	"github.com/voiceterm/voiceterm/internal/daemon"
)

// newDaemonCmd returns the hidden "_daemon" subcommand ForkDaemon re-execs
// into; it is not meant to be invoked directly by users.
func newDaemonCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:    "_daemon -- <command> [args...]",
		Hidden: true,
		Args:   cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()
			settings, err := config.Load()
			if err != nil {
				return err
			}
			d := &daemon.Daemon{
				Name:         name,
				Command:      args[0],
				Args:         args[1:],
				Rows:         24,
				Cols:         80,
				BackendLabel: settings.BackendLabel,
			}
			return d.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "session name")
	return cmd
}
