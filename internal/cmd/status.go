package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voiceterm/voiceterm/internal/daemon"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List running background sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := daemon.ListSessions()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no running sessions")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
