// Package cmd wires the voiceterm cobra command tree.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voiceterm",
		Short: "Voice-driven wrapper for an interactive AI coding assistant",
		Long:  "voiceterm wraps an interactive AI coding assistant in a PTY, drives it with voice input, and overlays a status HUD without corrupting its output.",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newAttachCmd(),
		newDaemonCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return rootCmd
}
