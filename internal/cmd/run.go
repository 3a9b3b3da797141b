package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/voiceterm/voiceterm/internal/activitylog"
	"github.com/voiceterm/voiceterm/internal/cli"
	"github.com/voiceterm/voiceterm/internal/config"
	"github.com/voiceterm/voiceterm/internal/daemon"
	"github.com/voiceterm/voiceterm/internal/devbroker"
	"github.com/voiceterm/voiceterm/internal/inputparser"
	"github.com/voiceterm/voiceterm/internal/promptguard"
	"github.com/voiceterm/voiceterm/internal/session"
	"github.com/voiceterm/voiceterm/internal/voicestub"
	"github.com/voiceterm/voiceterm/internal/wakestub"
)

func newRunCmd() *cobra.Command {
	var daemonize bool
	var name string

	cmd := &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a wrapped command under voiceterm",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				name = daemon.GenerateName()
			}
			if daemonize {
				if !isatty.IsTerminal(os.Stdin.Fd()) {
					return fmt.Errorf("run --daemon requires an interactive terminal to fork from")
				}
				if err := daemon.ForkDaemon(name, args[0], args[1:]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "started session %q; attach with: voiceterm attach %s\n", name, name)
				return nil
			}
			return runForeground(name, args[0], args[1:])
		},
	}

	cmd.Flags().BoolVar(&daemonize, "daemon", false, "detach into a background session reachable via 'voiceterm attach'")
	cmd.Flags().StringVar(&name, "name", "", "session name (random adjective-noun name if omitted)")
	return cmd
}

// runForeground execs the wrapped command in the current terminal: raw
// mode, SIGWINCH watching, and the event loop all run in this process.
func runForeground(name, command string, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	size, err := cli.CurrentSize()
	if err != nil {
		size = cli.Size{Rows: 24, Cols: 80}
	}

	sessDir, err := session.Dir(name)
	if err != nil {
		return err
	}
	log := activitylog.New(true, filepath.Join(sessDir, "activity.jsonl"), "voiceterm", name)
	defer log.Close()

	deps := session.Deps{
		Voice:        voicestub.New(),
		WakeWord:     wakestub.New(),
		DevBroker:    devbroker.New(),
		Memory:       log,
		BackendLabel: settings.BackendLabel,
		Rolling:      promptguard.ShouldUseRollingDetector(),
	}
	sess, err := session.New(name, command, args, size.Rows, size.Cols, deps, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	raw, err := cli.EnterRaw(os.Stdout)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer raw.Restore(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	resizeDone := make(chan struct{})
	resizeCh := make(chan cli.Size, 1)
	go cli.WatchResize(3, resizeCh, resizeDone)
	go sess.WatchResizeInto(resizeCh, resizeDone)
	defer close(resizeDone)

	stdinDone := make(chan struct{})
	go func() {
		defer close(stdinDone)
		parser := inputparser.New()
		readCh := make(chan []byte, 1)
		go cli.ReadInputLoop(os.Stdin, readCh, ctx.Done())
		for {
			select {
			case buf, ok := <-readCh:
				if !ok {
					return
				}
				for _, ev := range parser.Feed(buf) {
					select {
					case sess.InputChan() <- ev:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return sess.Run(ctx, os.Stdout)
}
