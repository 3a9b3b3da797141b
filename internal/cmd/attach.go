package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voiceterm/voiceterm/internal/cli"
	"github.com/voiceterm/voiceterm/internal/daemon"
	"github.com/voiceterm/voiceterm/internal/socketdir"
)

func newAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <session>",
		Short: "Attach to a running background session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return attach(args[0])
		},
	}
}

func attach(name string) error {
	sockPath, err := socketdir.Find(name)
	if err != nil {
		return fmt.Errorf("find session %q: %w", name, err)
	}
	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		return fmt.Errorf("connect to session %q: %w", name, err)
	}
	defer conn.Close()

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

	if size, err := cli.CurrentSize(); err == nil {
		daemon.WriteFrame(conn, daemon.FrameResize, []byte(fmt.Sprintf("%d;%d", size.Rows, size.Cols)))
	}

	resizeDone := make(chan struct{})
	defer close(resizeDone)
	resizeCh := make(chan cli.Size, 1)
	go cli.WatchResize(3, resizeCh, resizeDone)
	go func() {
		for {
			select {
			case sz, ok := <-resizeCh:
				if !ok {
					return
				}
				daemon.WriteFrame(conn, daemon.FrameResize, []byte(fmt.Sprintf("%d;%d", sz.Rows, sz.Cols)))
			case <-resizeDone:
				return
			}
		}
	}()

	stdinDone := make(chan struct{})
	go func() {
		defer close(stdinDone)
		readCh := make(chan []byte, 1)
		go cli.ReadInputLoop(os.Stdin, readCh, ctx.Done())
		for {
			select {
			case buf, ok := <-readCh:
				if !ok {
					return
				}
				if err := daemon.WriteFrame(conn, daemon.FrameData, buf); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		ft, payload, err := daemon.ReadFrame(conn)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if ft == daemon.FrameData {
			os.Stdout.Write(payload)
		}
	}
}
