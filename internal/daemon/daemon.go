// Package daemon runs a VoiceTerm session detached from its controlling
// terminal, reachable over a Unix domain socket by "voiceterm attach", and
// provides the fork/exec helper "voiceterm run --daemon" uses to start one.
package daemon

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/voiceterm/voiceterm/internal/activitylog"
	"github.com/voiceterm/voiceterm/internal/devbroker"
	"github.com/voiceterm/voiceterm/internal/promptguard"
	"github.com/voiceterm/voiceterm/internal/session"
	"github.com/voiceterm/voiceterm/internal/socketdir"
	"github.com/voiceterm/voiceterm/internal/voicestub"
	"github.com/voiceterm/voiceterm/internal/wakestub"
)

// switchableWriter lets the daemon redirect where child/HUD output goes
// (nowhere, until an attach client connects) without tearing down the
// writer goroutine it backs.
type switchableWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func newSwitchableWriter() *switchableWriter {
	return &switchableWriter{out: io.Discard}
}

func (w *switchableWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	out := w.out
	w.mu.Unlock()
	return out.Write(p)
}

func (w *switchableWriter) SetTarget(out io.Writer) {
	w.mu.Lock()
	w.out = out
	w.mu.Unlock()
}

// Daemon owns a background Session, its socket listener, and the single
// attach client (if any) currently reading/writing the session's I/O.
type Daemon struct {
	Name         string
	Command      string
	Args         []string
	Rows, Cols   int
	BackendLabel string

	Session  *session.Session
	Listener net.Listener
	out      *switchableWriter

	attachConn net.Conn
}

// Run spawns the wrapped command and serves attach connections until the
// child exits or the process is signaled to stop. It blocks.
func (d *Daemon) Run(ctx context.Context) error {
	sockPath := socketdir.Path(socketdir.TypeSession, d.Name)
	if err := os.MkdirAll(socketdir.Dir(), 0o700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	if _, err := os.Stat(sockPath); err == nil {
		if conn, dialErr := net.DialTimeout("unix", sockPath, 500*time.Millisecond); dialErr == nil {
			conn.Close()
			return fmt.Errorf("session %q is already running", d.Name)
		}
		os.Remove(sockPath)
	}

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	d.Listener = ln
	defer func() {
		ln.Close()
		os.Remove(sockPath)
	}()

	backendLabel := d.BackendLabel
	if backendLabel == "" {
		backendLabel = "claude"
	}

	sessDir, err := session.Dir(d.Name)
	if err != nil {
		return err
	}
	log := activitylog.New(true, filepath.Join(sessDir, "activity.jsonl"), "voiceterm-daemon", d.Name)
	defer log.Close()

	deps := session.Deps{
		Voice:        voicestub.New(),
		WakeWord:     wakestub.New(),
		DevBroker:    devbroker.New(),
		Memory:       log,
		BackendLabel: backendLabel,
		Rolling:      promptguard.ShouldUseRollingDetector(),
	}
	sess, err := session.New(d.Name, d.Command, d.Args, d.Rows, d.Cols, deps, nil)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	d.Session = sess
	defer sess.Close()

	d.out = newSwitchableWriter()
	go d.acceptLoop()

	return sess.Run(ctx, d.out)
}

// acceptLoop serves attach connections one at a time (v1: a single
// attached client).
func (d *Daemon) acceptLoop() {
	for {
		conn, err := d.Listener.Accept()
		if err != nil {
			return
		}
		d.handleAttach(conn)
	}
}

// ListSessions scans the socket directory for running sessions.
func ListSessions() ([]string, error) {
	entries, err := socketdir.ListByType(socketdir.TypeSession)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// ForkDaemon starts a daemon in a background process by re-execing with
// the hidden _daemon subcommand.
func ForkDaemon(name, command string, args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find executable: %w", err)
	}

	daemonArgs := []string{"_daemon", "--name", name, "--"}
	daemonArgs = append(daemonArgs, command)
	daemonArgs = append(daemonArgs, args...)

	cmd := exec.Command(exe, daemonArgs...)
	cmd.SysProcAttr = NewSysProcAttr()

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open /dev/null: %w", err)
	}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		devNull.Close()
		return fmt.Errorf("start daemon: %w", err)
	}
	go func() {
		cmd.Wait()
		devNull.Close()
	}()

	sockPath := socketdir.Path(socketdir.TypeSession, name)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if _, err := os.Stat(sockPath); err == nil {
			return nil
		}
	}
	return fmt.Errorf("daemon did not start (socket %s not found)", sockPath)
}

// socketPathFor is a small indirection kept for tests that want to check
// the naming convention without depending on socketdir's resolved Dir().
func socketPathFor(dir, name string) string {
	return filepath.Join(dir, socketdir.Format(socketdir.TypeSession, name))
}
