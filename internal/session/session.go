// Package session ties ptysession, eventloop, writer, and inputparser
// together into one runnable unit: spawn a child under a PTY, run the
// event loop against it, and own the lock/socket bookkeeping a daemonized
// session needs so a separate attach process can find and reconnect to it.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/vito/midterm"

	"github.com/voiceterm/voiceterm/internal/cli"
	"github.com/voiceterm/voiceterm/internal/config"
	"github.com/voiceterm/voiceterm/internal/eventloop"
	"github.com/voiceterm/voiceterm/internal/inputparser"
	"github.com/voiceterm/voiceterm/internal/overlay"
	"github.com/voiceterm/voiceterm/internal/ptysession"
	"github.com/voiceterm/voiceterm/internal/writer"
)

// ptyOutputChanCap is 1, matching §5: at most one pending PTY-output chunk
// may sit unread, so a slow writer naturally stalls the PTY reader instead
// of unboundedly queuing output in memory.
const ptyOutputChanCap = 1

// writerChanCap is 4, enough for a couple of HUD redraws plus one overlay
// frame without the writer goroutine falling behind the loop (§5).
const writerChanCap = 4

// inputChanCap bounds how many decoded input events may queue ahead of the
// loop; input arrives in small, human-paced bursts so a modest cap is
// plenty of slack without masking true backpressure.
const inputChanCap = 16

// Session owns one wrapped child process: its PTY, the writer goroutine,
// and the event loop goroutine.
type Session struct {
	ID           string
	Name         string
	Command      string
	Args         []string
	StartedAt    time.Time

	PTY  *ptysession.Session
	loop *eventloop.Loop

	ptyOutCh chan []byte
	inputCh  chan inputparser.Event
	writerCh chan writer.Message

	lock *flock.Flock
	dir  string
}

// Deps bundles the external collaborators a session wires into the event
// loop; any field left nil is passed through unset (voicestub/wakestub
// fill Voice/WakeWord when the caller wants deterministic no-ops).
type Deps struct {
	Voice        eventloop.VoiceManager
	WakeWord     eventloop.WakeWordRuntime
	DevBroker    eventloop.DevBroker
	Meter        eventloop.MeterSource
	Memory       eventloop.MemoryIngestor
	BackendLabel string
	Rolling      bool
}

// New spawns command under a PTY sized rows x cols and wires an event loop
// around it. The returned Session is not yet running; call Run.
func New(name, command string, args []string, rows, cols int, deps Deps, extraEnv map[string]string) (*Session, error) {
	pty, err := ptysession.Spawn(command, args, rows, cols, extraEnv)
	if err != nil {
		return nil, fmt.Errorf("spawn pty: %w", err)
	}

	s := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Command:   command,
		Args:      args,
		StartedAt: time.Now(),
		PTY:       pty,
		ptyOutCh:  make(chan []byte, ptyOutputChanCap),
		inputCh:   make(chan inputparser.Event, inputChanCap),
		writerCh:  make(chan writer.Message, writerChanCap),
	}

	state := eventloop.NewState(rows, cols, deps.BackendLabel, deps.Rolling)
	loopDeps := eventloop.Deps{
		PTY:          ptyAdapter{pty},
		Writer:       eventloop.NewChannelWriter(s.writerCh),
		Voice:        deps.Voice,
		WakeWord:     deps.WakeWord,
		DevBroker:    deps.DevBroker,
		Meter:        deps.Meter,
		Memory:       deps.Memory,
		Scrollback:   ptyAdapter{pty},
		BackendLabel: deps.BackendLabel,
	}
	s.loop = eventloop.New(loopDeps, state)
	return s, nil
}

// ptyAdapter narrows *ptysession.Session to eventloop.PTYSession.
type ptyAdapter struct{ s *ptysession.Session }

func (a ptyAdapter) Write(p []byte, timeout time.Duration) (int, error) { return a.s.Write(p, timeout) }
func (a ptyAdapter) Resize(rows, cols int) error                        { return a.s.Resize(rows, cols) }

// RenderScrollback implements eventloop.ScrollbackRenderer by rendering the
// child's retained screen history under the scrollback lock.
func (a ptyAdapter) RenderScrollback(rows, cols, offset int) []byte {
	var out []byte
	a.s.WithScrollback(func(vt *midterm.Terminal) {
		out = overlay.RenderScrollback(vt, rows, cols, offset)
	})
	return out
}

// Run starts the PTY reader goroutine, the writer goroutine (writing to
// out), and blocks running the event loop until ctx is cancelled or the
// child exits. Input events must be fed by the caller via InputChan.
func (s *Session) Run(ctx context.Context, out io.Writer) error {
	readDone := make(chan struct{})
	go func() {
		buf := make(chan ptysession.OutputChunk, ptyOutputChanCap)
		go s.PTY.ReadLoop(buf, readDone)
		for {
			select {
			case chunk := <-buf:
				select {
				case s.ptyOutCh <- chunk.Data:
				case <-ctx.Done():
					close(s.ptyOutCh)
					return
				}
			case <-readDone:
				// Drain anything ReadLoop sent just before closing done.
				for {
					select {
					case chunk := <-buf:
						select {
						case s.ptyOutCh <- chunk.Data:
						case <-ctx.Done():
						}
					default:
						close(s.ptyOutCh)
						return
					}
				}
			}
		}
	}()

	w := writer.New(out)
	writerErrCh := make(chan error, 1)
	go func() { writerErrCh <- w.Run(s.writerCh) }()

	loopErrCh := make(chan error, 1)
	go func() { loopErrCh <- s.loop.Run(ctx, s.ptyOutCh, s.inputCh) }()

	select {
	case err := <-loopErrCh:
		return err
	case err := <-writerErrCh:
		return err
	case <-readDone:
		<-loopErrCh
		return nil
	case <-ctx.Done():
		<-loopErrCh
		return ctx.Err()
	}
}

// InputChan returns the channel the caller should feed decoded input
// events into (see inputparser.Parser.Feed).
func (s *Session) InputChan() chan<- inputparser.Event { return s.inputCh }

// CloseInput signals no further input is coming, letting Run's event loop
// exit its select cleanly once the PTY side is also done.
func (s *Session) CloseInput() { close(s.inputCh) }

// AttachLock records a directory lock this session owns, so Close releases
// it alongside the PTY.
func (s *Session) AttachLock(dir string, lock *flock.Flock) {
	s.dir = dir
	s.lock = lock
}

// Close releases the PTY and any directory lock held by this session.
func (s *Session) Close() error {
	if s.lock != nil {
		s.lock.Unlock()
	}
	return s.PTY.Close()
}

// Dir returns (creating if necessary) this session's state directory,
// <voiceterm-dir>/sessions/<name>/, one directory per named session holding
// its lock file and activity log.
func Dir(name string) (string, error) {
	dir := filepath.Join(config.Dir(), "sessions", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	return dir, nil
}

// AcquireLock takes an exclusive file lock on <dir>/lock, failing fast
// (rather than blocking) if another daemon already holds it for this
// session name.
func AcquireLock(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, "lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock session dir: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session %q is already running", filepath.Base(dir))
	}
	return lock, nil
}

// WatchResizeInto bridges cli.WatchResize's Size notifications into PTY
// resizes and the event loop's own state, since the loop itself does not
// watch signals directly — that stays a host-terminal concern.
func (s *Session) WatchResizeInto(sizes <-chan cli.Size, done <-chan struct{}) {
	for {
		select {
		case sz, ok := <-sizes:
			if !ok {
				return
			}
			s.PTY.Resize(sz.Rows, sz.Cols)
		case <-done:
			return
		}
	}
}
