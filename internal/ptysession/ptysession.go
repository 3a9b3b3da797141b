// Package ptysession owns the child process PTY: spawning, resizing,
// reading output onto a bounded channel for the event loop, and writing
// input with a hang-detecting timeout.
package ptysession

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creack/pty"
	"github.com/vito/midterm"
)

// OutputChunk is one PTY read, sized so the event loop can feed it straight
// into the virtual terminal and the prompt-occlusion detector in one step.
type OutputChunk struct {
	Data []byte
	At   time.Time
}

// Session owns the child process and its PTY master end.
type Session struct {
	Ptm *os.File
	Cmd *exec.Cmd

	oscMu sync.Mutex
	oscFg string
	oscBg string

	lastOut atomic.Int64 // unix nanos, 0 if never

	// vtMu guards scrollback, an append-only virtual terminal mirroring
	// everything the child has ever printed, fed from ReadLoop and read by
	// the TranscriptHistory overlay (see WithScrollback). It is kept
	// separate from the live screen the PTY itself already draws: nothing
	// in VoiceTerm needs a second copy of the child's current screen, only
	// its history.
	vtMu       sync.Mutex
	scrollback *midterm.Terminal
}

// Spawn starts command under a PTY of the given size. extraEnv entries
// override the inherited environment.
func Spawn(command string, args []string, rows, cols int, extraEnv map[string]string) (*Session, error) {
	cmd := exec.Command(command, args...)
	if len(extraEnv) > 0 {
		env := make([]string, 0, len(os.Environ())+len(extraEnv))
		for _, e := range os.Environ() {
			key := e
			if idx := strings.Index(e, "="); idx >= 0 {
				key = e[:idx]
			}
			if _, override := extraEnv[key]; !override {
				env = append(env, e)
			}
		}
		for k, v := range extraEnv {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}
	return &Session{Ptm: ptm, Cmd: cmd, scrollback: midterm.NewTerminal(rows, cols)}, nil
}

// SetOSCColors configures the cached responses to OSC 10 (foreground) and
// OSC 11 (background) color queries from the child.
func (s *Session) SetOSCColors(fg, bg string) {
	s.oscMu.Lock()
	s.oscFg, s.oscBg = fg, bg
	s.oscMu.Unlock()
}

func (s *Session) respondOSCColors(data []byte) {
	s.oscMu.Lock()
	fg, bg := s.oscFg, s.oscBg
	s.oscMu.Unlock()
	if fg != "" && bytes.Contains(data, []byte("\033]10;?")) {
		fmt.Fprintf(s.Ptm, "\033]10;%s\033\\", fg)
	}
	if bg != "" && bytes.Contains(data, []byte("\033]11;?")) {
		fmt.Fprintf(s.Ptm, "\033]11;%s\033\\", bg)
	}
}

// ReadLoop reads child output until the PTY closes, sending each chunk on
// out. out should be capacity 1: the event loop's single-goroutine select
// can then hold at most one pending PTY chunk, so a slow consumer
// backpressures reads rather than buffering unboundedly. done is closed
// when the read loop exits (child exited or PTY closed).
func (s *Session) ReadLoop(out chan<- OutputChunk, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 4096)
	for {
		n, err := s.Ptm.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.respondOSCColors(chunk)
			s.lastOut.Store(time.Now().UnixNano())
			s.vtMu.Lock()
			s.scrollback.Write(chunk)
			s.vtMu.Unlock()
			out <- OutputChunk{Data: chunk, At: time.Now()}
		}
		if err != nil {
			return
		}
	}
}

// Resize updates the PTY window size.
func (s *Session) Resize(rows, cols int) error {
	s.vtMu.Lock()
	s.scrollback.ResizeX(cols)
	s.vtMu.Unlock()
	return pty.Setsize(s.Ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// WithScrollback runs fn with exclusive access to the retained scrollback
// terminal, so a caller (the TranscriptHistory overlay renderer) can read
// its Content/Cursor/Format without racing ReadLoop's concurrent Write.
func (s *Session) WithScrollback(fn func(vt *midterm.Terminal)) {
	s.vtMu.Lock()
	defer s.vtMu.Unlock()
	fn(s.scrollback)
}

// IsIdle reports whether the child has produced no output for at least the
// given threshold.
func (s *Session) IsIdle(threshold time.Duration) bool {
	last := s.lastOut.Load()
	if last == 0 {
		return false
	}
	return time.Since(time.Unix(0, last)) > threshold
}

// ErrWriteTimeout is returned by Write when the child is not draining its
// stdin and the PTY kernel buffer is full.
var ErrWriteTimeout = fmt.Errorf("pty write timed out")

// Write sends p to the child's stdin with a hang-detecting timeout. The
// write runs in its own goroutine so a wedged child cannot block the
// caller (the event loop) past the deadline.
func (s *Session) Write(p []byte, timeout time.Duration) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := s.Ptm.Write(p)
		ch <- result{n, err}
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.n, r.err
	case <-timer.C:
		return 0, ErrWriteTimeout
	}
}

// Close releases the PTY master file descriptor.
func (s *Session) Close() error {
	return s.Ptm.Close()
}

// Wait blocks until the child process exits and returns its exit state.
func (s *Session) Wait() error {
	return s.Cmd.Wait()
}
