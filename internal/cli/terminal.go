// Package cli wires up the host terminal: raw mode, SIGWINCH watching, and
// OSC 10/11 background/foreground color probing, handing raw input bytes
// and resize notifications to the event loop over plain channels.
package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// RawSession owns the raw-mode transition and its cleanup.
type RawSession struct {
	fd      int
	restore *term.State
}

// EnterRaw puts the controlling terminal into raw mode and enables SGR
// mouse reporting.
func EnterRaw(out io.Writer) (*RawSession, error) {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}
	out.Write([]byte("\033[?1000h\033[?1006h"))
	return &RawSession{fd: fd, restore: state}, nil
}

// Restore undoes EnterRaw: disables mouse reporting, restores cooked mode,
// and shows the cursor again.
func (r *RawSession) Restore(out io.Writer) {
	out.Write([]byte("\033[?1000l\033[?1006l"))
	term.Restore(r.fd, r.restore)
	out.Write([]byte("\033[?25h\033[0m\r\n"))
}

// Size is a terminal size in character cells.
type Size struct {
	Rows, Cols int
}

// CurrentSize reads the current controlling-terminal size.
func CurrentSize() (Size, error) {
	cols, rows, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		return Size{}, err
	}
	return Size{Rows: rows, Cols: cols}, nil
}

// WatchResize sends the new Size on out every time SIGWINCH fires, subject
// to minRows (below which the resize is ignored as too small to be real).
// It runs until ctx-like cancellation is performed by closing done.
func WatchResize(minRows int, out chan<- Size, done <-chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)
	for {
		select {
		case <-done:
			return
		case <-sigCh:
			size, err := CurrentSize()
			if err != nil || size.Rows < minRows {
				continue
			}
			select {
			case out <- size:
			case <-done:
				return
			}
		}
	}
}

// DetectOSCColors queries the terminal's foreground/background colors via
// termenv and returns them as termenv color sequences. Nothing in this
// module calls it or passes its result to ptysession.Session.SetOSCColors.
func DetectOSCColors() (fg, bg string) {
	output := termenv.NewOutput(os.Stdout)
	fg = output.ForegroundColor().Sequence(false)
	bg = output.BackgroundColor().Sequence(false)
	return fg, bg
}

// ReadInputLoop reads raw bytes from in and sends each non-empty read on
// out until in returns an error (EOF on stdin close, or the PTY/terminal
// going away). It never parses bytes itself — that is inputparser's job —
// so it stays a trivial, allocation-light read loop.
func ReadInputLoop(in io.Reader, out chan<- []byte, done <-chan struct{}) {
	buf := make([]byte, 256)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case out <- chunk:
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}
