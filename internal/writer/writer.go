// Package writer is the single owner of the terminal output stream. Every
// other component — the PTY reader, the HUD renderer, the overlay, resize
// handling — sends a tagged message here instead of writing to the
// terminal directly, so output never interleaves mid-escape-sequence.
package writer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"syscall"
)

// Kind tags a Message's payload.
type Kind int

const (
	KindPtyOutput Kind = iota
	KindEnhancedStatus
	KindClearStatus
	KindShowOverlay
	KindClearOverlay
	KindEnableMouse
	KindDisableMouse
	KindResize
)

// Message is the tagged union writer_tx carries. Only the fields relevant
// to Kind are populated.
type Message struct {
	Kind Kind

	// KindPtyOutput
	Bytes []byte

	// KindEnhancedStatus: pre-rendered HUD lines, bottom row anchored.
	StatusLines []string

	// KindShowOverlay
	OverlayContent []byte
	OverlayHeight  int

	// KindResize
	Rows, Cols int
	// HudHeight is the number of bottom rows reserved for the HUD at the
	// time of this resize, used to recompute the scroll region.
	HudHeight int
}

// ErrBrokenPipe is returned (wrapped) by Run when the output stream is
// gone; the caller should tear down the session.
var ErrBrokenPipe = errors.New("writer: broken pipe")

// Writer owns the terminal scroll region and serializes every outbound
// byte. Exactly one goroutine should call Run.
type Writer struct {
	out io.Writer

	rows, cols int
	hudHeight  int

	lastStatusLines []string
	overlayActive   bool
}

// New returns a Writer targeting out (typically os.Stdout).
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Run drains in until it is closed or a write hits a terminal error. It
// processes messages strictly FIFO: every PtyOutput message is immediately
// followed by a redraw of the last known HUD frame, so the banner never
// stays corrupted after a PTY burst.
func (w *Writer) Run(in <-chan Message) error {
	for msg := range in {
		if err := w.handle(msg); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) handle(msg Message) error {
	switch msg.Kind {
	case KindPtyOutput:
		if err := w.write(msg.Bytes); err != nil {
			return err
		}
		if len(w.lastStatusLines) > 0 {
			return w.write(w.renderStatus(w.lastStatusLines))
		}
		return nil

	case KindEnhancedStatus:
		w.lastStatusLines = msg.StatusLines
		return w.write(w.renderStatus(msg.StatusLines))

	case KindClearStatus:
		clear := w.clearStatusBytes()
		w.lastStatusLines = nil
		return w.write(clear)

	case KindShowOverlay:
		w.overlayActive = true
		return w.write(msg.OverlayContent)

	case KindClearOverlay:
		w.overlayActive = false
		if len(w.lastStatusLines) > 0 {
			return w.write(w.renderStatus(w.lastStatusLines))
		}
		return nil

	case KindEnableMouse:
		return w.write([]byte("\x1b[?1000h\x1b[?1006h"))

	case KindDisableMouse:
		return w.write([]byte("\x1b[?1000l\x1b[?1006l"))

	case KindResize:
		w.rows, w.cols, w.hudHeight = msg.Rows, msg.Cols, msg.HudHeight
		return w.write(w.scrollRegionBytes())
	}
	return nil
}

// scrollRegionBytes emits the DECSTBM sequence confining the child's
// scroll region to the rows above the HUD. When hudHeight is 0 (HUD
// suppressed) the region spans the full screen.
func (w *Writer) scrollRegionBytes() []byte {
	bottom := w.rows - w.hudHeight
	if bottom < 1 {
		bottom = w.rows
	}
	return []byte(fmt.Sprintf("\x1b[1;%dr", bottom))
}

func (w *Writer) renderStatus(lines []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x1b7") // save cursor
	buf.WriteString("\x1b[?25l")
	startRow := w.rows - len(lines) + 1
	for i, line := range lines {
		fmt.Fprintf(&buf, "\x1b[%d;1H\x1b[2K%s", startRow+i, line)
	}
	buf.WriteString("\x1b8") // restore cursor
	return buf.Bytes()
}

func (w *Writer) clearStatusBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("\x1b7")
	n := w.hudHeight
	if len(w.lastStatusLines) > n {
		// A preceding Resize may have shrunk the HUD: clear the rows the
		// last drawn frame occupied as well.
		n = len(w.lastStatusLines)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "\x1b[%d;1H\x1b[2K", w.rows-i)
	}
	buf.WriteString("\x1b8")
	return buf.Bytes()
}

// write pushes p to the terminal, retrying transient WouldBlock/Interrupted
// errors and reporting a wrapped ErrBrokenPipe on EPIPE.
func (w *Writer) write(p []byte) error {
	for len(p) > 0 {
		n, err := w.out.Write(p)
		if n > 0 {
			p = p[n:]
		}
		if err == nil {
			continue
		}
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR) {
			continue
		}
		if errors.Is(err, syscall.EPIPE) {
			return fmt.Errorf("%w: %v", ErrBrokenPipe, err)
		}
		return err
	}
	return nil
}
