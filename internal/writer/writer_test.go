package writer

import (
	"bytes"
	"errors"
	"syscall"
	"testing"
)

func TestRunProcessesMessagesFIFO(t *testing.T) {
	var out bytes.Buffer
	w := New(&out)
	ch := make(chan Message, 8)
	ch <- Message{Kind: KindResize, Rows: 24, Cols: 80, HudHeight: 2}
	ch <- Message{Kind: KindPtyOutput, Bytes: []byte("hello")}
	ch <- Message{Kind: KindEnhancedStatus, StatusLines: []string{"status"}}
	close(ch)

	if err := w.Run(ch); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("hello")) {
		t.Error("expected pty output bytes to reach the terminal")
	}
	if !bytes.Contains(out.Bytes(), []byte("status")) {
		t.Error("expected status line to reach the terminal")
	}
}

func TestPtyOutputReissuesHUDAfterBurst(t *testing.T) {
	var out bytes.Buffer
	w := New(&out)
	ch := make(chan Message, 8)
	ch <- Message{Kind: KindResize, Rows: 24, Cols: 80, HudHeight: 2}
	ch <- Message{Kind: KindEnhancedStatus, StatusLines: []string{"line1", "line2"}}
	out.Reset()
	ch <- Message{Kind: KindPtyOutput, Bytes: []byte("child output")}
	close(ch)

	if err := w.Run(ch); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	got := out.String()
	if !bytes.Contains([]byte(got), []byte("child output")) {
		t.Error("expected pty bytes to be written")
	}
	if !bytes.Contains([]byte(got), []byte("line1")) || !bytes.Contains([]byte(got), []byte("line2")) {
		t.Error("expected the last known HUD frame to be reissued after the PTY chunk")
	}
}

func TestResizeWithZeroHudHeightUsesFullScreen(t *testing.T) {
	var out bytes.Buffer
	w := New(&out)
	ch := make(chan Message, 1)
	ch <- Message{Kind: KindResize, Rows: 40, Cols: 100, HudHeight: 0}
	close(ch)
	if err := w.Run(ch); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("\x1b[1;40r")) {
		t.Errorf("expected full-screen scroll region, got %q", out.Bytes())
	}
}

type flakyWriter struct {
	failsLeft int
	buf       bytes.Buffer
}

func (f *flakyWriter) Write(p []byte) (int, error) {
	if f.failsLeft > 0 {
		f.failsLeft--
		return 0, syscall.EAGAIN
	}
	return f.buf.Write(p)
}

func TestWriteRetriesOnWouldBlock(t *testing.T) {
	fw := &flakyWriter{failsLeft: 2}
	w := New(fw)
	if err := w.write([]byte("payload")); err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	if fw.buf.String() != "payload" {
		t.Errorf("got %q, want %q", fw.buf.String(), "payload")
	}
}

type brokenPipeWriter struct{}

func (brokenPipeWriter) Write(p []byte) (int, error) {
	return 0, syscall.EPIPE
}

func TestWriteTerminatesOnBrokenPipe(t *testing.T) {
	w := New(brokenPipeWriter{})
	err := w.write([]byte("x"))
	if !errors.Is(err, ErrBrokenPipe) {
		t.Errorf("got %v, want wrapped ErrBrokenPipe", err)
	}
}
