package daemon

import (
	"bytes"
	"testing"

	"github.com/voiceterm/voiceterm/internal/socketdir"
)

func TestSocketPathForMatchesFormat(t *testing.T) {
	got := socketPathFor("/tmp/sockets", "my-session")
	want := "/tmp/sockets/" + socketdir.Format(socketdir.TypeSession, "my-session")
	if got != want {
		t.Errorf("socketPathFor() = %q, want %q", got, want)
	}
}

func TestSwitchableWriterDefaultsToDiscard(t *testing.T) {
	w := newSwitchableWriter()
	n, err := w.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 5 {
		t.Errorf("n = %d, want 5", n)
	}
}

func TestSwitchableWriterRedirectsAfterSetTarget(t *testing.T) {
	w := newSwitchableWriter()
	var buf bytes.Buffer
	w.SetTarget(&buf)

	if _, err := w.Write([]byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "payload" {
		t.Errorf("buf = %q, want %q", buf.String(), "payload")
	}
}

func TestSwitchableWriterCanBeRedirectedBack(t *testing.T) {
	w := newSwitchableWriter()
	var buf bytes.Buffer
	w.SetTarget(&buf)
	w.Write([]byte("a"))
	w.SetTarget(nil)
}
