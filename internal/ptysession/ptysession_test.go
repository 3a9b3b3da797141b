package ptysession

import (
	"strings"
	"testing"
	"time"

	"github.com/vito/midterm"
)

func TestSpawnAndWriteRoundTrip(t *testing.T) {
	s, err := Spawn("/bin/cat", nil, 24, 80, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Close()

	if _, err := s.Write([]byte("hello\n"), time.Second); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := make(chan OutputChunk, 1)
	done := make(chan struct{})
	go s.ReadLoop(out, done)

	select {
	case chunk := <-out:
		if !strings.Contains(string(chunk.Data), "hello") {
			t.Errorf("expected echoed output to contain %q, got %q", "hello", chunk.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echoed output")
	}
}

func TestResizeSucceeds(t *testing.T) {
	s, err := Spawn("/bin/cat", nil, 24, 80, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Close()

	if err := s.Resize(30, 100); err != nil {
		t.Errorf("Resize: %v", err)
	}
}

func TestIsIdleFalseBeforeAnyOutput(t *testing.T) {
	s, err := Spawn("/bin/cat", nil, 24, 80, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Close()

	if s.IsIdle(time.Millisecond) {
		t.Error("expected IsIdle to be false before any output observed")
	}
}

func TestReadLoopFeedsScrollback(t *testing.T) {
	s, err := Spawn("/bin/cat", nil, 24, 80, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Close()

	if _, err := s.Write([]byte("echoed-line\n"), time.Second); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := make(chan OutputChunk, 4)
	done := make(chan struct{})
	go s.ReadLoop(out, done)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-out:
			var found bool
			s.WithScrollback(func(vt *midterm.Terminal) {
				for _, line := range vt.Content {
					if strings.Contains(string(line), "echoed-line") {
						found = true
					}
				}
			})
			if found {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for scrollback to observe echoed output")
		}
	}
}
