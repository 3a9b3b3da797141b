package session

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/voiceterm/voiceterm/internal/config"
)

func TestNewSpawnsChildAndRunsLoop(t *testing.T) {
	s, err := New("test-session", "/bin/cat", nil, 24, 80, Deps{BackendLabel: "claude"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, &out) }()

	select {
	case <-errCh:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestDirCreatesSessionDirectory(t *testing.T) {
	base := t.TempDir()
	if err := config.WriteMarker(base); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	t.Setenv("VOICETERM_DIR", base)
	config.ResetResolveCache()
	t.Cleanup(config.ResetResolveCache)

	dir, err := Dir("my-session")
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if dir == "" {
		t.Error("expected non-empty directory")
	}
}

func TestAcquireLockFailsOnSecondHolder(t *testing.T) {
	dir := t.TempDir()
	lock1, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("first AcquireLock: %v", err)
	}
	defer lock1.Unlock()

	if _, err := AcquireLock(dir); err == nil {
		t.Error("expected second AcquireLock to fail while first holds the lock")
	}
}
