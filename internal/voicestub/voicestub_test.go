package voicestub

import (
	"context"
	"errors"
	"testing"
)

func TestStartCaptureAlwaysFails(t *testing.T) {
	m := New()
	if err := m.StartCapture(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestEventsChannelNeverFires(t *testing.T) {
	m := New()
	select {
	case ev := <-m.Events():
		t.Fatalf("expected no event, got %+v", ev)
	default:
	}
}

func TestCancelCaptureDoesNotPanic(t *testing.T) {
	New().CancelCapture()
}
