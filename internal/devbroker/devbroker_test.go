package devbroker

import (
	"context"
	"testing"
)

func TestSplitHonorsQuoting(t *testing.T) {
	argv, err := Split(`echo "hello world" foo`)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := []string{"echo", "hello world", "foo"}
	if len(argv) != len(want) {
		t.Fatalf("got %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestDispatchEcho(t *testing.T) {
	b := New()
	out, err := b.Dispatch(context.Background(), []string{"echo", "a", "b"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if out != "a b" {
		t.Errorf("got %q, want %q", out, "a b")
	}
}

func TestDispatchUnknownCommandErrors(t *testing.T) {
	b := New()
	if _, err := b.Dispatch(context.Background(), []string{"nope"}); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestDispatchEmptyArgvErrors(t *testing.T) {
	b := New()
	if _, err := b.Dispatch(context.Background(), nil); err == nil {
		t.Error("expected error for empty argv")
	}
}

func TestRegisterAddsCustomHandler(t *testing.T) {
	b := New()
	b.Register("ping", func(ctx context.Context, args []string) (string, error) {
		return "pong", nil
	})
	out, err := b.Dispatch(context.Background(), []string{"ping"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if out != "pong" {
		t.Errorf("got %q, want pong", out)
	}
}
