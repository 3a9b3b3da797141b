// Package devbroker implements the DevPanel overlay's command console:
// splitting a typed command line into argv and dispatching it to a small
// registry of local diagnostic commands. It satisfies
// eventloop.DevBroker.
package devbroker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/shlex"
)

// Split splits a raw command line typed into the DevPanel overlay into
// argv, honoring shell quoting rules so a command can carry spaces.
func Split(line string) ([]string, error) {
	return shlex.Split(line)
}

// Handler runs one dev command and returns the text to show in the
// DevPanel overlay.
type Handler func(ctx context.Context, args []string) (string, error)

// Broker dispatches argv to registered Handlers. The zero value is not
// usable; construct with New.
type Broker struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// New returns a Broker preloaded with the built-in diagnostic commands
// ("help", "echo").
func New() *Broker {
	b := &Broker{handlers: make(map[string]Handler)}
	b.Register("help", b.help)
	b.Register("echo", echo)
	return b
}

// Register adds or replaces the handler for name.
func (b *Broker) Register(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = h
}

// Dispatch implements eventloop.DevBroker.
func (b *Broker) Dispatch(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("devbroker: empty command")
	}
	b.mu.RLock()
	h, ok := b.handlers[argv[0]]
	b.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("devbroker: unknown command %q", argv[0])
	}
	return h(ctx, argv[1:])
}

func (b *Broker) help(ctx context.Context, args []string) (string, error) {
	b.mu.RLock()
	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	b.mu.RUnlock()
	sort.Strings(names)
	return strings.Join(names, ", "), nil
}

func echo(ctx context.Context, args []string) (string, error) {
	return strings.Join(args, " "), nil
}
