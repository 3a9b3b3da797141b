// Package wakestub is the no-op stand-in for a real wake-word runtime,
// satisfying eventloop.WakeWordRuntime. A production wake-word detector
// (always-listening audio model) is an external collaborator out of this
// repository's scope.
package wakestub

import "github.com/voiceterm/voiceterm/internal/eventloop"

// Runtime implements eventloop.WakeWordRuntime by never detecting anything.
type Runtime struct {
	events chan eventloop.WakeWordEvent
}

// New returns a Runtime whose Events channel never produces a value.
func New() *Runtime {
	return &Runtime{events: make(chan eventloop.WakeWordEvent)}
}

// Events returns a channel that never fires.
func (r *Runtime) Events() <-chan eventloop.WakeWordEvent {
	return r.events
}
