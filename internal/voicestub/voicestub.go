// Package voicestub is the no-op stand-in for a real voice pipeline,
// satisfying eventloop.VoiceManager. A real implementation (speech capture,
// VAD, a transcription backend) is an external collaborator out of this
// repository's scope; this stub exists so the event loop has something to
// construct and drive in tests and in builds without voice configured.
package voicestub

import (
	"context"
	"errors"

	"github.com/voiceterm/voiceterm/internal/eventloop"
)

// ErrNotConfigured is returned by StartCapture since this stub never
// actually captures audio.
var ErrNotConfigured = errors.New("voicestub: voice capture not configured")

// Manager implements eventloop.VoiceManager by doing nothing: its event
// channel never fires, and StartCapture always fails.
type Manager struct {
	events chan eventloop.VoiceEvent
}

// New returns a Manager whose Events channel never produces a value.
func New() *Manager {
	return &Manager{events: make(chan eventloop.VoiceEvent)}
}

// StartCapture always fails; there is nothing to capture from.
func (m *Manager) StartCapture(ctx context.Context) error {
	return ErrNotConfigured
}

// CancelCapture is a no-op.
func (m *Manager) CancelCapture() {}

// Events returns a channel that never fires.
func (m *Manager) Events() <-chan eventloop.VoiceEvent {
	return m.events
}
