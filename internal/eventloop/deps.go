// Package eventloop is the integrator: a single goroutine that
// cooperatively multiplexes PTY output, input events, voice/wake events,
// and a periodic tick, driving the prompt-occlusion detector, the HUD
// state, and the overlay state machine, and emitting writer.Message values
// on its one outbound channel.
package eventloop

import (
	"context"
	"time"

	"github.com/voiceterm/voiceterm/internal/writer"
)

// VoiceEvent is a transcription/capture lifecycle event from the voice
// subsystem.
type VoiceEvent struct {
	Kind   VoiceEventKind
	Text   string
	Err    error
}

// VoiceEventKind classifies a VoiceEvent.
type VoiceEventKind int

const (
	VoiceEventCaptureStarted VoiceEventKind = iota
	VoiceEventCaptureStopped
	VoiceEventTranscript
	VoiceEventError
)

// WakeWordEvent is a detection lifecycle event from the wake-word runtime.
type WakeWordEvent struct {
	Detected bool
}

// Direction tags which side of the PTY produced ingested bytes.
type Direction int

const (
	DirectionChildOutput Direction = iota
	DirectionUserInput
)

// PTYSession is the capability trait over a spawned child process PTY.
type PTYSession interface {
	Write(p []byte, timeout time.Duration) (int, error)
	Resize(rows, cols int) error
}

// WriterHandle is the capability trait over the single terminal-output
// owner. Send blocks past the channel's own capacity and is meant for
// low-volume, must-deliver messages (HUD redraws, overlay frames, resize).
// TrySend never blocks: it reports false immediately if the channel is
// full, so a caller on the hot PTY-output path can fall back to queuing
// instead of stalling the whole event loop.
type WriterHandle interface {
	Send(msg writer.Message)
	TrySend(msg writer.Message) bool
}

// VoiceManager is the capability trait over voice capture.
type VoiceManager interface {
	StartCapture(ctx context.Context) error
	CancelCapture()
	Events() <-chan VoiceEvent
}

// WakeWordRuntime is the capability trait over wake-word detection.
type WakeWordRuntime interface {
	Events() <-chan WakeWordEvent
}

// DevBroker is the capability trait over the developer command console.
type DevBroker interface {
	Dispatch(ctx context.Context, argv []string) (string, error)
}

// MeterSource is the capability trait over the live input-level meter.
type MeterSource interface {
	// SampleDB returns the current dB level and whether a signal is present.
	SampleDB() (float64, bool)
}

// MemoryIngestor is the capability trait over transcript/memory logging.
type MemoryIngestor interface {
	Ingest(direction Direction, b []byte)
}

// ScrollbackRenderer is the capability trait over the child's retained
// screen history, used only to render the TranscriptHistory overlay frame.
type ScrollbackRenderer interface {
	RenderScrollback(rows, cols, offset int) []byte
}

// Deps bundles every external collaborator the loop talks to, each
// substitutable by a fake in tests. Deps is read once at construction and
// never mutated by Loop.Run.
type Deps struct {
	PTY          PTYSession
	Writer       WriterHandle
	Voice        VoiceManager
	WakeWord     WakeWordRuntime
	DevBroker    DevBroker
	Meter        MeterSource
	Memory       MemoryIngestor
	Scrollback   ScrollbackRenderer
	BackendLabel string
}
