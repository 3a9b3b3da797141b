package eventloop

import (
	"time"

	"github.com/voiceterm/voiceterm/internal/hud"
	"github.com/voiceterm/voiceterm/internal/overlay"
	"github.com/voiceterm/voiceterm/internal/promptguard"
)

// Tick cadence and placeholder timing constants (§4.7).
const (
	TickInterval                = 50 * time.Millisecond
	MeterNoSignalPlaceholderMS  = 400 * time.Millisecond
	RecordingDurationUpdateMS   = 250 * time.Millisecond
	StatusClearDefaultHold      = 4 * time.Second
	ToastExpiry                 = 5 * time.Second
	ThemeFilePollInterval       = 1 * time.Second
	MaxPendingPTYInputFlushes   = 16
	MaxIngestBufferBytes        = 256 * 1024
)

// State is everything the loop owns exclusively; nothing outside
// Loop.Run ever touches it. It is intentionally not safe for concurrent
// use — that is the point of the channel-fed, single-goroutine design.
type State struct {
	Running bool

	Rows, Cols int
	HUD        hud.State
	Overlay    *overlay.State

	PromptSuppressed bool
	Detector         promptguard.Detector
	ReleaseNotBefore time.Time

	PendingPTYOutput []byte // backpressure buffer (writer channel full)
	PendingPTYInput  []byte // partial/WouldBlock write remainder

	IngestBuffer []byte

	StatusClearAt time.Time

	lastNonRolling *promptguard.NonRollingDetector
}

// NewState returns a State with fresh overlay/HUD/detector state. rolling
// selects which prompt-occlusion strategy to use (decided once per
// session by promptguard.ShouldUseRollingDetector).
func NewState(rows, cols int, backendLabel string, rolling bool) *State {
	s := &State{
		Running: true,
		Rows:    rows,
		Cols:    cols,
		Overlay: overlay.New(),
	}
	if rolling {
		s.Detector = promptguard.NewRollingDetector(backendLabel)
	} else {
		nr := promptguard.NewNonRollingDetector()
		s.Detector = nr
		s.lastNonRolling = nr
	}
	s.HUD.Width = cols
	return s
}

// childRows returns how many rows the child PTY gets given the current
// HUD banner height and suppression state (§3: suppressed ⇒ full rows).
func (s *State) childRows(hudHeight int) int {
	if s.PromptSuppressed {
		return s.Rows
	}
	return s.Rows - hudHeight
}
