// Package overlay implements the layered-UI state machine: Help, Settings,
// the theme picker/studio, transcript history, the dev panel, and the
// toast history all replace the HUD banner with a full-screen frame while
// active, and hand back to it on close.
package overlay

// Kind enumerates the overlay frames the event loop can show. None means
// no overlay is active and the HUD/child content renders normally.
type Kind int

const (
	KindNone Kind = iota
	KindHelp
	KindSettings
	KindThemePicker
	KindThemeStudio
	KindTranscriptHistory
	KindDevPanel
	KindToastHistory
)

// State tracks which overlay is active and the bytes it captured from the
// input stream that it did not itself consume ("replay" semantics): when
// the overlay closes, the event loop writes those bytes to the child PTY
// rather than dropping them.
type State struct {
	Active  Kind
	Replay  []byte

	// ScrollOffset is how many lines up from the bottom the
	// TranscriptHistory overlay is currently scrolled. Unused by every
	// other Kind.
	ScrollOffset int
}

// New returns a State with no overlay active.
func New() *State {
	return &State{}
}

// Open switches to the given overlay kind. Opening while already on a
// different overlay kind discards any pending replay buffer from the
// previous one: the new overlay starts with a clean input slate.
func (s *State) Open(kind Kind) {
	if s.Active != kind {
		s.Replay = nil
		s.ScrollOffset = 0
	}
	s.Active = kind
}

// ScrollUp increases ScrollOffset (further back in history) by n lines.
func (s *State) ScrollUp(n int) {
	s.ScrollOffset += n
}

// ScrollDown decreases ScrollOffset by n lines, floored at 0 (the live
// bottom of the transcript).
func (s *State) ScrollDown(n int) {
	s.ScrollOffset -= n
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}

// Close returns to KindNone and returns any bytes queued for replay. The
// event loop queues them as raw PTY input; they do not pass through the
// input parser again.
func (s *State) Close() []byte {
	replay := s.Replay
	s.Active = KindNone
	s.Replay = nil
	return replay
}

// IsActive reports whether any overlay currently owns the screen.
func (s *State) IsActive() bool {
	return s.Active != KindNone
}

// QueueUnhandled appends bytes the active overlay's own input handling did
// not recognize, so they survive the overlay's close and are replayed
// rather than silently swallowed.
func (s *State) QueueUnhandled(b []byte) {
	s.Replay = append(s.Replay, b...)
}

// Height returns the number of rows the given overlay kind reserves,
// given the available terminal rows. Overlays are full-screen: they
// reserve every row except one status line at the bottom.
func Height(kind Kind, terminalRows int) int {
	if kind == KindNone {
		return 0
	}
	if terminalRows <= 1 {
		return terminalRows
	}
	return terminalRows - 1
}

// Title returns the display title for a given overlay kind, used by the
// frame renderer's header row.
func Title(kind Kind) string {
	switch kind {
	case KindHelp:
		return "Help"
	case KindSettings:
		return "Settings"
	case KindThemePicker:
		return "Theme"
	case KindThemeStudio:
		return "Theme Studio"
	case KindTranscriptHistory:
		return "Transcript History"
	case KindDevPanel:
		return "Dev Panel"
	case KindToastHistory:
		return "Notifications"
	default:
		return ""
	}
}
