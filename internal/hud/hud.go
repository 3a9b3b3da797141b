// Package hud holds the pure functions mapping HUD state to a rendered
// status banner and its clickable button hitboxes. Nothing here touches
// the terminal, the PTY, or a channel — this package's job is to be
// trivially testable: state in, StatusBanner out.
package hud

import (
	"fmt"
	"strings"

	"github.com/voiceterm/voiceterm/internal/layout"
	"github.com/voiceterm/voiceterm/internal/termstyle"
)

// Style selects how much screen the HUD claims.
type Style int

const (
	StyleFull Style = iota
	StyleMinimal
	StyleHidden
)

// RecordingState is the voice-capture state driving the left-hand indicator.
type RecordingState int

const (
	RecordingIdle RecordingState = iota
	RecordingActive
	RecordingProcessing
	RecordingResponding
)

// VoiceMode selects how recording is triggered.
type VoiceMode int

const (
	VoiceModeAuto VoiceMode = iota
	VoiceModeManual
	VoiceModeOff
)

// ButtonAction identifies what a clickable HUD region does when activated.
type ButtonAction int

const (
	ActionToggleVoiceMode ButtonAction = iota
	ActionToggleHudStyle
	ActionOpenSettings
	ActionOpenHelp
	ActionOpenThemePicker
	ActionToggleDevPanel
	ActionOpenLauncher
	ActionOpenTranscriptHistory
)

// ButtonPosition is a clickable rectangle on one HUD row. Row is numbered
// from the bottom: row 1 is the bottom-most HUD line.
type ButtonPosition struct {
	StartX int
	EndX   int
	Row    int
	Action ButtonAction
}

// State is everything the renderer needs to draw one frame.
type State struct {
	Style             Style
	Recording         RecordingState
	VoiceMode         VoiceMode
	MeterDB           float64
	HasMeter          bool
	QueueDepth        int
	QueuePaused       bool
	Message           string
	BackendLabel      string
	AgentName         string
	PromptSuppressed  bool
	Width             int
}

// StatusBanner is the renderer's output: display lines plus their hitboxes,
// and the total row height the banner occupies.
type StatusBanner struct {
	Lines   []string
	Buttons []ButtonPosition
	Height  int
}

// Render returns the banner for the given state. A suppressed prompt
// always yields a zero-height banner, regardless of Style, so the PTY
// reclaims every row (§3, §8 property 5).
func Render(s State) StatusBanner {
	if s.PromptSuppressed {
		return StatusBanner{Height: 0}
	}
	switch s.Style {
	case StyleHidden:
		return renderHidden(s)
	case StyleMinimal:
		return renderMinimal(s)
	default:
		return renderFull(s)
	}
}

func recordingIndicator(rs RecordingState, vm VoiceMode) (glyph, label string, color func(string) string) {
	switch rs {
	case RecordingActive:
		return "●", "REC", termstyle.Red
	case RecordingProcessing:
		return "◐", "PROCESSING", termstyle.Yellow
	case RecordingResponding:
		return "◑", "RESPONDING", termstyle.Cyan
	default:
		switch vm {
		case VoiceModeAuto:
			return "◉", "AUTO", termstyle.Green
		case VoiceModeManual:
			return "●", "PTT", termstyle.Gray
		default:
			return "○", "IDLE", termstyle.Gray
		}
	}
}

func statusText(s State) string {
	if s.QueueDepth > 0 {
		if s.QueuePaused {
			return fmt.Sprintf("[%d paused]", s.QueueDepth)
		}
		return fmt.Sprintf("[%d queued]", s.QueueDepth)
	}
	if s.Message != "" {
		return s.Message
	}
	if s.Recording == RecordingIdle {
		return termstyle.Green("Ready")
	}
	return ""
}

func renderHidden(s State) StatusBanner {
	if s.Recording == RecordingIdle {
		label := "[ voiceterm ]"
		col := s.Width - layout.StringWidth(label)
		if col < 0 {
			col = 0
		}
		line := strings.Repeat(" ", col) + termstyle.Dim(label)
		return StatusBanner{
			Lines:  []string{line},
			Height: 1,
			Buttons: []ButtonPosition{
				{StartX: col, EndX: col + layout.StringWidth(label), Row: 1, Action: ActionOpenLauncher},
			},
		}
	}
	glyph, label, _ := recordingIndicator(s.Recording, s.VoiceMode)
	line := layout.TruncateToWidth(termstyle.Dim(glyph+" "+strings.ToLower(label)), s.Width)
	return StatusBanner{Lines: []string{line}, Height: 1}
}

func renderMinimal(s State) StatusBanner {
	glyph, label, color := recordingIndicator(s.Recording, s.VoiceMode)
	left := color(glyph + " " + label)
	if s.Width < BreakpointMinimal {
		line := layout.TruncateToWidth(left, s.Width)
		return StatusBanner{
			Lines:  []string{line},
			Height: 1,
			Buttons: []ButtonPosition{
				{StartX: 0, EndX: layout.StringWidth(left), Row: 1, Action: ActionToggleVoiceMode},
			},
		}
	}
	var parts []string
	parts = append(parts, left)
	if s.Recording == RecordingActive && s.HasMeter {
		parts = append(parts, fmt.Sprintf("%3.0fdB", s.MeterDB))
	}
	if st := statusText(s); st != "" {
		parts = append(parts, st)
	}
	line := strings.Join(parts, termstyle.Dim(" · "))
	line = layout.TruncateToWidth(line, s.Width)
	return StatusBanner{
		Lines:  []string{line},
		Height: 1,
		Buttons: []ButtonPosition{
			{StartX: 0, EndX: layout.StringWidth(left), Row: 1, Action: ActionToggleVoiceMode},
		},
	}
}

func renderFull(s State) StatusBanner {
	if s.Width < BreakpointCompact {
		return renderMinimal(s)
	}

	glyph, label, color := recordingIndicator(s.Recording, s.VoiceMode)
	left := " " + color(glyph+" "+label)
	right := ""
	if s.AgentName != "" {
		right = s.AgentName + " "
	}

	status := statusText(s)
	sep := " | "
	var sb strings.Builder
	sb.WriteString(left)
	if status != "" {
		sb.WriteString(sep)
		sb.WriteString(status)
	}
	if s.BackendLabel != "" {
		sb.WriteString(sep)
		sb.WriteString(termstyle.Dim(s.BackendLabel))
	}
	statusLine := sb.String()

	if layout.StringWidth(statusLine)+layout.StringWidth(right) > s.Width {
		statusLine = left
		if status != "" {
			statusLine += sep + status
		}
	}
	statusLine = layout.PadRight(layout.TruncateToWidth(statusLine, s.Width-layout.StringWidth(right)), s.Width-layout.StringWidth(right)) + right

	buttonsLine, buttons := renderButtonRow(s)

	return StatusBanner{
		Lines:   []string{buttonsLine, statusLine},
		Height:  2,
		Buttons: buttons,
	}
}

type buttonSpec struct {
	label  string
	action ButtonAction
}

var fullButtonSpecs = []buttonSpec{
	{"[Voice]", ActionToggleVoiceMode},
	{"[Style]", ActionToggleHudStyle},
	{"[Settings]", ActionOpenSettings},
	{"[Theme]", ActionOpenThemePicker},
	{"[History]", ActionOpenTranscriptHistory},
	{"[Dev]", ActionToggleDevPanel},
	{"[Help]", ActionOpenHelp},
}

// renderButtonRow lays out the button row, widening as the terminal grows:
// below BreakpointMedium the labels pack edge to edge to fit as many
// buttons as possible in limited columns; at BreakpointMedium and above
// they gain a single space of separation; at BreakpointFull and above the
// row also carries a leading recording-state glyph, the same information
// the status line below it repeats in full.
func renderButtonRow(s State) (string, []ButtonPosition) {
	width := s.Width
	spaced := width >= BreakpointMedium

	var sb strings.Builder
	x := 0
	if width >= BreakpointFull {
		glyph, _, color := recordingIndicator(s.Recording, s.VoiceMode)
		prefix := color(glyph) + " "
		sb.WriteString(prefix)
		x = layout.StringWidth(prefix)
	}
	sb.WriteByte(' ')
	x++

	var buttons []ButtonPosition
	for i, spec := range fullButtonSpecs {
		if x+layout.StringWidth(spec.label) > width {
			break
		}
		sb.WriteString(spec.label)
		buttons = append(buttons, ButtonPosition{StartX: x, EndX: x + layout.StringWidth(spec.label), Row: 2, Action: spec.action})
		x += layout.StringWidth(spec.label)
		if spaced && i != len(fullButtonSpecs)-1 {
			sb.WriteByte(' ')
			x++
		}
	}
	return layout.PadRight(sb.String(), width), buttons
}
