package eventloop

import (
	"github.com/voiceterm/voiceterm/internal/hud"
	"github.com/voiceterm/voiceterm/internal/inputparser"
	"github.com/voiceterm/voiceterm/internal/overlay"
	"github.com/voiceterm/voiceterm/internal/writer"
)

// handleInput dispatches one decoded input event. Overlay-owned input is
// routed to the overlay state machine first; everything else either
// toggles HUD/overlay state locally, is forwarded to the child PTY, or is
// dropped (Tab, Ctrl+Escape, word motion, Ctrl+A/E/K/U).
// Enter, Escape, plain bytes and unclassified escape sequences consult
// registerPromptResolutionCandidate before they are forwarded.
func (l *Loop) handleInput(ev inputparser.Event) error {
	if l.state.Overlay.IsActive() {
		return l.handleOverlayInput(ev)
	}

	switch ev.Kind {
	case inputparser.EventMenuToggle:
		l.state.Overlay.Open(overlay.KindHelp)
		l.redrawOverlay()
		return nil

	case inputparser.EventCtrlEnter:
		l.state.Overlay.Open(overlay.KindHelp)
		l.redrawOverlay()
		return nil

	case inputparser.EventEnter:
		l.registerPromptResolutionCandidate([]byte{'\r'})
		return l.writeOrQueuePTYInput([]byte{'\r'})

	case inputparser.EventShiftEnter:
		return l.writeOrQueuePTYInput([]byte{'\n'})

	case inputparser.EventCtrlEscape:
		return nil

	case inputparser.EventBareEscape:
		l.registerPromptResolutionCandidate([]byte{0x1b})
		return l.writeOrQueuePTYInput([]byte{0x1b})

	case inputparser.EventBackspace:
		return l.writeOrQueuePTYInput([]byte{ev.Byte})

	case inputparser.EventCtrlA, inputparser.EventCtrlE, inputparser.EventCtrlK, inputparser.EventCtrlU:
		return nil // line-editing shortcuts are dropped, not forwarded to the child

	case inputparser.EventTab:
		return nil

	case inputparser.EventArrowUp, inputparser.EventArrowDown, inputparser.EventArrowLeft, inputparser.EventArrowRight:
		return l.writeOrQueuePTYInput(ev.Raw)

	case inputparser.EventWordForward, inputparser.EventWordBackward:
		return nil

	case inputparser.EventMouse:
		return l.handleMouse(ev)

	case inputparser.EventPassthroughEscSeq:
		l.registerPromptResolutionCandidate(ev.Raw)
		return l.writeOrQueuePTYInput(ev.Raw)

	case inputparser.EventByte:
		l.registerPromptResolutionCandidate([]byte{ev.Byte})
		return l.writeOrQueuePTYInput([]byte{ev.Byte})
	}
	return nil
}

func (l *Loop) handleMouse(ev inputparser.Event) error {
	if !ev.Press {
		return nil
	}
	banner := renderBanner(l.state)
	for _, btn := range banner.Buttons {
		if l.buttonHit(btn, banner.Height, ev.X, ev.Y) {
			l.activateButton(btn.Action)
			return nil
		}
	}
	return nil
}

// buttonHit tests a 1-based terminal column/row against btn, translating
// btn's bottom-up Row (1 = bottom-most HUD line) into the absolute screen
// row the banner occupies: the HUD always sits flush against the bottom of
// the terminal, in the rows the PTY gave up via State.childRows.
func (l *Loop) buttonHit(btn hud.ButtonPosition, bannerHeight, x, y int) bool {
	if bannerHeight == 0 {
		return false
	}
	screenRow := l.state.Rows - btn.Row + 1
	col := x - 1 // StartX/EndX are 0-based column offsets
	return y == screenRow && col >= btn.StartX && col < btn.EndX
}

func (l *Loop) activateButton(action hud.ButtonAction) {
	opened := true
	switch action {
	case hud.ActionToggleVoiceMode:
		l.state.HUD.VoiceMode = (l.state.HUD.VoiceMode + 1) % 3
		opened = false
	case hud.ActionToggleHudStyle:
		l.state.HUD.Style = (l.state.HUD.Style + 1) % 3
		opened = false
	case hud.ActionOpenSettings:
		l.state.Overlay.Open(overlay.KindSettings)
	case hud.ActionOpenHelp:
		l.state.Overlay.Open(overlay.KindHelp)
	case hud.ActionOpenThemePicker:
		l.state.Overlay.Open(overlay.KindThemePicker)
	case hud.ActionToggleDevPanel:
		l.state.Overlay.Open(overlay.KindDevPanel)
	case hud.ActionOpenTranscriptHistory:
		l.state.Overlay.Open(overlay.KindTranscriptHistory)
	case hud.ActionOpenLauncher:
		l.state.HUD.Style = hud.StyleFull
		opened = false
	}
	if opened {
		l.redrawOverlay()
		return
	}
	l.redrawHUD()
}

// handleOverlayInput closes the overlay on Escape. Up/Down scroll the
// TranscriptHistory overlay; in any other overlay they are queued for
// replay, as are plain bytes. Every other event is ignored while an
// overlay is open.
func (l *Loop) handleOverlayInput(ev inputparser.Event) error {
	switch ev.Kind {
	case inputparser.EventBareEscape:
		replay := l.state.Overlay.Close()
		l.redrawHUD()
		if len(replay) > 0 {
			// Replayed bytes go to the child as raw PTY input on the next
			// tick's flush; they are not dispatched as input events again.
			l.state.PendingPTYInput = append(l.state.PendingPTYInput, replay...)
		}
		return nil
	case inputparser.EventArrowUp:
		if l.state.Overlay.Active == overlay.KindTranscriptHistory {
			l.state.Overlay.ScrollUp(1)
			l.redrawOverlay()
			return nil
		}
		l.state.Overlay.QueueUnhandled(ev.Raw)
		return nil
	case inputparser.EventArrowDown:
		if l.state.Overlay.Active == overlay.KindTranscriptHistory {
			l.state.Overlay.ScrollDown(1)
			l.redrawOverlay()
			return nil
		}
		l.state.Overlay.QueueUnhandled(ev.Raw)
		return nil
	case inputparser.EventByte:
		l.state.Overlay.QueueUnhandled([]byte{ev.Byte})
		return nil
	}
	return nil
}

func (l *Loop) redrawHUD() {
	banner := renderBanner(l.state)
	l.deps.Writer.Send(writer.Message{Kind: writer.KindEnhancedStatus, StatusLines: banner.Lines})
}

// redrawOverlay renders the active overlay's content into a full-screen
// frame and sends it as one writer message, so the overlay never appears
// half-drawn between a header write and a body write. TranscriptHistory is
// the one kind whose content is dynamic (the child's retained scrollback);
// every other kind is a fixed body script from overlay.Body.
func (l *Loop) redrawOverlay() {
	kind := l.state.Overlay.Active
	height := overlay.Height(kind, l.state.Rows)

	var content []byte
	if kind == overlay.KindTranscriptHistory && l.deps.Scrollback != nil {
		content = l.deps.Scrollback.RenderScrollback(height, l.state.Cols, l.state.Overlay.ScrollOffset)
	} else {
		content = overlay.RenderFrame(kind, height, l.state.Cols, overlay.Body(kind))
	}

	l.deps.Writer.Send(writer.Message{
		Kind:           writer.KindShowOverlay,
		OverlayContent: content,
		OverlayHeight:  height,
	})
}
