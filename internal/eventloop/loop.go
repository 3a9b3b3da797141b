package eventloop

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/voiceterm/voiceterm/internal/hud"
	"github.com/voiceterm/voiceterm/internal/inputparser"
	"github.com/voiceterm/voiceterm/internal/promptguard"
	"github.com/voiceterm/voiceterm/internal/ptysession"
	"github.com/voiceterm/voiceterm/internal/writer"
)

const ptyWriteTimeout = 3 * time.Second

// Loop is the single-goroutine integrator. Construct with New, feed it
// channels, and call Run from exactly one goroutine.
type Loop struct {
	deps  Deps
	state *State
}

// New returns a Loop ready to run.
func New(deps Deps, state *State) *Loop {
	return &Loop{deps: deps, state: state}
}

// Run multiplexes ptyOut (PTY output chunks), input (decoded input
// events), and a 50ms tick until ctx is cancelled, input closes, or a
// fatal error occurs. It returns the terminating error, or nil on a clean
// Exit/EOF shutdown.
func (l *Loop) Run(ctx context.Context, ptyOut <-chan []byte, input <-chan inputparser.Event) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	var voiceCh <-chan VoiceEvent
	if l.deps.Voice != nil {
		voiceCh = l.deps.Voice.Events()
	}
	var wakeCh <-chan WakeWordEvent
	if l.deps.WakeWord != nil {
		wakeCh = l.deps.WakeWord.Events()
	}

	activePtyOut := ptyOut

	for l.state.Running {
		select {
		case <-ctx.Done():
			l.state.Running = false

		case chunk, ok := <-activePtyOut:
			if !ok {
				l.state.Running = false
				continue
			}
			l.handlePTYOutput(chunk)
			if len(l.state.PendingPTYOutput) > 0 {
				// Writer is backed up: stop consuming new PTY output until
				// the stashed chunk flushes, so reads naturally pause
				// upstream instead of piling more bytes into memory.
				activePtyOut = nil
			}

		case ev, ok := <-input:
			if !ok {
				l.state.Running = false
				continue
			}
			if err := l.handleInput(ev); err != nil {
				return err
			}

		case ev, ok := <-voiceCh:
			if ok {
				l.handleVoiceEvent(ev)
			}

		case ev, ok := <-wakeCh:
			if ok {
				l.handleWakeEvent(ev)
			}

		case now := <-ticker.C:
			l.tick(now)
			if activePtyOut == nil && l.flushPendingPTYOutput() {
				activePtyOut = ptyOut
			}
		}
	}

	l.drainPending()
	return nil
}

// handlePTYOutput feeds the prompt detector, forwards the chunk to the
// writer, and reconciles suppression state — in that order, matching
// feed_prompt_output_and_sync's ordering.
func (l *Loop) handlePTYOutput(chunk []byte) {
	now := time.Now()
	if newlyDetected := l.state.Detector.FeedOutput(now, chunk); newlyDetected {
		l.state.ReleaseNotBefore = now.Add(promptguard.ReleaseDebounce)
	}
	if _, rolling := l.state.Detector.(*promptguard.RollingDetector); rolling && promptguard.ContainsToolActivityHint(chunk) {
		extended := now.Add(promptguard.ToolActivityHold)
		if extended.After(l.state.ReleaseNotBefore) {
			l.state.ReleaseNotBefore = extended
		}
	}

	if len(chunk) > 0 && l.state.HUD.Recording == hud.RecordingResponding {
		// The child has started talking back: the response is no longer
		// pending. State updates silently here; the next redraw this state
		// triggers naturally (not forced) will show it.
		l.state.HUD.Recording = hud.RecordingIdle
	}

	l.sendOrQueuePTYOutput(chunk)
	if l.deps.Memory != nil {
		l.ingestAndCap(DirectionChildOutput, chunk)
	}

	l.syncPromptSuppressionFromDetector(now)
}

// sendOrQueuePTYOutput attempts a non-blocking delivery of chunk to the
// writer. A full writer channel stashes chunk in PendingPTYOutput instead
// of blocking the whole select loop — input, voice, and tick handling all
// keep running while the writer catches up.
func (l *Loop) sendOrQueuePTYOutput(chunk []byte) {
	if len(l.state.PendingPTYOutput) > 0 {
		l.state.PendingPTYOutput = append(l.state.PendingPTYOutput, chunk...)
		return
	}
	if !l.deps.Writer.TrySend(writer.Message{Kind: writer.KindPtyOutput, Bytes: chunk}) {
		l.state.PendingPTYOutput = append(l.state.PendingPTYOutput, chunk...)
	}
}

// flushPendingPTYOutput retries delivering the stashed chunk and reports
// whether the writer has caught up (nothing left pending).
func (l *Loop) flushPendingPTYOutput() bool {
	if len(l.state.PendingPTYOutput) == 0 {
		return true
	}
	if l.deps.Writer.TrySend(writer.Message{Kind: writer.KindPtyOutput, Bytes: l.state.PendingPTYOutput}) {
		l.state.PendingPTYOutput = nil
		return true
	}
	return false
}

// syncPromptSuppressionFromDetector reconciles State.PromptSuppressed with
// the detector's current belief, honoring the release-not-before debounce
// floor for both strategies. A rolling StartupGuard ready marker clears
// that floor so the guard releases at once.
func (l *Loop) syncPromptSuppressionFromDetector(now time.Time) {
	if nr, ok := l.state.Detector.(*promptguard.NonRollingDetector); ok {
		if l.state.PromptSuppressed && nr.ShouldRelease(now, l.state.ReleaseNotBefore) {
			nr.Release()
			l.applyPromptSuppression(false)
		} else if !l.state.PromptSuppressed && nr.ShouldSuppressHUD() {
			l.applyPromptSuppression(true)
		}
		return
	}

	if _, ok := l.state.Detector.TakeReadyMarker(); ok {
		l.state.ReleaseNotBefore = time.Time{}
	}
	want := l.state.Detector.ShouldSuppressHUD() || now.Before(l.state.ReleaseNotBefore)
	if want != l.state.PromptSuppressed {
		l.applyPromptSuppression(want)
	}
}

// applyPromptSuppression is the sole mutator of State.PromptSuppressed.
// On a transition it resizes the writer's scroll region and the PTY using
// the cached State.Rows/Cols, then clears and redraws the HUD rows so no
// stale glyphs remain on the rows that changed ownership.
func (l *Loop) applyPromptSuppression(suppressed bool) {
	if l.state.PromptSuppressed == suppressed {
		return
	}
	l.state.PromptSuppressed = suppressed
	l.state.HUD.PromptSuppressed = suppressed

	hudHeight := 0
	banner := renderBanner(l.state)
	hudHeight = banner.Height
	childRows := l.state.childRows(hudHeight)

	l.deps.Writer.Send(writer.Message{Kind: writer.KindResize, Rows: l.state.Rows, Cols: l.state.Cols, HudHeight: hudHeight})
	if l.deps.PTY != nil {
		l.deps.PTY.Resize(childRows, l.state.Cols)
	}
	l.deps.Writer.Send(writer.Message{Kind: writer.KindClearStatus})
	l.deps.Writer.Send(writer.Message{Kind: writer.KindEnhancedStatus, StatusLines: banner.Lines})
}

// registerPromptResolutionCandidate is consulted before forwarding raw
// bytes to the child: if the detector recognizes them as resolving the
// active prompt, it is notified so the release debounce can begin.
func (l *Loop) registerPromptResolutionCandidate(b []byte) {
	if l.state.Detector.ShouldResolveOnInput(b) {
		l.state.Detector.OnUserInput(time.Now())
	}
}

func (l *Loop) writeOrQueuePTYInput(p []byte) error {
	if l.deps.PTY == nil {
		return nil
	}
	n, err := l.deps.PTY.Write(p, ptyWriteTimeout)
	if err != nil && !isRetryable(err) {
		return ErrBrokenPipe
	}
	// The queue is capped at 256 KiB: overflow drops the newest bytes and
	// tells the user.
	const maxPendingPTYInputBytes = 256 * 1024
	rest := p[n:]
	if room := max(maxPendingPTYInputBytes-len(l.state.PendingPTYInput), 0); len(rest) > room {
		rest = rest[:room]
		l.state.HUD.Message = "warning: input queue full, dropped input"
		l.state.StatusClearAt = time.Now().Add(StatusClearDefaultHold)
	}
	l.state.PendingPTYInput = append(l.state.PendingPTYInput, rest...)
	return nil
}

// isRetryable reports whether a failed PTY write should be queued for
// retry rather than treated as the child having gone away. A write
// timeout (the child's read side is just slow/blocked) is retryable;
// EOF, a closed file, or a broken pipe mean the PTY is gone for good.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ptysession.ErrWriteTimeout) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EPIPE) {
		return false
	}
	return true
}

func (l *Loop) flushPendingPTYInput() {
	if len(l.state.PendingPTYInput) == 0 || l.deps.PTY == nil {
		return
	}
	attempts := 0
	for len(l.state.PendingPTYInput) > 0 && attempts < MaxPendingPTYInputFlushes {
		attempts++
		n, err := l.deps.PTY.Write(l.state.PendingPTYInput, ptyWriteTimeout)
		if n > 0 {
			l.state.PendingPTYInput = l.state.PendingPTYInput[n:]
		}
		if err != nil {
			break
		}
	}
}

func (l *Loop) ingestAndCap(dir Direction, b []byte) {
	l.deps.Memory.Ingest(dir, b)
	l.state.IngestBuffer = append(l.state.IngestBuffer, b...)
	if over := len(l.state.IngestBuffer) - MaxIngestBufferBytes; over > 0 {
		l.state.IngestBuffer = l.state.IngestBuffer[over:]
	}
}

func (l *Loop) handleVoiceEvent(ev VoiceEvent) {
	switch ev.Kind {
	case VoiceEventCaptureStarted:
		l.state.HUD.Recording = hud.RecordingActive
	case VoiceEventCaptureStopped:
		l.state.HUD.Recording = hud.RecordingProcessing
	case VoiceEventTranscript:
		if ev.Text == "" {
			l.state.HUD.Recording = hud.RecordingIdle
			return
		}
		l.registerPromptResolutionCandidate([]byte(ev.Text))
		_ = l.writeOrQueuePTYInput([]byte(ev.Text))
		// The transcript is on its way to the child; until it starts
		// writing back, the recording indicator shows we're awaiting a
		// response (see handlePTYOutput's Responding→Idle transition).
		l.state.HUD.Recording = hud.RecordingResponding
	case VoiceEventError:
		l.state.HUD.Recording = hud.RecordingIdle
	}
}

func (l *Loop) handleWakeEvent(ev WakeWordEvent) {
	if !ev.Detected || l.state.Overlay.IsActive() || l.state.HUD.Recording == hud.RecordingActive {
		return
	}
	if l.deps.Voice != nil {
		_ = l.deps.Voice.StartCapture(context.Background())
	}
}

func (l *Loop) tick(now time.Time) {
	l.syncPromptSuppressionFromDetector(now)
	l.flushPendingPTYInput()
	if l.deps.Meter != nil {
		if db, ok := l.deps.Meter.SampleDB(); ok {
			l.state.HUD.MeterDB = db
			l.state.HUD.HasMeter = true
		} else {
			l.state.HUD.HasMeter = false
		}
	}
	if !l.state.StatusClearAt.IsZero() && now.After(l.state.StatusClearAt) {
		l.state.HUD.Message = ""
		l.state.StatusClearAt = time.Time{}
	}
}

func (l *Loop) drainPending() {
	l.flushPendingPTYInput()
	if len(l.state.PendingPTYOutput) > 0 {
		l.deps.Writer.Send(writer.Message{Kind: writer.KindPtyOutput, Bytes: l.state.PendingPTYOutput})
		l.state.PendingPTYOutput = nil
	}
}
