package promptguard

import (
	"os"
	"strings"
	"sync"
	"time"
)

// PromptType classifies the approval/permission prompt the rolling
// detector recognized at release.
type PromptType int

const (
	PromptTypeNone PromptType = iota
	PromptTypeSingleCommandApproval
	PromptTypeWorktreePermission
	PromptTypeMultiToolBatch
	PromptTypeStartupGuard
	PromptTypeReplyComposer
)

func (p PromptType) String() string {
	switch p {
	case PromptTypeSingleCommandApproval:
		return "single-command-approval"
	case PromptTypeWorktreePermission:
		return "worktree-permission"
	case PromptTypeMultiToolBatch:
		return "multi-tool-batch"
	case PromptTypeStartupGuard:
		return "startup-guard"
	case PromptTypeReplyComposer:
		return "reply-composer"
	default:
		return "none"
	}
}

// Detector is the capability set both prompt-occlusion strategies
// implement, so the event loop can hold either behind one interface and
// never switch strategies mid-session (Design Note 5).
type Detector interface {
	// FeedOutput records a PTY output chunk. The non-rolling detector
	// reports whether it currently believes the HUD should be suppressed;
	// the rolling detector reports true only for the chunk that newly
	// engaged suppression.
	FeedOutput(now time.Time, chunk []byte) bool

	// ShouldSuppressHUD reports the detector's current suppression belief
	// without feeding new data.
	ShouldSuppressHUD() bool

	// ShouldResolveOnInput reports whether the given raw input bytes
	// should be treated as a prompt-resolution candidate.
	ShouldResolveOnInput(b []byte) bool

	// OnUserInput notifies the detector that resolution-capable bytes were
	// sent to the child.
	OnUserInput(now time.Time)

	// TakeReadyMarker returns and clears any pending ready-marker prompt
	// type recorded at the most recent release (used by StartupGuard).
	TakeReadyMarker() (PromptType, bool)
}

// ShouldUseRollingDetector decides, once per session, which strategy to
// use based on terminal-host detection. JetBrains-family terminals redraw
// the whole transcript region on every frame, which the rolling
// line-buffering detector is built for; everything else uses the
// non-rolling byte-window latch.
func ShouldUseRollingDetector() bool {
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))
	if termProgram == "jetbrains" || termProgram == "jetbrains-jediterm" {
		return true
	}
	if os.Getenv("JETBRAINS_IDE") != "" || os.Getenv("IDEA_INITIAL_DIRECTORY") != "" {
		return true
	}
	return false
}

// BackendSupportsGuard reports whether the given backend label is known to
// emit the approval-prompt text this detector understands. A rolling
// detector built for any other backend label never suppresses; the
// non-rolling detector does not consult the backend label.
func BackendSupportsGuard(backendLabel string) bool {
	switch strings.ToLower(strings.TrimSpace(backendLabel)) {
	case "claude", "claude-code", "codex":
		return true
	default:
		return false
	}
}

// DebugEnabled reports whether prompt-occlusion trace logging is enabled,
// evaluated lazily and cached once per process per Design Note 3.
var DebugEnabled = sync.OnceValue(func() bool {
	return isTruthyEnv(DebugEnvVar)
})

func isTruthyEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
