// Package promptguard implements the prompt-occlusion detectors: two
// independent strategies for recognizing when the child process has
// emitted an interactive approval/permission prompt that the HUD must not
// cover.
package promptguard

import "time"

// Timing constants, ported from the original prompt-occlusion engine.
const (
	// ReleaseDebounce is the floor added to the release-not-before deadline
	// every time an approval hint is observed.
	ReleaseDebounce = 3000 * time.Millisecond

	// ToolActivityHold extends the release deadline on rolling hosts when a
	// tool-activity line (Bash(...), Web Search(...), "+N more tool use") is
	// seen.
	ToolActivityHold = 2200 * time.Millisecond

	// NonRollingWindowMaxBytes bounds the non-rolling approval window.
	NonRollingWindowMaxBytes = 12 * 1024

	// NonRollingWindowStale purges the window when used to infer release.
	NonRollingWindowStale = 1800 * time.Millisecond

	// NonRollingWindowMaxAge purges the window unconditionally.
	NonRollingWindowMaxAge = 90 * time.Second

	// NonRollingWindowInputTail is the tail retained after an input-arm event.
	NonRollingWindowInputTail = 2048

	// NonRollingWindowScanTail bounds how much of the window's tail is
	// re-scanned for a live approval card.
	NonRollingWindowScanTail = 8192

	// NonRollingCardScanLines bounds how many trailing lines the numbered-hint
	// scan considers.
	NonRollingCardScanLines = 64

	// NonRollingStickyHold keeps suppression engaged after a resolution key
	// to absorb rapid consecutive re-prompts.
	NonRollingStickyHold = 850 * time.Millisecond

	// RollingSuppressionTimeout bounds how long the rolling detector will
	// hold suppression without a fresh matching line.
	RollingSuppressionTimeout = 180 * time.Second

	// StartupGuardTimeout bounds how long a StartupGuard prompt is honored
	// before it is assumed stale.
	StartupGuardTimeout = 2 * time.Second
)

// DebugEnvVar is the environment variable that enables prompt-occlusion
// trace logging.
const DebugEnvVar = "VOICETERM_DEBUG_CLAUDE_HUD"

// ApprovalSuppressionCanonicalFeed is a canonical approval card that the
// rolling detector recognizes as a SingleCommandApproval prompt. Nothing in
// the event loop feeds it to a detector.
var ApprovalSuppressionCanonicalFeed = []byte("This command requires approval\nDo you want to proceed?\n1. Yes\n2. No\n")
