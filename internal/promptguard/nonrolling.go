package promptguard

import (
	"strings"
	"time"

	"github.com/voiceterm/voiceterm/internal/layout"
)

// NonRollingDetector is the default prompt-occlusion strategy: it
// accumulates ANSI-stripped child output into a bounded approval window and
// scans the tail for two independent hints — explicit approval text and a
// numbered Yes/No options card. Suppression engages only when both are
// present in the current window, and releases only after a resolution key
// is observed and the window no longer contains a live approval card.
type NonRollingDetector struct {
	window       []byte
	lastUpdate   time.Time
	releaseArmed bool
	stickyUntil  time.Time
	suppressed   bool
}

// NewNonRollingDetector returns a detector with an empty window.
func NewNonRollingDetector() *NonRollingDetector {
	return &NonRollingDetector{}
}

func (d *NonRollingDetector) append(now time.Time, data []byte) {
	if d.lastUpdate.IsZero() || now.Sub(d.lastUpdate) > NonRollingWindowStale {
		// Stale window: start fresh rather than stitching unrelated output.
		d.window = d.window[:0]
	}
	d.window = append(d.window, layout.StripANSI(data)...)
	if len(d.window) > NonRollingWindowMaxBytes {
		d.window = d.window[len(d.window)-NonRollingWindowMaxBytes:]
	}
	d.lastUpdate = now
}

func (d *NonRollingDetector) expireIfStale(now time.Time) {
	if d.lastUpdate.IsZero() {
		return
	}
	if now.Sub(d.lastUpdate) > NonRollingWindowMaxAge {
		d.window = d.window[:0]
	}
}

func (d *NonRollingDetector) retainTail(n int) {
	if len(d.window) > n {
		d.window = append([]byte(nil), d.window[len(d.window)-n:]...)
	}
}

func tailSlice(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}

// FeedOutput implements Detector.
func (d *NonRollingDetector) FeedOutput(now time.Time, chunk []byte) bool {
	d.expireIfStale(now)

	explicitChunk := ContainsExplicitApprovalHint(chunk)
	numberedChunk := ContainsNumberedApprovalHint(chunk)
	if explicitChunk || numberedChunk {
		d.releaseArmed = false
	} else if d.releaseArmed && ContainsSubstantialNonPromptActivity(chunk) {
		d.window = d.window[:0]
	}

	d.append(now, chunk)
	scan := tailSlice(d.window, NonRollingWindowScanTail)
	explicitWindow := ContainsExplicitApprovalHint(scan)
	numberedWindow := ContainsNumberedApprovalHint(scan)
	liveWindow := explicitWindow && numberedWindow

	approvalHint := liveWindow

	if approvalHint && !(d.releaseArmed && !explicitChunk && !numberedChunk) {
		d.suppressed = true
	}
	return d.suppressed
}

// ShouldSuppressHUD implements Detector.
func (d *NonRollingDetector) ShouldSuppressHUD() bool {
	return d.suppressed
}

// ShouldResolveOnInput implements Detector. Resolution-capable bytes are a
// single byte from the fixed set in §4.5.
func (d *NonRollingDetector) ShouldResolveOnInput(b []byte) bool {
	if len(b) != 1 {
		return false
	}
	switch b[0] {
	case '\r', '\n', 'y', 'Y', 'n', 'N', '1', '2', '3', 0x03, 0x04, 0x1b:
		return true
	default:
		return false
	}
}

// OnUserInput implements Detector: arms release, retains only the freshest
// window tail, and starts the sticky hold.
func (d *NonRollingDetector) OnUserInput(now time.Time) {
	d.retainTail(NonRollingWindowInputTail)
	d.releaseArmed = true
	d.stickyUntil = now.Add(NonRollingStickyHold)
}

// TakeReadyMarker implements Detector. The non-rolling detector never
// produces a ready marker; release is governed entirely by window
// liveness and the sticky hold.
func (d *NonRollingDetector) TakeReadyMarker() (PromptType, bool) {
	return PromptTypeNone, false
}

// ShouldRelease reports whether suppression should release given the
// current window contents, the sticky hold, and the release-not-before
// deadline. Called by the event loop's periodic reconciliation
// (sync_prompt_suppression_from_detector in the original).
func (d *NonRollingDetector) ShouldRelease(now time.Time, notBefore time.Time) bool {
	if !d.releaseArmed {
		return false
	}
	if !notBefore.IsZero() && now.Before(notBefore) {
		return false
	}
	scan := tailSlice(d.window, NonRollingWindowScanTail)
	if ContainsExplicitApprovalHint(scan) && ContainsNumberedApprovalHint(scan) {
		return false
	}
	if !d.stickyUntil.IsZero() && now.Before(d.stickyUntil) {
		return false
	}
	return true
}

// Release clears suppression and window state. Called once the event loop
// has decided to transition suppressed -> released.
func (d *NonRollingDetector) Release() {
	d.suppressed = false
	d.releaseArmed = false
	d.stickyUntil = time.Time{}
	d.window = d.window[:0]
}

// --- heuristics, ported from the original byte-scanning detector ---

func normalizeApprovalHintText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	prevSpace := false
	for _, r := range string(b) {
		lower := toLowerRune(r)
		if isAlnumRune(lower) || strings.ContainsRune(":*/._-", lower) {
			sb.WriteRune(lower)
			prevSpace = false
			continue
		}
		if !prevSpace {
			sb.WriteByte(' ')
			prevSpace = true
		}
	}
	return sb.String()
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func isAlnumRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func compactNoWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ContainsExplicitApprovalHint reports whether bytes contain explicit
// approval-prompt phrasing ("this command requires approval", "do you
// want to proceed?"), tolerant of ANSI styling and line wrapping.
func ContainsExplicitApprovalHint(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	stripped := layout.StripANSI(b)
	if len(stripped) == 0 {
		return false
	}
	rawLower := strings.ToLower(string(stripped))
	if strings.Contains(rawLower, "this command requires approval") ||
		strings.Contains(rawLower, "thiscommandrequiresapproval") {
		return true
	}
	for _, line := range strings.Split(rawLower, "\n") {
		lowered := normalizeApprovalCardLine(line)
		if strings.HasPrefix(lowered, "do you want to proceed") ||
			strings.HasPrefix(lowered, "doyouwanttoproceed") {
			return true
		}
	}
	normalized := normalizeApprovalHintText(stripped)
	compact := compactNoWhitespace(normalized)
	if strings.Contains(normalized, "this command requires approval") ||
		strings.Contains(compact, "thiscommandrequiresapproval") ||
		strings.HasPrefix(normalized, "do you want to proceed") ||
		strings.HasPrefix(compact, "doyouwanttoproceed") {
		return true
	}
	if (strings.Contains(normalized, "yes and don t ask again for") ||
		strings.Contains(compact, "yesanddontaskagainfor")) &&
		strings.Contains(normalized, "1") && strings.Contains(normalized, "2") {
		return true
	}
	return false
}

// ContainsClaudePromptContext reports whether bytes contain backend-agnostic
// context markers suggesting an AI assistant is asking for a decision.
// ContainsSubstantialNonPromptActivity uses it to keep such text from
// counting as real output; neither detector engages suppression on it.
func ContainsClaudePromptContext(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	normalized := normalizeApprovalHintText(b)
	return strings.Contains(normalized, "claude wants to") ||
		strings.Contains(normalized, "what should claude do instead") ||
		strings.Contains(normalized, "tool use") ||
		strings.Contains(normalized, "claude code")
}

var cardLineTrimCutset = "•*-└│⏺›❯>→·▸▶◂"

func normalizeApprovalCardLine(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	trimmed = strings.TrimLeft(trimmed, cardLineTrimCutset)
	trimmed = strings.TrimLeft(trimmed, " \t")
	switch {
	case strings.HasPrefix(trimmed, "o "):
		trimmed = trimmed[2:]
	case strings.HasPrefix(trimmed, "o"):
		if len(trimmed) > 1 {
			c := trimmed[1]
			if (c >= '0' && c <= '9') || c == '.' || c == ')' || c == ':' || c == ' ' {
				trimmed = trimmed[1:]
			}
		}
	}
	return strings.ToLower(trimmed)
}

func startsWithNumberedOption(line string, option byte) bool {
	if len(line) < 2 {
		return false
	}
	if line[0] != option {
		return false
	}
	switch line[1] {
	case '.', ')', ':', ' ':
		return true
	default:
		return false
	}
}

// ContainsNumberedApprovalHint reports whether the trailing
// NonRollingCardScanLines lines of bytes look like a numbered Yes/No
// approval card.
func ContainsNumberedApprovalHint(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	lines := strings.Split(string(b), "\n")
	start := len(lines) - NonRollingCardScanLines
	if start < 0 {
		start = 0
	}

	var hasOption1, hasOption2, hasOption3, hasYes, hasNo, hasApprovalText, hasDontAskAgain bool
	for i := len(lines) - 1; i >= start; i-- {
		lowered := normalizeApprovalCardLine(lines[i])
		if startsWithNumberedOption(lowered, '1') {
			hasOption1 = true
		}
		if startsWithNumberedOption(lowered, '2') {
			hasOption2 = true
		}
		if startsWithNumberedOption(lowered, '3') {
			hasOption3 = true
		}
		if strings.Contains(lowered, " yes") || strings.HasPrefix(lowered, "yes") {
			hasYes = true
		}
		if strings.Contains(lowered, ".yes") || strings.Contains(lowered, ")yes") || strings.Contains(lowered, ":yes") {
			hasYes = true
		}
		if strings.Contains(lowered, " no") || strings.HasPrefix(lowered, "no") {
			hasNo = true
		}
		if strings.Contains(lowered, ".no") || strings.Contains(lowered, ")no") || strings.Contains(lowered, ":no") {
			hasNo = true
		}
		if strings.Contains(lowered, "don't ask again") || strings.Contains(lowered, "dont ask again") {
			hasDontAskAgain = true
		}
		if strings.Contains(lowered, "do you want") || strings.Contains(lowered, "requires approval") ||
			strings.Contains(lowered, "allow this command") || strings.Contains(lowered, "approve this action") {
			hasApprovalText = true
		}
	}

	hasNumberedOptions := hasOption1 && hasOption2 && (hasOption3 || hasNo || hasApprovalText || hasDontAskAgain)
	hasApprovalSemantics := hasDontAskAgain || hasApprovalText || (hasYes && hasNo)
	return hasNumberedOptions && hasApprovalSemantics
}

// ContainsLiveApprovalCardHint reports whether bytes contain both an
// explicit and a numbered hint at once — i.e. a "live" approval card.
func ContainsLiveApprovalCardHint(b []byte) bool {
	return ContainsExplicitApprovalHint(b) && ContainsNumberedApprovalHint(b)
}

// ContainsSubstantialNonPromptActivity reports whether bytes look like
// real output (not a bare resolution keystroke echo, not an approval
// card) — enough to consume a release arm started from a prior
// resolution key.
func ContainsSubstantialNonPromptActivity(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	stripped := layout.StripANSI(b)
	if len(stripped) == 0 {
		return false
	}
	trimmed := strings.TrimSpace(string(stripped))
	if trimmed == "" {
		return false
	}
	compact := compactNoWhitespace(trimmed)
	if compact == "" {
		return false
	}
	compactLower := strings.ToLower(compact)
	switch compactLower {
	case "1", "2", "3", "y", "n", "yes", "no", "enter":
		return false
	}
	if len(compactLower) < 8 {
		return false
	}
	if ContainsExplicitApprovalHint(stripped) || ContainsNumberedApprovalHint(stripped) || ContainsClaudePromptContext(stripped) {
		return false
	}
	return true
}

var toolActivityTrimCutset = "•*-└│⏺›❯>→·"

func normalizeToolActivityLine(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	trimmed = strings.TrimLeft(trimmed, toolActivityTrimCutset)
	trimmed = strings.TrimLeft(trimmed, " \t")
	return strings.ToLower(trimmed)
}

// ContainsToolActivityHint reports whether the trailing 12 lines of bytes
// mention tool-use activity (Bash(...), Web Search(...), "+N more tool
// use/call").
func ContainsToolActivityHint(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	lines := strings.Split(string(b), "\n")
	start := len(lines) - 12
	if start < 0 {
		start = 0
	}
	for i := len(lines) - 1; i >= start; i-- {
		lowered := normalizeToolActivityLine(lines[i])
		if strings.HasPrefix(lowered, "bash(") || lowered == "bash command" ||
			strings.HasPrefix(lowered, "web search(") || strings.HasPrefix(lowered, "google search(") ||
			strings.Contains(lowered, "running tools") {
			return true
		}
		for n := '1'; n <= '5'; n++ {
			if strings.Contains(lowered, "+"+string(n)+" more tool use") ||
				strings.Contains(lowered, "+"+string(n)+" more tool call") {
				return true
			}
		}
	}
	return false
}
