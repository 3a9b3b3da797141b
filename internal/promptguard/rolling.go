package promptguard

import (
	"strings"
	"time"

	"github.com/voiceterm/voiceterm/internal/layout"
)

// RollingDetector re-parses the full redrawn transcript on every frame,
// which is how JetBrains-family terminal hosts present child output. It
// buffers lines rather than a byte window, and classifies the prompt type
// it sees so the event loop can special-case StartupGuard release.
type RollingDetector struct {
	enabled            bool
	detectReplyComposer bool

	suppressed     bool
	suppressedAt   time.Time
	lastPromptType PromptType
	hasPromptType  bool

	lineBuffer []byte
	recentLines []string
	maxContextLines int

	resolvedOnReadyMarker      bool
	readyMarkerFromStartupGuard bool
}

// NewRollingDetector returns a rolling detector gated on the given backend.
func NewRollingDetector(backendLabel string) *RollingDetector {
	return newRollingDetectorWithPolicy(BackendSupportsGuard(backendLabel), false)
}

func newRollingDetectorWithPolicy(enabled, detectReplyComposer bool) *RollingDetector {
	return &RollingDetector{
		enabled:             enabled,
		detectReplyComposer: detectReplyComposer,
		maxContextLines:     8,
	}
}

func suppressionTimeout(promptType PromptType, hasPromptType bool) time.Duration {
	if hasPromptType && promptType == PromptTypeStartupGuard {
		return StartupGuardTimeout
	}
	return RollingSuppressionTimeout
}

func (d *RollingDetector) reset() {
	d.suppressed = false
	d.suppressedAt = time.Time{}
	d.hasPromptType = false
	d.lastPromptType = PromptTypeNone
	d.resolvedOnReadyMarker = false
	d.readyMarkerFromStartupGuard = false
	d.recentLines = d.recentLines[:0]
	d.lineBuffer = d.lineBuffer[:0]
}

func (d *RollingDetector) pushContextLine(line string) {
	if len(d.recentLines) >= d.maxContextLines {
		d.recentLines = d.recentLines[1:]
	}
	d.recentLines = append(d.recentLines, line)
}

func (d *RollingDetector) combinedContext() string {
	parts := make([]string, 0, len(d.recentLines)+1)
	parts = append(parts, d.recentLines...)
	current := string(d.lineBuffer)
	if strings.TrimSpace(current) != "" {
		parts = append(parts, current)
	}
	return strings.Join(parts, "\n")
}

// FeedOutput implements Detector.
func (d *RollingDetector) FeedOutput(now time.Time, chunk []byte) bool {
	if !d.enabled {
		return false
	}

	if d.suppressed && !d.suppressedAt.IsZero() &&
		now.Sub(d.suppressedAt) >= suppressionTimeout(d.lastPromptType, d.hasPromptType) {
		d.reset()
	}

	cleaned := layout.StripANSI(chunk)
	wasSuppressedAtEntry := d.suppressed
	newlyDetected := false

	for _, b := range cleaned {
		switch b {
		case '\n':
			line := string(d.lineBuffer)
			if strings.TrimSpace(line) != "" {
				d.pushContextLine(line)
			}
			d.lineBuffer = d.lineBuffer[:0]
		case '\r':
			if len(d.lineBuffer) > 0 {
				line := string(d.lineBuffer)
				if strings.TrimSpace(line) != "" {
					d.pushContextLine(line)
				}
				d.lineBuffer = d.lineBuffer[:0]
			}
		case '\t':
			d.lineBuffer = append(d.lineBuffer, ' ')
		default:
			if b >= 0x20 && b != 0x7f {
				d.lineBuffer = append(d.lineBuffer, b)
			}
		}
	}

	currentLine := strings.ToLower(string(d.lineBuffer))
	combinedContext := d.combinedContext()
	lowerContext := strings.ToLower(combinedContext)

	startupReadyCandidate := d.suppressed && d.hasPromptType &&
		d.lastPromptType == PromptTypeStartupGuard &&
		startupGuardReady(currentLine, lowerContext)
	if startupReadyCandidate {
		d.suppressed = false
		d.suppressedAt = time.Time{}
		d.hasPromptType = false
		d.lastPromptType = PromptTypeNone
		d.resolvedOnReadyMarker = true
		d.readyMarkerFromStartupGuard = true
	}

	promptType, ok := detectPromptType(currentLine, lowerContext, d.detectReplyComposer)
	if ok {
		if !d.suppressed {
			d.suppressed = true
			if !wasSuppressedAtEntry {
				newlyDetected = true
			}
		}
		d.suppressedAt = now
		d.lastPromptType = promptType
		d.hasPromptType = true
		d.resolvedOnReadyMarker = false
		d.readyMarkerFromStartupGuard = false
	}

	return newlyDetected
}

// ShouldSuppressHUD implements Detector.
func (d *RollingDetector) ShouldSuppressHUD() bool {
	if !d.suppressed {
		return false
	}
	if !d.suppressedAt.IsZero() {
		if time.Since(d.suppressedAt) >= suppressionTimeout(d.lastPromptType, d.hasPromptType) {
			return false
		}
	}
	return true
}

// ActivateStartupGuard arms a short startup suppression window so the HUD
// never flashes over the first-frame redraw on rolling hosts.
func (d *RollingDetector) ActivateStartupGuard(now time.Time) {
	if !d.enabled {
		return
	}
	d.suppressed = true
	d.suppressedAt = now
	d.lastPromptType = PromptTypeStartupGuard
	d.hasPromptType = true
}

// OnUserInput implements Detector.
func (d *RollingDetector) OnUserInput(now time.Time) {
	if d.suppressed {
		d.suppressed = false
		d.suppressedAt = time.Time{}
		d.hasPromptType = false
		d.lastPromptType = PromptTypeNone
		d.recentLines = d.recentLines[:0]
		d.lineBuffer = d.lineBuffer[:0]
	}
}

// TakeReadyMarker implements Detector: consumes the one-shot startup-guard
// ready-marker transition, if any.
func (d *RollingDetector) TakeReadyMarker() (PromptType, bool) {
	if !d.resolvedOnReadyMarker {
		return PromptTypeNone, false
	}
	d.resolvedOnReadyMarker = false
	d.readyMarkerFromStartupGuard = false
	return PromptTypeStartupGuard, true
}

// ShouldResolveOnInput implements Detector.
func (d *RollingDetector) ShouldResolveOnInput(b []byte) bool {
	if !d.suppressed || len(b) == 0 {
		return false
	}
	switch d.lastPromptType {
	case PromptTypeReplyComposer:
		for _, c := range b {
			switch c {
			case '\r', '\n', 0x03, 0x04, 0x1b:
				return true
			}
		}
		return false
	case PromptTypeStartupGuard:
		return false
	default:
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
}

func contextMatchesPatterns(currentLine, context string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(context, p) || strings.Contains(currentLine, p) {
			return true
		}
	}
	return false
}

func detectPromptType(currentLine, context string, detectReplyComposer bool) (PromptType, bool) {
	if detectReplyComposer &&
		(looksLikeReplyComposer(currentLine) || contextMatchesPatterns(currentLine, context, replyComposerPatterns)) {
		return PromptTypeReplyComposer, true
	}

	hasBashHeader := strings.Contains(currentLine, "bash command") || strings.Contains(context, "bash command")
	hasApprovalText := strings.Contains(currentLine, "do you want to proceed") ||
		strings.Contains(context, "do you want to proceed") ||
		strings.Contains(currentLine, "this command requires approval") ||
		strings.Contains(context, "this command requires approval") ||
		strings.Contains(currentLine, "requires approval") ||
		strings.Contains(context, "requires approval")
	if hasBashHeader && hasApprovalText {
		return PromptTypeSingleCommandApproval, true
	}

	if looksLikeNumberedApprovalCard(context) {
		return PromptTypeSingleCommandApproval, true
	}

	if contextMatchesPatterns(currentLine, context, worktreePermissionPatterns) {
		return PromptTypeWorktreePermission, true
	}
	if contextMatchesPatterns(currentLine, context, multiToolBatchPatterns) {
		return PromptTypeMultiToolBatch, true
	}
	if contextMatchesPatterns(currentLine, context, singleCommandPatterns) {
		return PromptTypeSingleCommandApproval, true
	}
	return PromptTypeNone, false
}

func looksLikeNumberedApprovalCard(context string) bool {
	lines := strings.Split(context, "\n")
	var hasOption1, hasOption2, hasOption3, hasYes, hasNo, hasApprovalText, hasDontAskAgain bool

	count := 0
	for i := len(lines) - 1; i >= 0 && count < 12; i-- {
		count++
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
		if strings.Contains(lowered, " no") || strings.HasPrefix(lowered, "no") {
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
	hasApprovalSemantics := (hasYes && hasNo) || hasApprovalText || hasDontAskAgain
	return hasNumberedOptions && hasApprovalSemantics
}

func looksLikeReplyComposer(currentLine string) bool {
	trimmed := strings.TrimSpace(currentLine)
	if trimmed == "" || len(trimmed) > 240 {
		return false
	}
	return strings.HasPrefix(trimmed, "❯") || strings.HasPrefix(trimmed, "›") || strings.HasPrefix(trimmed, "〉")
}

func startupGuardReady(currentLine, context string) bool {
	for _, p := range startupReadyPatterns {
		if strings.Contains(context, p) || strings.Contains(currentLine, p) {
			return true
		}
	}
	lines := strings.Split(context, "\n")
	count := 0
	for i := len(lines) - 1; i >= 0 && count < 4; i-- {
		count++
		trimmed := strings.TrimLeft(lines[i], " \t")
		if strings.HasPrefix(trimmed, "❯") || strings.HasPrefix(trimmed, "›") || strings.HasPrefix(trimmed, "〉") {
			return true
		}
		if strings.HasPrefix(trimmed, ">") && len(trimmed) > 1 {
			return true
		}
	}
	return false
}
