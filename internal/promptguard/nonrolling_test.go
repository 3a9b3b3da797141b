package promptguard

import (
	"testing"
	"time"
)

func TestExplicitApprovalHintDetectsCanonicalCard(t *testing.T) {
	if !ContainsExplicitApprovalHint([]byte("This command requires approval\n")) {
		t.Error("expected explicit hint")
	}
}

func TestExplicitApprovalHintDetectsStyledVariant(t *testing.T) {
	in := []byte("\x1b[1;33mThis command requires approval\x1b[0m\n")
	if !ContainsExplicitApprovalHint(in) {
		t.Error("expected explicit hint through ANSI styling")
	}
}

func TestExplicitApprovalHintDetectsProceedQuestion(t *testing.T) {
	if !ContainsExplicitApprovalHint([]byte("Do you want to proceed?\n")) {
		t.Error("expected proceed-question hint")
	}
}

func TestExplicitApprovalHintIgnoresPlainOutput(t *testing.T) {
	if ContainsExplicitApprovalHint([]byte("Building module... done\n")) {
		t.Error("did not expect explicit hint on plain build output")
	}
}

func TestNumberedApprovalHintDetectsYesNoCard(t *testing.T) {
	in := []byte("Do you want to proceed?\n1. Yes\n2. No\n")
	if !ContainsNumberedApprovalHint(in) {
		t.Error("expected numbered hint")
	}
}

func TestNumberedApprovalHintDetectsWrappedBulletedCard(t *testing.T) {
	in := []byte("Allow this command?\n  o 1. Yes, proceed\n  o 2. No, cancel\n")
	if !ContainsNumberedApprovalHint(in) {
		t.Error("expected numbered hint on bulleted wrapped card")
	}
}

func TestNumberedApprovalHintIgnoresPlainNumberedList(t *testing.T) {
	in := []byte("Steps:\n1. Install deps\n2. Run build\n3. Ship\n")
	if ContainsNumberedApprovalHint(in) {
		t.Error("did not expect numbered hint on a plain numbered list")
	}
}

func TestLiveApprovalCardHintRequiresBothSignals(t *testing.T) {
	explicitOnly := []byte("This command requires approval\n")
	if ContainsLiveApprovalCardHint(explicitOnly) {
		t.Error("explicit-only text should not count as a live card")
	}
	both := []byte("This command requires approval\nDo you want to proceed?\n1. Yes\n2. No\n")
	if !ContainsLiveApprovalCardHint(both) {
		t.Error("expected live card when both signals present")
	}
}

func TestToolActivityHintIgnoresPlainBashHeading(t *testing.T) {
	if ContainsToolActivityHint([]byte("## Bash commands\nls -la\n")) {
		t.Error("heading mentioning bash commands should not match tool activity")
	}
}

func TestToolActivityHintDetectsBashInvocation(t *testing.T) {
	if !ContainsToolActivityHint([]byte("Bash(ls -la)\n")) {
		t.Error("expected tool activity hint for Bash(...) invocation")
	}
}

func TestToolActivityHintDetectsMoreToolsSummary(t *testing.T) {
	if !ContainsToolActivityHint([]byte("+2 more tool uses\n")) {
		t.Error("expected tool activity hint for '+N more tool use' summary")
	}
}

func TestSubstantialNonPromptActivityIgnoresBareKeystrokeEcho(t *testing.T) {
	if ContainsSubstantialNonPromptActivity([]byte("y")) {
		t.Error("bare 'y' echo should not count as substantial activity")
	}
	if ContainsSubstantialNonPromptActivity([]byte("1")) {
		t.Error("bare '1' echo should not count as substantial activity")
	}
}

func TestSubstantialNonPromptActivityDetectsRealOutput(t *testing.T) {
	if !ContainsSubstantialNonPromptActivity([]byte("Compiling 42 packages for release build\n")) {
		t.Error("expected real build output to count as substantial activity")
	}
}

func TestSubstantialNonPromptActivityIgnoresApprovalCardText(t *testing.T) {
	if ContainsSubstantialNonPromptActivity([]byte("This command requires approval\nDo you want to proceed?\n1. Yes\n2. No\n")) {
		t.Error("approval card text should not count as substantial non-prompt activity")
	}
}

func TestNonRollingDetectorSuppressesOnLiveCard(t *testing.T) {
	d := NewNonRollingDetector()
	now := time.Unix(1700000000, 0)
	suppressed := d.FeedOutput(now, []byte("This command requires approval\nDo you want to proceed?\n1. Yes\n2. No\n"))
	if !suppressed {
		t.Fatal("expected suppression to engage on a live approval card")
	}
	if !d.ShouldSuppressHUD() {
		t.Error("expected ShouldSuppressHUD to reflect engaged suppression")
	}
}

func TestNonRollingDetectorReleasesAfterResolutionAndQuietOutput(t *testing.T) {
	d := NewNonRollingDetector()
	now := time.Unix(1700000000, 0)
	d.FeedOutput(now, []byte("This command requires approval\nDo you want to proceed?\n1. Yes\n2. No\n"))

	if !d.ShouldResolveOnInput([]byte("y")) {
		t.Fatal("expected 'y' to be a resolution candidate")
	}
	d.OnUserInput(now)

	now = now.Add(ToolActivityHold + time.Second)
	d.FeedOutput(now, []byte("Running build step 3 of 9, this may take a while\n"))

	afterSticky := now.Add(NonRollingStickyHold + time.Millisecond)
	if !d.ShouldRelease(afterSticky, time.Time{}) {
		t.Error("expected release once sticky hold elapsed and window shows no live card")
	}
}

func TestNonRollingDetectorDoesNotReleaseWhileCardStillLive(t *testing.T) {
	d := NewNonRollingDetector()
	now := time.Unix(1700000000, 0)
	d.FeedOutput(now, []byte("This command requires approval\nDo you want to proceed?\n1. Yes\n2. No\n"))
	d.OnUserInput(now)

	now = now.Add(NonRollingStickyHold + time.Second)
	d.FeedOutput(now, []byte("This command requires approval\nDo you want to proceed?\n1. Yes\n2. No\n"))
	if d.ShouldRelease(now, time.Time{}) {
		t.Error("did not expect release while a live card is still in the window")
	}
}

func TestNonRollingDetectorStaleWindowResetsOnGap(t *testing.T) {
	d := NewNonRollingDetector()
	now := time.Unix(1700000000, 0)
	d.append(now, []byte("partial approval"))
	later := now.Add(NonRollingWindowStale + time.Millisecond)
	d.append(later, []byte("fresh output"))
	if string(d.window) != "fresh output" {
		t.Errorf("expected stale window to reset, got %q", d.window)
	}
}

func TestNonRollingDetectorMaxAgeExpiresWindow(t *testing.T) {
	d := NewNonRollingDetector()
	now := time.Unix(1700000000, 0)
	d.append(now, []byte("some output"))
	d.expireIfStale(now.Add(NonRollingWindowMaxAge + time.Second))
	if len(d.window) != 0 {
		t.Error("expected window to expire after max age")
	}
}
