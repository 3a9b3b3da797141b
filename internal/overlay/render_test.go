package overlay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vito/midterm"
)

func TestBodyReturnsNonEmptyForKnownKinds(t *testing.T) {
	for _, k := range []Kind{KindHelp, KindSettings, KindThemePicker, KindThemeStudio, KindDevPanel, KindToastHistory} {
		if len(Body(k)) == 0 {
			t.Errorf("Body(%v) returned no lines", k)
		}
	}
}

func TestBodyReturnsNilForNoneAndTranscriptHistory(t *testing.T) {
	if Body(KindNone) != nil {
		t.Error("Body(KindNone) should be nil")
	}
	if Body(KindTranscriptHistory) != nil {
		t.Error("Body(KindTranscriptHistory) should be nil; its content is dynamic")
	}
}

func TestRenderFrameIncludesTitleAndBody(t *testing.T) {
	out := string(RenderFrame(KindHelp, 10, 80, Body(KindHelp)))
	if !strings.Contains(out, Title(KindHelp)) {
		t.Error("expected rendered frame to contain the overlay title")
	}
	if !strings.Contains(out, Body(KindHelp)[0]) {
		t.Error("expected rendered frame to contain the first body line")
	}
}

func TestRenderScrollbackHandlesNilTerminal(t *testing.T) {
	out := RenderScrollback(nil, 10, 80, 0)
	if len(out) == 0 {
		t.Error("expected a non-empty fallback frame for a nil terminal")
	}
}

func TestRenderScrollbackRendersWrittenContent(t *testing.T) {
	vt := midterm.NewTerminal(5, 20)
	vt.Write([]byte("hello from the child\r\n"))

	out := RenderScrollback(vt, 5, 20, 0)
	if !bytes.Contains(out, []byte("hello from the child")) {
		t.Errorf("expected rendered scrollback to contain written text, got %q", out)
	}
}

func TestRenderScrollbackShowsScrollingIndicatorWhenOffset(t *testing.T) {
	vt := midterm.NewTerminal(5, 20)
	vt.Write([]byte("line one\r\nline two\r\nline three\r\n"))

	out := RenderScrollback(vt, 5, 20, 2)
	if !bytes.Contains(out, []byte("(scrolling)")) {
		t.Error("expected scrolling indicator when offset > 0")
	}
}
