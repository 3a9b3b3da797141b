package overlay

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vito/midterm"
)

// Body returns the static content lines for overlay kinds whose content
// doesn't depend on session state beyond the kind itself. TranscriptHistory
// is rendered separately by RenderScrollback, since its content comes from
// the child's retained screen buffer rather than a fixed script.
func Body(kind Kind) []string {
	switch kind {
	case KindHelp:
		return []string{
			"Ctrl+\\ or Ctrl+Enter   open this help",
			"Esc                    close this overlay",
			"Voice recording, the theme picker and the dev panel have no",
			"keyboard shortcut; the theme picker and dev panel open from the HUD buttons.",
		}
	case KindSettings:
		return []string{
			"backend_label           which assistant VoiceTerm is driving",
			"mouse_enabled           SGR mouse reporting for HUD buttons",
			"theme_index             HUD color theme",
			"meter_update_ms         voice level meter refresh interval",
			"prompt_context_fallback stored only; prompt detection does not read it",
		}
	case KindThemePicker:
		return []string{"Default", "High Contrast", "Solarized", "Dracula"}
	case KindThemeStudio:
		return []string{"Theme Studio is read-only in this build."}
	case KindDevPanel:
		return []string{
			"Broker built-ins: help, echo.",
			"Keys typed here are not sent to the broker; they reach the child when Esc closes this panel.",
		}
	case KindToastHistory:
		return []string{"No notifications yet."}
	default:
		return nil
	}
}

// RenderFrame composes a full-screen overlay frame: a title header row
// followed by body, every row explicitly cleared so no stale HUD/child
// glyphs survive underneath it.
func RenderFrame(kind Kind, rows, cols int, body []string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "\033[1;1H\033[2K\033[1m%s\033[0m", truncate(Title(kind), cols))
	for i := 0; i < rows-1; i++ {
		fmt.Fprintf(&buf, "\033[%d;1H\033[2K", i+2)
		if i < len(body) {
			buf.WriteString(truncate(body[i], cols))
		}
	}
	return buf.Bytes()
}

func truncate(s string, cols int) string {
	if cols > 0 && len(s) > cols {
		return s[:cols]
	}
	return s
}

// RenderScrollback renders rows of vt's retained screen buffer, starting
// offset lines up from the bottom, into a full-screen frame headed by a
// "(scrolling)" indicator when offset is non-zero. Returns bytes rather
// than writing through an owning Overlay struct, so the caller decides
// when and where to flush them.
func RenderScrollback(vt *midterm.Terminal, rows, cols, offset int) []byte {
	var buf bytes.Buffer
	if vt == nil {
		fmt.Fprintf(&buf, "\033[1;1H\033[2K\033[1m%s\033[0m", truncate(Title(KindTranscriptHistory), cols))
		return buf.Bytes()
	}

	bottom := vt.Cursor.Y
	startRow := bottom - rows + 1 - offset
	if startRow < 0 {
		startRow = 0
	}
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&buf, "\033[%d;1H\033[2K", i+1)
		renderLineFrom(&buf, vt, startRow+i)
	}
	if offset > 0 {
		indicator := "(scrolling)"
		col := cols - len(indicator) + 1
		if col < 1 {
			col = 1
		}
		fmt.Fprintf(&buf, "\033[1;%dH\033[7m%s\033[0m", col, indicator)
	}
	return buf.Bytes()
}

// renderLineFrom writes one formatted row of vt to buf, padding short rows
// with the format's background so partial-width lines don't leave stale
// glyphs from whatever previously occupied that screen row.
func renderLineFrom(buf *bytes.Buffer, vt *midterm.Terminal, row int) {
	if row < 0 || row >= len(vt.Content) {
		return
	}
	line := vt.Content[row]
	var pos int
	var lastFormat midterm.Format
	for region := range vt.Format.Regions(row) {
		f := region.F
		if f != lastFormat {
			buf.WriteString("\033[0m")
			buf.WriteString(f.Render())
			lastFormat = f
		}
		end := pos + region.Size

		if pos < len(line) {
			contentEnd := end
			if contentEnd > len(line) {
				contentEnd = len(line)
			}
			buf.WriteString(string(line[pos:contentEnd]))
		}

		padStart := len(line)
		if padStart < pos {
			padStart = pos
		}
		if padStart < end {
			buf.WriteString(strings.Repeat(" ", end-padStart))
		}

		pos = end
	}
	buf.WriteString("\033[0m")
}
