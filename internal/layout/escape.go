package layout

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
)

// ColorToX11 converts a termenv.Color to the X11 "rgb:" format used in OSC
// 10/11 color query responses.
func ColorToX11(c termenv.Color) string {
	switch v := c.(type) {
	case termenv.RGBColor:
		hex := string(v)
		if len(hex) == 7 && hex[0] == '#' {
			r, _ := strconv.ParseUint(hex[1:3], 16, 8)
			g, _ := strconv.ParseUint(hex[3:5], 16, 8)
			b, _ := strconv.ParseUint(hex[5:7], 16, 8)
			return fmt.Sprintf("rgb:%04x/%04x/%04x", r*0x101, g*0x101, b*0x101)
		}
	}
	return ""
}

// IsEscSequenceComplete reports whether seq (starting with ESC) forms a
// complete escape sequence.
func IsEscSequenceComplete(seq []byte) bool {
	if len(seq) < 2 {
		return false
	}
	switch seq[1] {
	case '[':
		if len(seq) < 3 {
			return false
		}
		final := seq[len(seq)-1]
		return final >= 0x40 && final <= 0x7e
	case 'O':
		return len(seq) >= 3
	default:
		return true
	}
}

// IsShiftEnterSequence reports whether seq represents Shift+Enter, in
// either kitty (ESC[13;2u) or xterm modifyOtherKeys (ESC[27;2;13~) form.
func IsShiftEnterSequence(seq []byte) bool {
	if len(seq) < 3 || seq[1] != '[' {
		return false
	}
	final := seq[len(seq)-1]
	params := string(seq[2 : len(seq)-1])
	switch final {
	case '~':
		return params == "27;2;13" || params == "13;2"
	case 'u':
		return params == "13;2"
	default:
		return false
	}
}

// IsCtrlEnterSequence reports whether seq represents Ctrl+Enter. Matches
// kitty format (ESC[13;5u) and xterm format (ESC[27;5;13~).
func IsCtrlEnterSequence(seq []byte) bool {
	if len(seq) < 3 || seq[1] != '[' {
		return false
	}
	final := seq[len(seq)-1]
	params := string(seq[2 : len(seq)-1])
	switch final {
	case 'u':
		return params == "13;5"
	case '~':
		return params == "27;5;13"
	default:
		return false
	}
}

// IsCtrlEscapeSequence reports whether seq represents Ctrl+Escape. Matches
// kitty format (ESC[27;5u) and xterm format (ESC[27;5;27~).
func IsCtrlEscapeSequence(seq []byte) bool {
	if len(seq) < 3 || seq[1] != '[' {
		return false
	}
	final := seq[len(seq)-1]
	params := string(seq[2 : len(seq)-1])
	switch final {
	case 'u':
		return params == "27;5"
	case '~':
		return params == "27;5;27"
	default:
		return false
	}
}

// IsTruthyEnv reports whether the named environment variable is set to a
// truthy value (case-insensitive, trimmed): 1, true, yes, y, on.
func IsTruthyEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// FormatDebugKey formats a single byte for the debug-keys bar.
func FormatDebugKey(b byte) string {
	switch b {
	case 0x1b:
		return "esc"
	case 0x0d:
		return "cr"
	case 0x0a:
		return "lf"
	case 0x09:
		return "tab"
	case 0x7f:
		return "del"
	}
	if b < 0x20 {
		return fmt.Sprintf("0x%02x", b)
	}
	if b >= 0x20 && b <= 0x7e {
		return string([]byte{b})
	}
	return fmt.Sprintf("0x%02x", b)
}

// FormatIdleDuration formats a duration into a compact human-readable
// string: "3s", "5m", "2h", "1d".
func FormatIdleDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("%ds", secs)
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// StripANSI removes ANSI CSI and OSC escape sequences from b, returning the
// plain-text bytes. Used by the prompt-occlusion detector, which matches
// against ANSI-stripped content so styled approval cards are still
// recognized.
func StripANSI(b []byte) []byte {
	out := make([]byte, 0, len(b))
	i := 0
	for i < len(b) {
		if b[i] != 0x1b || i+1 >= len(b) {
			out = append(out, b[i])
			i++
			continue
		}
		switch b[i+1] {
		case '[':
			j := i + 2
			for j < len(b) && !(b[j] >= 0x40 && b[j] <= 0x7e) {
				j++
			}
			if j < len(b) {
				j++
			}
			i = j
		case ']':
			// OSC: terminated by BEL or ST (ESC \).
			j := i + 2
			for j < len(b) {
				if b[j] == 0x07 {
					j++
					break
				}
				if b[j] == 0x1b && j+1 < len(b) && b[j+1] == '\\' {
					j += 2
					break
				}
				j++
			}
			i = j
		default:
			// Two-byte escape (ESC + one byte).
			i += 2
		}
	}
	return out
}
