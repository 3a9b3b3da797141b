// Package inputparser turns raw stdin bytes into typed input events. It
// never touches terminal or child-process state directly — it is a pure
// byte-stream decoder the event loop consumes, so the same parser serves
// every HUD mode and input source (attach clients included).
package inputparser

import (
	"strconv"
	"strings"
	"time"

	"github.com/voiceterm/voiceterm/internal/layout"
)

// EventKind classifies a decoded input event.
type EventKind int

const (
	// EventByte is a single plain byte (printable or raw control) to be
	// handled by mode-specific dispatch.
	EventByte EventKind = iota
	// EventEnter is CR or LF.
	EventEnter
	// EventBackspace is DEL or BS.
	EventBackspace
	// EventCtrlA, EventCtrlE, EventCtrlK, EventCtrlU are line-editing shortcuts.
	EventCtrlA
	EventCtrlE
	EventCtrlK
	EventCtrlU
	// EventTab is the Tab key (0x09).
	EventTab
	// EventMenuToggle is Ctrl+\, the universal menu fallback.
	EventMenuToggle
	// EventCtrlEnter opens the menu (kitty/xterm modifyOtherKeys encodings).
	EventCtrlEnter
	// EventShiftEnter inserts a literal newline in passthrough mode.
	EventShiftEnter
	// EventCtrlEscape exits passthrough mode without forwarding Escape.
	EventCtrlEscape
	// EventBareEscape is Escape with no recognized follow-on sequence.
	EventBareEscape
	// EventArrowUp, EventArrowDown, EventArrowLeft, EventArrowRight are cursor keys.
	EventArrowUp
	EventArrowDown
	EventArrowLeft
	EventArrowRight
	// EventWordForward, EventWordBackward are Meta+f / Meta+b.
	EventWordForward
	EventWordBackward
	// EventMouse is a decoded SGR mouse report.
	EventMouse
	// EventPassthroughEscSeq is a complete escape sequence to forward verbatim
	// while in passthrough mode (anything not otherwise classified).
	EventPassthroughEscSeq
)

// Event is one decoded input unit. Only the fields relevant to Kind are set.
type Event struct {
	Kind   EventKind
	Byte   byte   // EventByte, EventBackspace inputs below 0x20
	Raw    []byte // EventPassthroughEscSeq, EventMouse's source bytes
	Button int    // EventMouse
	Press  bool   // EventMouse
	X, Y   int    // EventMouse, 1-based column/row per the SGR report
}

// Parser decodes a byte stream into Events, carrying over partial escape
// sequences between calls (input arrives in arbitrarily small reads).
type Parser struct {
	pendingEsc    bool
	pendingSince  time.Time
	passthroughEsc []byte
}

// New returns a parser with no carried state.
func New() *Parser {
	return &Parser{}
}

// PendingEscDeadline returns when a bare-Escape decision should be forced,
// given the hold duration the caller wants (50ms is a reasonable default:
// long enough for a multi-byte escape sequence to arrive in one read, short
// enough that a standalone Escape keypress doesn't feel delayed).
func (p *Parser) PendingEscDeadline(hold time.Duration) time.Time {
	return p.pendingSince.Add(hold)
}

// HasPendingEsc reports whether an Escape byte is awaiting its follow-on
// byte (or the caller's timeout).
func (p *Parser) HasPendingEsc() bool {
	return p.pendingEsc
}

// ResolvePendingEsc is called by the event loop when the pending-Escape
// timer fires with no follow-on byte observed: it is a bare Escape.
func (p *Parser) ResolvePendingEsc() Event {
	p.pendingEsc = false
	p.passthroughEsc = p.passthroughEsc[:0]
	return Event{Kind: EventBareEscape}
}

// Feed decodes as many complete events as buf contains, returning them in
// order. Any trailing partial escape sequence is retained for the next call.
func (p *Parser) Feed(buf []byte) []Event {
	var events []Event
	i := 0
	n := len(buf)

	for i < n {
		if p.pendingEsc {
			b := buf[i]
			if b != '[' && b != 'O' {
				p.pendingEsc = false
				events = append(events, Event{Kind: EventBareEscape})
				continue
			}
			p.pendingEsc = false
			p.passthroughEsc = append(p.passthroughEsc[:0], 0x1B, b)
			i++
			consumed, ev, complete := p.tryFlushEscSeq(buf[i:n])
			i += consumed
			if complete {
				events = append(events, ev)
			}
			continue
		}

		if len(p.passthroughEsc) > 0 {
			consumed, ev, complete := p.tryFlushEscSeq(buf[i:n])
			i += consumed
			if complete {
				events = append(events, ev)
			}
			continue
		}

		b := buf[i]
		i++

		if b == 0x1B {
			if i >= n {
				p.pendingEsc = true
				p.pendingSince = time.Now()
				continue
			}
			consumed, ev, handled := p.handleEscape(buf[i:n])
			i += consumed
			if handled {
				events = append(events, ev)
			}
			continue
		}

		switch b {
		case '\r', '\n':
			events = append(events, Event{Kind: EventEnter})
		case 0x7F, 0x08:
			events = append(events, Event{Kind: EventBackspace, Byte: b})
		case 0x01:
			events = append(events, Event{Kind: EventCtrlA})
		case 0x05:
			events = append(events, Event{Kind: EventCtrlE})
		case 0x0B:
			events = append(events, Event{Kind: EventCtrlK})
		case 0x15:
			events = append(events, Event{Kind: EventCtrlU})
		case 0x09:
			events = append(events, Event{Kind: EventTab})
		case 0x1C:
			events = append(events, Event{Kind: EventMenuToggle})
		default:
			events = append(events, Event{Kind: EventByte, Byte: b})
		}
	}

	return events
}

func (p *Parser) tryFlushEscSeq(rest []byte) (consumed int, ev Event, complete bool) {
	idx := 0
	for idx < len(rest) {
		p.passthroughEsc = append(p.passthroughEsc, rest[idx])
		idx++
		if layout.IsEscSequenceComplete(p.passthroughEsc) {
			seq := append([]byte(nil), p.passthroughEsc...)
			p.passthroughEsc = p.passthroughEsc[:0]
			if layout.IsCtrlEscapeSequence(seq) {
				return idx, Event{Kind: EventCtrlEscape, Raw: seq}, true
			}
			if layout.IsShiftEnterSequence(seq) {
				return idx, Event{Kind: EventShiftEnter, Raw: seq}, true
			}
			return idx, Event{Kind: EventPassthroughEscSeq, Raw: seq}, true
		}
	}
	return idx, Event{}, false
}

// handleEscape decodes the byte(s) following an ESC that was not part of a
// carried-over passthrough sequence (i.e. normal/menu/scroll-mode dispatch).
func (p *Parser) handleEscape(remaining []byte) (consumed int, ev Event, handled bool) {
	if len(remaining) == 0 {
		return 0, Event{}, false
	}
	switch remaining[0] {
	case '[':
		return p.handleCSI(remaining[1:])
	case 'O':
		if len(remaining) >= 2 {
			return 2, Event{Kind: EventPassthroughEscSeq, Raw: append([]byte{0x1B, 'O'}, remaining[1])}, true
		}
		return 1, Event{}, false
	case 'f':
		return 1, Event{Kind: EventWordForward}, true
	case 'b':
		return 1, Event{Kind: EventWordBackward}, true
	}
	return 0, Event{}, false
}

func (p *Parser) handleCSI(remaining []byte) (consumed int, ev Event, handled bool) {
	if len(remaining) == 0 {
		return 1, Event{}, false
	}

	i := 0
	for i < len(remaining) && remaining[i] >= 0x30 && remaining[i] <= 0x3F {
		i++
	}
	for i < len(remaining) && remaining[i] >= 0x20 && remaining[i] <= 0x2F {
		i++
	}
	if i >= len(remaining) {
		return 1 + i, Event{}, false
	}

	final := remaining[i]
	total := 1 + i + 1
	params := string(remaining[:i])
	raw := append([]byte{0x1B, '['}, remaining[:i+1]...)

	switch final {
	case 'A':
		return total, Event{Kind: EventArrowUp, Raw: raw}, true
	case 'B':
		return total, Event{Kind: EventArrowDown, Raw: raw}, true
	case 'C':
		return total, Event{Kind: EventArrowRight, Raw: raw}, true
	case 'D':
		return total, Event{Kind: EventArrowLeft, Raw: raw}, true
	case 'u':
		if params == "13;5" {
			return total, Event{Kind: EventCtrlEnter, Raw: raw}, true
		}
		return total, Event{Kind: EventPassthroughEscSeq, Raw: raw}, true
	case '~':
		if params == "27;5;13" {
			return total, Event{Kind: EventCtrlEnter, Raw: raw}, true
		}
		return total, Event{Kind: EventPassthroughEscSeq, Raw: raw}, true
	case 'M', 'm':
		button, x, y, press, ok := decodeSGRMouse(remaining[:i], final == 'M')
		if !ok {
			return total, Event{Kind: EventPassthroughEscSeq, Raw: raw}, true
		}
		return total, Event{Kind: EventMouse, Button: button, Press: press, X: x, Y: y, Raw: raw}, true
	}
	return total, Event{Kind: EventPassthroughEscSeq, Raw: raw}, true
}

// decodeSGRMouse parses the "<Cb;Cx;Cy" portion (without the trailing M/m)
// of an SGR mouse report. Cx/Cy are 1-based terminal columns/rows.
func decodeSGRMouse(params []byte, press bool) (button, x, y int, isPress bool, ok bool) {
	s := string(params)
	if !strings.HasPrefix(s, "<") {
		return 0, 0, 0, false, false
	}
	parts := strings.Split(s[1:], ";")
	if len(parts) < 3 {
		return 0, 0, 0, false, false
	}
	b, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, false, false
	}
	cx, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, false, false
	}
	cy, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, false, false
	}
	return b, cx, cy, press, true
}
