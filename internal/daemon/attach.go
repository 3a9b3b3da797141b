package daemon

import (
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/voiceterm/voiceterm/internal/inputparser"
)

// handleAttach serves one attach client to completion, redirecting the
// session's output to it and feeding its input frames into the session's
// event loop. Only one client may be attached at a time (v1): a second
// connection attempt is rejected outright rather than queued.
func (d *Daemon) handleAttach(conn net.Conn) {
	if d.attachConn != nil {
		WriteFrame(conn, FrameData, []byte("another client is already attached\n"))
		conn.Close()
		return
	}
	d.attachConn = conn
	defer func() {
		d.attachConn = nil
		conn.Close()
	}()

	d.out.SetTarget(frameWriter{conn})
	defer d.out.SetTarget(io.Discard)

	parser := inputparser.New()
	for {
		ft, payload, err := ReadFrame(conn)
		if err != nil {
			return
		}
		switch ft {
		case FrameData:
			for _, ev := range parser.Feed(payload) {
				select {
				case d.Session.InputChan() <- ev:
				default:
					// Event loop's input channel is momentarily full; drop
					// rather than block the attach reader indefinitely.
				}
			}
		case FrameResize:
			rows, cols, ok := parseResizePayload(payload)
			if ok {
				d.Session.PTY.Resize(rows, cols)
			}
		}
	}
}

// frameWriter adapts a net.Conn into an io.Writer that frames every write
// as a FrameData attach frame.
type frameWriter struct {
	conn net.Conn
}

func (fw frameWriter) Write(p []byte) (int, error) {
	if err := WriteFrame(fw.conn, FrameData, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func parseResizePayload(payload []byte) (rows, cols int, ok bool) {
	parts := strings.SplitN(string(payload), ";", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	r, err1 := strconv.Atoi(parts[0])
	c, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return r, c, true
}
