package daemon

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FrameType tags an attach-protocol frame.
type FrameType byte

const (
	// FrameData carries raw terminal bytes in either direction: child
	// output to the attach client, or typed input from it.
	FrameData FrameType = iota
	// FrameResize carries a client's terminal size as "rows;cols" ASCII.
	FrameResize
)

// maxFrameLen guards against a corrupt length prefix trying to allocate an
// unreasonable buffer.
const maxFrameLen = 1 << 20

// WriteFrame writes one length-prefixed frame: 1 type byte, 4-byte
// big-endian length, then payload.
func WriteFrame(w io.Writer, t FrameType, payload []byte) error {
	header := make([]byte, 5)
	header[0] = byte(t)
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one frame written by WriteFrame.
func ReadFrame(r io.Reader) (FrameType, []byte, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}
	n := binary.BigEndian.Uint32(header[1:])
	if n > maxFrameLen {
		return 0, nil, fmt.Errorf("daemon: frame too large (%d bytes)", n)
	}
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, err
		}
	}
	return FrameType(header[0]), payload, nil
}
