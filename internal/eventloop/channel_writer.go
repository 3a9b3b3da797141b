package eventloop

import "github.com/voiceterm/voiceterm/internal/writer"

// ChannelWriter adapts a chan writer.Message to the WriterHandle
// capability trait. Its channel should be capacity 4 per §5: enough for a
// couple of HUD redraws plus an overlay frame without blocking the loop.
type ChannelWriter struct {
	ch chan writer.Message
}

// NewChannelWriter wraps ch.
func NewChannelWriter(ch chan writer.Message) *ChannelWriter {
	return &ChannelWriter{ch: ch}
}

// Send implements WriterHandle for low-volume messages that must be
// delivered: it blocks if the channel is full.
func (c *ChannelWriter) Send(msg writer.Message) {
	c.ch <- msg
}

// TrySend implements WriterHandle's non-blocking path: it reports whether
// msg was accepted without waiting for room in the channel.
func (c *ChannelWriter) TrySend(msg writer.Message) bool {
	select {
	case c.ch <- msg:
		return true
	default:
		return false
	}
}
