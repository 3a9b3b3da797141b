package eventloop

import "errors"

// Sentinel errors distinguishing fatal conditions from retryable ones,
// tested with errors.Is throughout the loop and its callers.
var (
	ErrBrokenPipe         = errors.New("eventloop: broken pipe")
	ErrWriterDisconnected = errors.New("eventloop: writer disconnected")
	ErrPTYSpawnFailed     = errors.New("eventloop: pty spawn failed")
)
