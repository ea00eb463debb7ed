package consts

import "time"

// Buffer sizes for protocol I/O
const (
	// SocketReadBufferSize is the receive buffer used by the socket read
	// loop. A read that fills the whole buffer is treated as a failure by
	// the protocol, so this value is part of the wire contract.
	SocketReadBufferSize = 1024
	// LineReaderBufferSize is the initial buffer for the control-stream
	// line reader
	LineReaderBufferSize = 64 * 1024
)

// Network limits
const (
	// ListenBacklog is the nominal accept backlog for bound listeners.
	// Go's net.Listen delegates the actual backlog to the kernel; the
	// constant documents the protocol's intent.
	ListenBacklog = 5
)

// Timeouts for various operations
const (
	// Timeout5Seconds is a 5 second timeout
	Timeout5Seconds = 5 * time.Second
)
