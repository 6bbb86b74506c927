// Package inbound defines the ports through which transports drive the
// kernel.
package inbound

import "context"

// Kernel is the single entry point transports call. Input is one raw
// envelope; output is exactly one canonical-JSON envelope (result or error)
// with no trailing newline. Implementations are safe for concurrent use.
type Kernel interface {
	ProcessRequest(ctx context.Context, input []byte) []byte
}
