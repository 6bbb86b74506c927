// Package stdio connects the kernel to its IPC channel: envelopes in on
// stdin, exactly one canonical envelope out on stdout.
package stdio

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/cabinet-platform/kernel/internal/domain/ipc"
	"github.com/cabinet-platform/kernel/internal/port/inbound"
)

// Transport drives the kernel from a reader/writer pair. Production wiring
// uses os.Stdin/os.Stdout; tests inject buffers.
type Transport struct {
	kernel inbound.Kernel
	in     io.Reader
	out    io.Writer
}

// NewTransport builds a transport around the kernel entry point.
func NewTransport(kernel inbound.Kernel, in io.Reader, out io.Writer) *Transport {
	return &Transport{kernel: kernel, in: in, out: out}
}

// ProcessOne reads the whole input as a single message, runs it through the
// kernel, and writes the response with no trailing newline.
func (t *Transport) ProcessOne(ctx context.Context) error {
	input, err := io.ReadAll(io.LimitReader(t.in, ipc.MaxMessageBytes+1))
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	output := t.kernel.ProcessRequest(ctx, input)
	if _, err := t.out.Write(output); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// Serve processes one envelope per input line until EOF or context
// cancellation, writing one response line per request. Responses keep
// request order: the loop is strictly sequential.
func (t *Transport) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 64*1024), ipc.MaxMessageBytes+1)

	writer := bufio.NewWriter(t.out)
	defer writer.Flush()

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		output := t.kernel.ProcessRequest(ctx, line)
		if _, err := writer.Write(output); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("flush response: %w", err)
		}
	}
	return scanner.Err()
}
