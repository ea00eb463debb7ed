package protocol

import (
	"fmt"
	"io"
	"sync"

	"github.com/codefionn/capbridge/internal/logger"
)

// Diagnostic-stream direction prefixes
const (
	DiagInboundPrefix  = "<- "
	DiagOutboundPrefix = "-> "
)

// Writer serializes response lines onto the control output stream.
//
// Accept loops, read loops and one-shot handlers all emit responses
// concurrently; the mutex plus single-Write-per-line discipline guarantees
// that bytes of different lines never interleave. Ordering across loops is
// deliberately unspecified.
type Writer struct {
	mu    sync.Mutex
	out   io.Writer
	diag  io.Writer // nil unless diagnostic mode is on
	err   error     // first write failure, sticky
	count int64
}

// NewWriter creates a response writer over the control output stream.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// SetDiagnostic enables echoing of outbound lines to a separate stream.
// Diagnostics never touch the control output and never alter semantics.
func (w *Writer) SetDiagnostic(diag io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.diag = diag
}

// WriteResponse emits exactly one response line. After the first failure
// the writer goes dead: the bridge is useless without its output stream,
// so callers treat the error as terminal for their loop.
func (w *Writer) WriteResponse(verb, correlationID, payload string) error {
	line := FormatResponse(verb, correlationID, payload)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	if _, err := io.WriteString(w.out, line+"\n"); err != nil {
		w.err = fmt.Errorf("control output write failed: %w", err)
		logger.Error("Dropping responses: %v", w.err)
		return w.err
	}

	w.count++

	if w.diag != nil {
		// Best effort; a broken diagnostic stream must not kill responses.
		fmt.Fprintln(w.diag, DiagOutboundPrefix+line)
	}

	return nil
}

// Count returns the number of response lines successfully written.
func (w *Writer) Count() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Err returns the first write failure, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
