// Package bridge implements the command server at the heart of capbridge:
// it reads newline-delimited commands from the control input, dispatches
// each one to its handler without waiting for completion, and writes
// correlated response lines to the control output.
//
// Two error tiers apply throughout. Recoverable failures (bad resource id,
// OS call failures, bad port syntax) become the verb's documented failure
// payload and never crash the process. Framing errors (malformed line,
// unknown verb, wrong arity) propagate out of Run and terminate the whole
// process; callers must not catch them.
package bridge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/codefionn/capbridge/internal/consts"
	"github.com/codefionn/capbridge/internal/logger"
	"github.com/codefionn/capbridge/internal/protocol"
	"github.com/codefionn/capbridge/internal/registry"
	"github.com/codefionn/capbridge/internal/sandbox"
)

// Server drives the control streams for one client.
type Server struct {
	in  io.Reader
	out *protocol.Writer
	reg *registry.Registry

	sandbox *sandbox.Sandbox
	msgLog  *logger.Logger
	diag    io.Writer // inbound echo stream, nil unless diagnostic mode

	linesRead atomic.Int64
	oneShots  sync.WaitGroup
}

// New creates a server over the given control streams. The zero
// configuration serves unconfined file reads and logs through the global
// logger, matching the protocol's historical behavior.
func New(in io.Reader, out io.Writer) *Server {
	sb, _ := sandbox.New(false, nil, false)
	return &Server{
		in:      in,
		out:     protocol.NewWriter(out),
		reg:     registry.New(),
		sandbox: sb,
		msgLog:  logger.Global(),
	}
}

// SetSandbox installs filesystem confinement for the FileRead verb.
func (s *Server) SetSandbox(sb *sandbox.Sandbox) {
	if sb != nil {
		s.sandbox = sb
	}
}

// SetMessageLogger routes Log verb payloads to the given logger.
func (s *Server) SetMessageLogger(l *logger.Logger) {
	if l != nil {
		s.msgLog = l
	}
}

// SetDiagnostic echoes all inbound and outbound protocol lines to the
// given stream, prefixed by direction. Semantics are unchanged and the
// control output never sees any of it.
func (s *Server) SetDiagnostic(diag io.Writer) {
	s.diag = diag
	s.out.SetDiagnostic(diag)
}

// Registry exposes the resource table, mainly for tests.
func (s *Server) Registry() *registry.Registry {
	return s.reg
}

// Run reads command lines until end-of-stream, which is the single
// graceful-shutdown signal: it waits for every pending single-response
// handler, then returns nil, and the process is expected to exit, tearing
// down any accept and read loops still running. Any non-nil error is fatal
// by contract.
func (s *Server) Run() error {
	reader := bufio.NewReaderSize(s.in, consts.LineReaderBufferSize)

	for {
		line, err := reader.ReadString('\n')
		line = trimLineEnding(line)

		if err != nil {
			if errors.Is(err, io.EOF) {
				// A final unterminated line still counts as a command.
				if line != "" {
					if dispatchErr := s.dispatchLine(line); dispatchErr != nil {
						return dispatchErr
					}
				}
				// Every well-formed one-shot command owes exactly one
				// response line; exiting before it is written would lose
				// it. Unbounded accept and read loops are not waited for.
				s.oneShots.Wait()
				logger.Info("Control input closed after %d command line(s), %d response(s) written",
					s.linesRead.Load(), s.out.Count())
				return nil
			}
			return fmt.Errorf("control input read failed: %w", err)
		}

		if dispatchErr := s.dispatchLine(line); dispatchErr != nil {
			return dispatchErr
		}
	}
}

// dispatchLine parses one line and fans the command out to its handler.
// The returned error is always a fatal framing error.
func (s *Server) dispatchLine(line string) error {
	if s.diag != nil {
		fmt.Fprintln(s.diag, protocol.DiagInboundPrefix+line)
	}

	cmd, err := protocol.Parse(line)
	if err != nil {
		return err
	}
	s.linesRead.Add(1)

	// Handlers run concurrently with the serve loop; response ordering
	// across in-flight commands is unspecified. Single-response handlers
	// are tracked so shutdown can wait for their one line; bind and read
	// spawn unbounded loops that outlive this call by design.
	switch cmd.Verb {
	case protocol.VerbLog:
		s.spawnOneShot(s.handleLog, cmd)
	case protocol.VerbFileRead:
		s.spawnOneShot(s.handleFileRead, cmd)
	case protocol.VerbServerSocketBind:
		go s.handleServerSocketBind(cmd)
	case protocol.VerbClientSocketRead:
		go s.handleClientSocketRead(cmd)
	case protocol.VerbClientSocketWrite:
		s.spawnOneShot(s.handleClientSocketWrite, cmd)
	case protocol.VerbClientSocketClose:
		s.spawnOneShot(s.handleClientSocketClose, cmd)
	case protocol.VerbTime:
		s.spawnOneShot(s.handleTime, cmd)
	default:
		// Parse only admits known verbs; this is unreachable.
		return &protocol.FramingError{Line: line, Reason: "unroutable verb"}
	}

	return nil
}

// spawnOneShot runs a single-response handler on its own goroutine and
// registers it with the shutdown wait group.
func (s *Server) spawnOneShot(handler func(protocol.Command), cmd protocol.Command) {
	s.oneShots.Add(1)
	go func() {
		defer s.oneShots.Done()
		handler(cmd)
	}()
}

// respond emits one response line for the command. The error matters only
// to unbounded loops, which stop producing once the output is dead.
func (s *Server) respond(cmd protocol.Command, payload string) error {
	return s.out.WriteResponse(cmd.Verb, cmd.CorrelationID, payload)
}

// trimLineEnding strips the newline terminator and an optional preceding
// carriage return. Interior whitespace is preserved; the field delimiter
// is a single space, never a run.
func trimLineEnding(line string) string {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}
