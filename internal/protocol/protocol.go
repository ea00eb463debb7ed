// Package protocol implements the line framing of the bridge protocol.
//
// Commands arrive as space-separated tokens on a single line:
//
//	<Verb> <CorrelationId> [arg1] [arg2] ...
//
// and responses leave the same way:
//
//	<Verb> <CorrelationId> <payload>
//
// The correlation id is an opaque caller-chosen token echoed back verbatim.
// The payload may be empty, which produces a trailing space; several verbs
// use the empty payload as their failure sentinel.
package protocol

import (
	"fmt"
	"strings"
)

// Protocol verbs
const (
	VerbLog               = "Log"
	VerbFileRead          = "FileRead"
	VerbServerSocketBind  = "ServerSocketBind"
	VerbClientSocketRead  = "ClientSocketRead"
	VerbClientSocketWrite = "ClientSocketWrite"
	VerbClientSocketClose = "ClientSocketClose"
	VerbTime              = "Time"
)

// Boolean payload literals
const (
	PayloadTrue  = "true"
	PayloadFalse = "false"
)

// verbArity is the fixed argument count per verb, excluding the verb and
// correlation id tokens.
var verbArity = map[string]int{
	VerbLog:               1,
	VerbFileRead:          1,
	VerbServerSocketBind:  1,
	VerbClientSocketRead:  1,
	VerbClientSocketWrite: 2,
	VerbClientSocketClose: 1,
	VerbTime:              0,
}

// FramingError reports a malformed or unrecognized command line. Framing
// errors are fatal by contract: the protocol assumes a well-behaved caller,
// so malformed control traffic terminates the whole process instead of
// producing a failure response.
type FramingError struct {
	Line   string
	Reason string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("framing error: %s in line %q", e.Reason, e.Line)
}

// Command is one parsed input line, consumed by exactly one handler
// invocation.
type Command struct {
	Verb          string
	CorrelationID string
	Args          []string
}

// Parse splits a raw line on single spaces and validates its shape. Any
// returned error is a *FramingError and must not be swallowed: catching it
// would keep the process alive where the protocol demands death.
func Parse(line string) (Command, error) {
	tokens := strings.Split(line, " ")
	if len(tokens) < 2 {
		return Command{}, &FramingError{Line: line, Reason: "fewer than two tokens"}
	}

	verb := tokens[0]
	arity, known := verbArity[verb]
	if !known {
		return Command{}, &FramingError{Line: line, Reason: fmt.Sprintf("unknown verb %q", verb)}
	}

	args := tokens[2:]
	if len(args) != arity {
		return Command{}, &FramingError{
			Line:   line,
			Reason: fmt.Sprintf("verb %s takes %d argument(s), got %d", verb, arity, len(args)),
		}
	}

	return Command{
		Verb:          verb,
		CorrelationID: tokens[1],
		Args:          args,
	}, nil
}

// FormatResponse renders one response line without the trailing newline.
func FormatResponse(verb, correlationID, payload string) string {
	return verb + " " + correlationID + " " + payload
}
