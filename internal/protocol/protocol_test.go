package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestParseValidCommands(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{
			name: "time has no args",
			line: "Time 42",
			want: Command{Verb: VerbTime, CorrelationID: "42", Args: []string{}},
		},
		{
			name: "log single arg",
			line: "Log abc aGVsbG8=",
			want: Command{Verb: VerbLog, CorrelationID: "abc", Args: []string{"aGVsbG8="}},
		},
		{
			name: "write two args",
			line: "ClientSocketWrite req-7 3 cGF5bG9hZA==",
			want: Command{Verb: VerbClientSocketWrite, CorrelationID: "req-7", Args: []string{"3", "cGF5bG9hZA=="}},
		},
		{
			name: "correlation id is opaque",
			line: "ClientSocketClose !!%%## 9",
			want: Command{Verb: VerbClientSocketClose, CorrelationID: "!!%%##", Args: []string{"9"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.line, err)
			}
			if got.Verb != tt.want.Verb || got.CorrelationID != tt.want.CorrelationID {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
			if len(got.Args) != len(tt.want.Args) {
				t.Fatalf("Parse(%q) args = %v, want %v", tt.line, got.Args, tt.want.Args)
			}
			for i := range got.Args {
				if got.Args[i] != tt.want.Args[i] {
					t.Errorf("Parse(%q) arg[%d] = %q, want %q", tt.line, i, got.Args[i], tt.want.Args[i])
				}
			}
		})
	}
}

func TestParseFramingErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty line", ""},
		{"single token", "Time"},
		{"unknown verb", "Shutdown 1"},
		{"log missing arg", "Log 1"},
		{"time with extra arg", "Time 1 extra"},
		{"write missing payload", "ClientSocketWrite 1 3"},
		{"lowercase verb", "time 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want framing error", tt.line)
			}
			var fe *FramingError
			if !errors.As(err, &fe) {
				t.Errorf("Parse(%q) error is %T, want *FramingError", tt.line, err)
			}
		})
	}
}

func TestParseDoesNotCollapseDelimiters(t *testing.T) {
	// A double space yields an empty token; the delimiter is a single
	// space, not a run of whitespace.
	cmd, err := Parse("Log  aGVsbG8=")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cmd.CorrelationID != "" {
		t.Errorf("correlation id = %q, want empty token", cmd.CorrelationID)
	}
}

func TestFormatResponseEmptyPayloadKeepsTrailingSpace(t *testing.T) {
	line := FormatResponse(VerbFileRead, "9", "")
	if !strings.HasSuffix(line, " ") {
		t.Errorf("empty payload must produce a trailing space, got %q", line)
	}
	if line != "FileRead 9 " {
		t.Errorf("FormatResponse = %q, want %q", line, "FileRead 9 ")
	}
}
