package engine

import (
	"fmt"
	"strings"
)

// RunnerError wraps failures from invoking the analysis engine process.
//
// It intentionally includes a tail of the engine's stderr to aid diagnostics
// without streaming engine stderr into structured outputs.
type RunnerError struct {
	Op       string
	Err      error
	ExitCode *int
	Stderr   string
}

func (e *RunnerError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("unknown error")
	}
	if e.ExitCode != nil {
		fmt.Fprintf(&b, " (exit=%d)", *e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString("; engine stderr (tail): ")
		b.WriteString(s)
	}
	return b.String()
}

func (e *RunnerError) Unwrap() error { return e.Err }
