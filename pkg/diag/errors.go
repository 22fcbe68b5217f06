package diag

import "fmt"

// Error is implemented by every stage error.
type Error interface {
	error
	Kind() string // "Syntax" or "Simulation"
	Line() int
}

// SyntaxError is raised by the parser on any unmet expectation. It aborts
// the run immediately; no recovery is attempted.
type SyntaxError struct {
	LineNo   int
	Expected string
	Got      string // kind of the offending token
	GotText  string
	Snippet  string // trimmed source line, for context
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("line %d: expected %s, got %s (%q)", e.LineNo, e.Expected, e.Got, e.GotText)
	if e.Snippet != "" {
		msg += fmt.Sprintf("\n  |> %s", e.Snippet)
	}
	return msg
}

func (e *SyntaxError) Kind() string { return "Syntax" }
func (e *SyntaxError) Line() int    { return e.LineNo }

// SimulationError is raised inside the trace generator. It never propagates
// past trace.Generate: it is converted to a terminal error step and a Log
// entry instead.
type SimulationError struct {
	LineNo int
	Msg    string
	Cause  error
}

func (e *SimulationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("line %d: %s: %v", e.LineNo, e.Msg, e.Cause)
	}
	return fmt.Sprintf("line %d: %s", e.LineNo, e.Msg)
}

func (e *SimulationError) Kind() string  { return "Simulation" }
func (e *SimulationError) Line() int     { return e.LineNo }
func (e *SimulationError) Unwrap() error { return e.Cause }
