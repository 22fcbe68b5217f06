// Package driver orchestrates the three-stage pipeline and owns the step
// cursor consumers poll. A Session holds exactly one result at a time; Run
// replaces it wholesale, never incrementally.
package driver

import (
	"strings"

	"ctrace/pkg/ast"
	"ctrace/pkg/diag"
	"ctrace/pkg/lexer"
	"ctrace/pkg/parser"
	"ctrace/pkg/trace"
)

// Result is one complete pipeline run. On parse failure Tokens is still
// populated so callers can keep highlighting, Program is nil, and Steps
// holds a single explanatory error entry in place of a trace.
type Result struct {
	Source  string                `json:"source"`
	Tokens  []lexer.Token         `json:"tokens"`
	Program *ast.Program          `json:"-"`
	Steps   []trace.ExecutionStep `json:"steps"`
	Diags   []diag.Diagnostic     `json:"diagnostics"`

	// Final simulation state; nil when generation never ran.
	State *trace.State `json:"-"`
}

// Session runs source text through tokenize, parse, and trace generation,
// and tracks the current step index. It is not safe for concurrent use:
// runs must be serialized, and each Run starts from fresh simulation state.
type Session struct {
	result Result
	cursor int
	log    *diag.Log
}

func NewSession() *Session {
	return &Session{log: &diag.Log{}}
}

// Run executes the pipeline on source, replacing any previous result and
// resetting the cursor to the first step. The returned error is the parse
// failure, if any; trace-stage failures are folded into the step list and
// the diagnostic log instead of being returned.
func (s *Session) Run(source string) (*Result, error) {
	s.log = &diag.Log{}
	s.cursor = 0

	tokens := lexer.LexWithDiagnostics(source, func(line int, text string) {
		s.log.Warnf("line %d: dropped unrecognized input %q", line, text)
	})

	prog, err := parser.Parse(tokens, source)
	if err != nil {
		s.log.Errorf("parse failed: %v", err)
		s.result = Result{
			Source: source,
			Tokens: tokens,
			Steps: []trace.ExecutionStep{{
				Kind:        trace.StepError,
				SourceLine:  errorLine(err),
				Description: "Parse failed: " + err.Error(),
			}},
			Diags: s.log.Entries(),
		}
		return &s.result, err
	}

	steps, state := trace.Generate(prog, tokens, source, s.log)
	s.result = Result{
		Source:  source,
		Tokens:  tokens,
		Program: prog,
		Steps:   steps,
		Diags:   s.log.Entries(),
		State:   state,
	}
	return &s.result, nil
}

func errorLine(err error) int {
	if e, ok := err.(diag.Error); ok && e.Line() > 0 {
		return e.Line()
	}
	return 1
}

// Result returns the latest run, or nil before the first Run.
func (s *Session) Result() *Result {
	if s.result.Source == "" && s.result.Steps == nil {
		return nil
	}
	return &s.result
}

// Current returns the step at the cursor. ok is false when there are no
// steps at all.
func (s *Session) Current() (trace.ExecutionStep, bool) {
	if len(s.result.Steps) == 0 {
		return trace.ExecutionStep{}, false
	}
	return s.result.Steps[s.cursor], true
}

// Index returns the cursor position.
func (s *Session) Index() int { return s.cursor }

// Advance moves the cursor forward one step, saturating at the last step.
// It reports whether the cursor actually moved, which is what an
// auto-advance ticker uses as its stop signal.
func (s *Session) Advance() bool {
	if s.cursor+1 >= len(s.result.Steps) {
		return false
	}
	s.cursor++
	return true
}

// Seek positions the cursor, clamping to the valid step range.
func (s *Session) Seek(i int) {
	if i < 0 {
		i = 0
	}
	if max := len(s.result.Steps) - 1; i > max {
		i = max
	}
	if i < 0 {
		i = 0
	}
	s.cursor = i
}

// Reset rewinds the cursor to the first step.
func (s *Session) Reset() { s.cursor = 0 }

// CumulativeOutput folds the output deltas of steps 0..through inclusive,
// the console text a renderer shows at that cursor position.
func (s *Session) CumulativeOutput(through int) string {
	var b strings.Builder
	for i, step := range s.result.Steps {
		if i > through {
			break
		}
		b.WriteString(step.Delta.Output)
	}
	return b.String()
}
