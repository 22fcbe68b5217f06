// Package diag carries the error kinds raised by the pipeline stages and the
// append-only diagnostic list the pipeline exposes to its environment.
package diag

import (
	"fmt"
	"time"
)

// Severity orders diagnostics for display.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{
	SeverityInfo:    "info",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

func (s Severity) String() string {
	if int(s) >= 0 && int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is one entry in a run's error/warning list.
type Diagnostic struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

// Log accumulates diagnostics for a single pipeline run. It is written by
// one run at a time; each new run starts with a fresh Log.
type Log struct {
	entries []Diagnostic
}

func (l *Log) append(sev Severity, format string, args ...any) {
	l.entries = append(l.entries, Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Time:     time.Now(),
	})
}

func (l *Log) Infof(format string, args ...any)  { l.append(SeverityInfo, format, args...) }
func (l *Log) Warnf(format string, args ...any)  { l.append(SeverityWarning, format, args...) }
func (l *Log) Errorf(format string, args ...any) { l.append(SeverityError, format, args...) }

// Entries returns a copy of the accumulated diagnostics.
func (l *Log) Entries() []Diagnostic {
	out := make([]Diagnostic, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) HasErrors() bool {
	for _, d := range l.entries {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
