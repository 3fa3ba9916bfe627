// Package errors implements Alan's compiler diagnostics: a flat
// file:line: severity: message (Kind) format, a taxonomy of named error/warning
// kinds, and a Sink that collects them while letting analysis
// continue, plus a distinct panic-based path for internal() invariant
// violations.
//
// Trimmed to the fields a batch compiler actually needs: no column (the
// front end that would supply one is out of scope), no call stack (there is
// no VM to unwind).
package errors

import "fmt"

// Kind names one entry of the error taxonomy. NonVoidMissingReturn is the
// one kind reported as a warning (Diagnostic.Warning set).
type Kind string

const (
	UnknownIdentifier       Kind = "UnknownIdentifier"
	DuplicateIdentifier     Kind = "DuplicateIdentifier"
	NotAFunction            Kind = "NotAFunction"
	TypeMismatch            Kind = "TypeMismatch"
	OperatorOperandType     Kind = "OperatorOperandType"
	ConditionNotBoolean     Kind = "ConditionNotBoolean"
	IndexedNonArray         Kind = "IndexedNonArray"
	IllegalArraySize        Kind = "IllegalArraySize"
	ArrayInAssignmentLvalue Kind = "ArrayInAssignmentLvalue"
	ArrayByValue            Kind = "ArrayByValue"
	TooFewArgs              Kind = "TooFewArgs"
	TooManyArgs             Kind = "TooManyArgs"
	ArgTypeMismatch         Kind = "ArgTypeMismatch"
	ArgElementTypeMismatch  Kind = "ArgElementTypeMismatch"
	ReferenceActualNotLvalue Kind = "ReferenceActualNotLvalue"
	ReturnValueTypeMismatch Kind = "ReturnValueTypeMismatch"
	VoidFunctionReturnsValue Kind = "VoidFunctionReturnsValue"
	NonVoidMissingReturn    Kind = "NonVoidMissingReturn" // warning, not an error
	Redeclaration           Kind = "Redeclaration"
)

// Diagnostic is one reported error or warning.
type Diagnostic struct {
	Kind    Kind
	Message string
	File    string
	Line    int
	Warning bool
}

func (d Diagnostic) String() string {
	prefix := "error"
	if d.Warning {
		prefix = "warning"
	}
	return fmt.Sprintf("%s:%d: %s: %s (%s)", d.File, d.Line, prefix, d.Message, d.Kind)
}

// Sink collects diagnostics for one compilation and tracks the error count
// that gates IR emission: if the count is non-zero, the driver must not
// proceed to IR emission.
type Sink struct {
	File        string
	Diagnostics []Diagnostic
	errCount    int
}

// NewSink returns a Sink that stamps file onto every diagnostic it collects.
func NewSink(file string) *Sink {
	return &Sink{File: file}
}

// Report records an error-level diagnostic and increments the error count.
func (s *Sink) Report(kind Kind, line int, format string, args ...any) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{
		Kind: kind, Message: fmt.Sprintf(format, args...), File: s.File, Line: line,
	})
	s.errCount++
}

// Warn records a warning-level diagnostic without affecting the error count.
func (s *Sink) Warn(kind Kind, line int, format string, args ...any) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{
		Kind: kind, Message: fmt.Sprintf(format, args...), File: s.File, Line: line, Warning: true,
	})
}

// Failed reports whether any error-level diagnostic was reported.
func (s *Sink) Failed() bool { return s.errCount > 0 }

// Count returns the number of error-level diagnostics reported so far.
func (s *Sink) Count() int { return s.errCount }

// InternalError is raised for internal(...) conditions: a violated
// compiler invariant, not a user-facing diagnostic. Callers at the top of
// the pipeline (cmd/alanc) should recover it and exit non-zero rather than
// let it unwind as a generic panic.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return "internal: " + e.Message }

// Internal panics with an *InternalError for a violated compiler invariant
// that has no well-formed diagnostic of its own.
func Internal(format string, args ...any) {
	panic(&InternalError{Message: fmt.Sprintf(format, args...)})
}
