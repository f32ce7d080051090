// Package diag implements the diagnostic surface shared by the lexer,
// parser, and semantic analyzer: a severity-tagged, source-span-carrying
// message, accumulated in declaration order rather than raised as an error.
package diag

import (
	"fmt"
	"strings"

	"github.com/kevinawalsh/alloysat/internal/srcpos"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is one accumulated message: a stable Code for programmatic
// matching, a human-readable Message, the Span it concerns, and a Severity.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Span     srcpos.Span
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s [%s] (%s)", d.Severity, d.Message, d.Code, d.Span)
}

// Bag accumulates diagnostics in declaration order. It never aborts
// processing on its own; callers decide whether to stop based on
// HasErrors.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Errorf appends an Error-severity diagnostic with a formatted message.
func (b *Bag) Errorf(span srcpos.Span, code, format string, args ...any) {
	b.Add(Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Warnf appends a Warning-severity diagnostic with a formatted message.
func (b *Bag) Warnf(span srcpos.Span, code, format string, args ...any) {
	b.Add(Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Items returns the accumulated diagnostics in declaration order.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasErrors reports whether any accumulated diagnostic has Error severity.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Len returns the number of accumulated diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// String renders all diagnostics, one per line.
func (b *Bag) String() string {
	var sb strings.Builder
	for _, d := range b.items {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
