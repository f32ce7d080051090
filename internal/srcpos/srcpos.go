// Package srcpos tracks byte offsets, line/column positions, and spans over
// Alloy source text.
package srcpos

import "fmt"

// Pos is a 1-based line, 1-based column, 0-based byte offset triple into a
// single source file.
type Pos struct {
	Line   int
	Col    int
	Offset int
}

// String renders a position as "line:col".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Before reports whether p precedes q in the source (by offset).
func (p Pos) Before(q Pos) bool {
	return p.Offset < q.Offset
}

// Span is an ordered pair of positions delimiting a range of source text.
// A zero-length span (Start == End) is valid and used for the Eof token.
type Span struct {
	Start Pos
	End   Pos
}

// String renders a span as "start-end".
func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Merge returns the smallest span covering both s and t. The two spans need
// not be adjacent; the caller is responsible for maintaining source order.
func Merge(s, t Span) Span {
	start, end := s.Start, s.End
	if t.Start.Offset < start.Offset {
		start = t.Start
	}
	if t.End.Offset > end.Offset {
		end = t.End
	}
	return Span{Start: start, End: end}
}
