// diag.go
//
// Structured compile diagnostics and their deterministic textual rendering.
//
// A Diagnostic is immutable once constructed: a stable code, a severity, a
// primary span, any number of labeled secondary spans, a message, and an
// optional block of suggested-fix lines. Rendering is pure text production
// from the original source plus byte offsets; nothing is re-parsed and no
// state is shared between calls. Codes and the overall frame shape are a
// contract surface for tooling that parses compiler output; wording may
// change, codes and framing may not.
package vrl

import (
	"fmt"
	"sort"
	"strings"
)

// Span is a half-open byte interval [Start, End) into the original UTF-8
// source. Line/column coordinates are derived on demand during rendering.
type Span struct {
	Start int // inclusive
	End   int // exclusive
}

// Severity of a diagnostic. Errors block program construction; warnings
// never do.
type Severity int

const (
	SevError Severity = iota
	SevWarning
)

func (s Severity) String() string {
	if s == SevWarning {
		return "warning"
	}
	return "error"
}

// Code identifies a diagnostic rule. The set below is stable across
// versions: editors and CI match on these.
type Code string

const (
	CodeSyntax            Code = "E203" // syntax error
	CodeUnhandledFallible Code = "E103" // fallible expression not handled
	CodeUndefinedFunction Code = "E105" // call to undefined function
	CodeInvalidArgument   Code = "E110" // argument can never satisfy the parameter
	CodePartialArgument   Code = "E111" // argument only partially overlaps the parameter
	CodeMissingArgument   Code = "E401" // required argument omitted
	CodeUnknownArgument   Code = "E402" // named argument not declared
	CodeUselessAbort      Code = "E620" // `!` on an infallible expression
	CodeUselessCoalesce   Code = "E651" // `??` on an infallible expression
	CodePathRejected      Code = "E642" // parent path segment rejected
	CodeUndefinedVariable Code = "E701" // read of an undefined variable
	CodeUnreachable       Code = "E801" // unreachable code
	CodeAbsentPath        Code = "E802" // provably-absent path read
)

// codeTitles gives the one-line rule name printed in the frame header.
var codeTitles = map[Code]string{
	CodeSyntax:            "syntax error",
	CodeUnhandledFallible: "unhandled fallible expression",
	CodeUndefinedFunction: "call to undefined function",
	CodeInvalidArgument:   "invalid argument type",
	CodePartialArgument:   "argument type not guaranteed",
	CodeMissingArgument:   "missing required argument",
	CodeUnknownArgument:   "unknown named argument",
	CodeUselessAbort:      "aborting an infallible expression",
	CodeUselessCoalesce:   "coalescing an infallible expression",
	CodePathRejected:      "parent path segment rejected",
	CodeUndefinedVariable: "undefined variable",
	CodeUnreachable:       "unreachable code",
	CodeAbsentPath:        "path can not be resolved",
}

// Label annotates a span inside a diagnostic frame. The primary label is
// underlined with carets, secondary labels with dashes.
type Label struct {
	Span    Span
	Message string
}

// Diagnostic is one coded finding. Construct with the helpers below and do
// not mutate after handing it to a list.
type Diagnostic struct {
	Code      Code
	Severity  Severity
	Message   string
	Primary   Label
	Secondary []Label
	Fixes     []string // suggested replacement lines, in order
}

// NewError and NewWarning build diagnostics with a primary span and label.
func NewError(code Code, span Span, msg, label string) *Diagnostic {
	return &Diagnostic{Code: code, Severity: SevError, Message: msg, Primary: Label{Span: span, Message: label}}
}

func NewWarning(code Code, span Span, msg, label string) *Diagnostic {
	d := NewError(code, span, msg, label)
	d.Severity = SevWarning
	return d
}

// WithSecondary appends a labeled secondary span.
func (d *Diagnostic) WithSecondary(span Span, msg string) *Diagnostic {
	d.Secondary = append(d.Secondary, Label{Span: span, Message: msg})
	return d
}

// WithFix appends a suggested-fix line.
func (d *Diagnostic) WithFix(lines ...string) *Diagnostic {
	d.Fixes = append(d.Fixes, lines...)
	return d
}

// DiagnosticList accumulates findings during one compilation.
type DiagnosticList []*Diagnostic

// HasErrors reports whether any diagnostic blocks program construction.
func (l DiagnosticList) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}

// Errors returns only the Error-severity findings.
func (l DiagnosticList) Errors() DiagnosticList {
	var out DiagnosticList
	for _, d := range l {
		if d.Severity == SevError {
			out = append(out, d)
		}
	}
	return out
}

// sorted returns the list ordered by primary span start (stable), which is
// source order for diagnostics produced in one pass.
func (l DiagnosticList) sorted() DiagnosticList {
	out := append(DiagnosticList(nil), l...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Primary.Span.Start < out[j].Primary.Span.Start
	})
	return out
}

// Render produces the full textual report for the list against the original
// source. Pure: same inputs, byte-identical output.
func (l DiagnosticList) Render(src string) string {
	var b strings.Builder
	for i, d := range l.sorted() {
		if i > 0 {
			b.WriteByte('\n')
		}
		d.render(&b, src)
	}
	return b.String()
}

// Error makes a DiagnosticList usable where a Go error is wanted (the
// compile entry points return it that way). The message is the rendered
// header lines without source excerpts.
func (l DiagnosticList) Error() string {
	parts := make([]string, 0, len(l))
	for _, d := range l.sorted() {
		parts = append(parts, fmt.Sprintf("%s[%s]: %s", d.Severity, d.Code, d.Message))
	}
	return strings.Join(parts, "; ")
}

// -----------------------------
// Rendering
// -----------------------------

// render writes one framed diagnostic:
//
//	error[E642]: parent path segment rejected
//	  --> 2:4
//	   |
//	 2 | foo[0] = []
//	   |    ^^^ this segment conflicts with the parent
//	   |
//	 1 | foo = "foo"
//	   |       ----- parent resolves to a string
//	   = fix: foo = []
//	   = fix: foo[0] = []
func (d *Diagnostic) render(b *strings.Builder, src string) {
	title := codeTitles[d.Code]
	if title == "" {
		title = d.Message
	}
	fmt.Fprintf(b, "%s[%s]: %s\n", d.Severity, d.Code, title)
	line, col := lineCol(src, d.Primary.Span.Start)
	fmt.Fprintf(b, "  --> %d:%d\n", line, col)
	b.WriteString("   |\n")
	renderLabel(b, src, d.Primary, '^')
	for _, sec := range d.Secondary {
		b.WriteString("   |\n")
		renderLabel(b, src, sec, '-')
	}
	if d.Message != "" && d.Message != title {
		fmt.Fprintf(b, "   = %s\n", d.Message)
	}
	for _, fix := range d.Fixes {
		fmt.Fprintf(b, "   = fix: %s\n", fix)
	}
}

// renderLabel prints the source line containing the label's span with an
// underline of the given marker beneath the spanned columns.
func renderLabel(b *strings.Builder, src string, lb Label, marker byte) {
	line, col := lineCol(src, lb.Span.Start)
	text := srcLine(src, line)
	fmt.Fprintf(b, "%2d | %s\n", line, text)

	width := lb.Span.End - lb.Span.Start
	if width < 1 {
		width = 1
	}
	// Clamp the underline to the line's end.
	if max := len(text) - (col - 1); width > max && max > 0 {
		width = max
	}
	under := strings.Repeat(string(marker), width)
	if lb.Message != "" {
		under += " " + lb.Message
	}
	fmt.Fprintf(b, "   | %s%s\n", strings.Repeat(" ", col-1), under)
}

// lineCol maps a byte offset to 1-based line and column.
func lineCol(src string, off int) (line, col int) {
	if off < 0 {
		off = 0
	}
	if off > len(src) {
		off = len(src)
	}
	line, col = 1, 1
	for i := 0; i < off; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// srcLine returns the 1-based line of src without its newline.
func srcLine(src string, line int) string {
	start := 0
	for n := 1; n < line; n++ {
		i := strings.IndexByte(src[start:], '\n')
		if i < 0 {
			return ""
		}
		start += i + 1
	}
	if end := strings.IndexByte(src[start:], '\n'); end >= 0 {
		return src[start : start+end]
	}
	return src[start:]
}
