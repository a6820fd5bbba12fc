package vrl

import (
	"strings"
	"testing"
)

func Test_Diag_Render_Frame_Shape(t *testing.T) {
	src := "foo = \"foo\"\nfoo[0] = []"
	_, diags := Compile(src, Options{Registry: DefaultRegistry()})
	out := diags.Render(src)

	for _, want := range []string{
		"error[E642]: parent path segment rejected",
		"--> 2:4",
		"foo[0] = []",
		"^^^",
		"---",
		"= fix: .foo = []",
		"= fix: foo[0] = []",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func Test_Diag_Render_Is_Pure(t *testing.T) {
	src := "foo = \"foo\"\nfoo[0] = []\nbar = baz.qux"
	_, diags := Compile(src, Options{Registry: DefaultRegistry()})
	if a, b := diags.Render(src), diags.Render(src); a != b {
		t.Fatalf("render is not pure")
	}
}

func Test_Diag_Sorting_Is_Source_Order(t *testing.T) {
	l := DiagnosticList{
		NewError(CodeSyntax, Span{Start: 30, End: 31}, "late", ""),
		NewError(CodeSyntax, Span{Start: 5, End: 6}, "early", ""),
		NewWarning(CodeSyntax, Span{Start: 5, End: 6}, "early warning", ""),
	}
	sorted := l.sorted()
	if sorted[0].Message != "early" || sorted[1].Message != "early warning" || sorted[2].Message != "late" {
		t.Fatalf("order: %s / %s / %s", sorted[0].Message, sorted[1].Message, sorted[2].Message)
	}
}

func Test_Diag_List_Error_Joins_Headers(t *testing.T) {
	l := DiagnosticList{
		NewError(CodePathRejected, Span{}, "first", ""),
		NewWarning(CodeUselessAbort, Span{}, "second", ""),
	}
	msg := l.Error()
	if !strings.Contains(msg, "error[E642]: first") || !strings.Contains(msg, "warning[E620]: second") {
		t.Fatalf("Error() = %q", msg)
	}
}

func Test_Diag_HasErrors_Ignores_Warnings(t *testing.T) {
	l := DiagnosticList{NewWarning(CodeUselessAbort, Span{}, "w", "")}
	if l.HasErrors() {
		t.Fatalf("warnings are not errors")
	}
	l = append(l, NewError(CodeSyntax, Span{}, "e", ""))
	if !l.HasErrors() || len(l.Errors()) != 1 {
		t.Fatalf("error filtering broken")
	}
}

func Test_Diag_LineCol(t *testing.T) {
	src := "ab\ncd\nef"
	cases := []struct{ off, line, col int }{
		{0, 1, 1}, {1, 1, 2}, {3, 2, 1}, {4, 2, 2}, {6, 3, 1},
	}
	for _, c := range cases {
		if line, col := lineCol(src, c.off); line != c.line || col != c.col {
			t.Fatalf("lineCol(%d) = %d:%d, want %d:%d", c.off, line, col, c.line, c.col)
		}
	}
	if got := srcLine(src, 2); got != "cd" {
		t.Fatalf("srcLine(2) = %q", got)
	}
}
