package vrl

import (
	"strings"
	"testing"
)

func Test_Checker_Scenario_Scalar_Parent_Blocks_Index_Write(t *testing.T) {
	src := "foo = \"foo\"\nfoo[0] = []"
	diags := compileErr(t, src)
	d := diagWithCode(t, diags, CodePathRejected)

	if got := src[d.Primary.Span.Start:d.Primary.Span.End]; got != "[0]" {
		t.Fatalf("primary span covers %q, want \"[0]\"", got)
	}
	if len(d.Secondary) == 0 || !strings.Contains(d.Secondary[0].Message, "string") {
		t.Fatalf("blocking-type label should name the string: %+v", d.Secondary)
	}
}

func Test_Checker_Path_Rejection_Fix_Reapplies_Cleanly(t *testing.T) {
	src := "foo = \"foo\"\nfoo[0] = []"
	diags := compileErr(t, src)
	d := diagWithCode(t, diags, CodePathRejected)

	if len(d.Fixes) != 2 {
		t.Fatalf("want the two-line fix, got %q", d.Fixes)
	}
	if d.Fixes[0] != ".foo = []" {
		t.Fatalf("fix line 1 = %q", d.Fixes[0])
	}
	if d.Fixes[1] != "foo[0] = []" {
		t.Fatalf("fix line 2 = %q", d.Fixes[1])
	}

	// The suggested fix, inserted before the failing statement, must
	// compile.
	fixed := "foo = \"foo\"\n" + d.Fixes[0] + "\n" + d.Fixes[1]
	compileT(t, fixed)
}

func Test_Checker_Permissive_Parent_Accepts_Deep_Write(t *testing.T) {
	// .bar is unknown at compile time, so writing through it is accepted.
	prog := compileT(t, "bar.baz[2].deep = 1")
	if prog == nil {
		t.Fatal("unreachable")
	}
}

func Test_Checker_Variable_Scalar_Parent_Blocks_Too(t *testing.T) {
	diags := compileErr(t, "$x = \"s\"\n$x.field = 1")
	diagWithCode(t, diags, CodePathRejected)
}

func Test_Checker_Missing_Required_Argument(t *testing.T) {
	diags := compileErr(t, "downcase()")
	d := diagWithCode(t, diags, CodeMissingArgument)
	if !strings.Contains(d.Message, "\"value\"") {
		t.Fatalf("diagnostic should name the parameter: %s", d.Message)
	}
}

func Test_Checker_Undefined_Function(t *testing.T) {
	diags := compileErr(t, "frobnicate(1)")
	diagWithCode(t, diags, CodeUndefinedFunction)
}

func Test_Checker_Unknown_And_Duplicate_Named_Argument(t *testing.T) {
	diags := compileErr(t, "downcase(nope: \"x\")")
	diagWithCode(t, diags, CodeUnknownArgument)

	diags = compileErr(t, "downcase(\"a\", value: \"b\")")
	diagWithCode(t, diags, CodeUnknownArgument)
}

func Test_Checker_Invalid_Argument_Never_Overlaps(t *testing.T) {
	diags := compileErr(t, "downcase(123)")
	diagWithCode(t, diags, CodeInvalidArgument)
}

func Test_Checker_Partial_Overlap_Warns_Then_Errors_Under_Strict(t *testing.T) {
	src := "downcase!(.maybe)"

	prog, diags := Compile(src, Options{Registry: DefaultRegistry()})
	if prog == nil {
		t.Fatalf("permissive compile failed:\n%s", diags.Render(src))
	}
	d := diagWithCode(t, diags, CodePartialArgument)
	if d.Severity != SevWarning {
		t.Fatalf("permissive mode should warn, got %s", d.Severity)
	}

	prog, diags = Compile(src, Options{Registry: DefaultRegistry(), Strict: true})
	if prog != nil {
		t.Fatalf("strict compile should fail")
	}
	d = diagWithCode(t, diags, CodePartialArgument)
	if d.Severity != SevError {
		t.Fatalf("strict mode should error, got %s", d.Severity)
	}
}

func Test_Checker_Unhandled_Fallible_Suggests_Both_Handlers(t *testing.T) {
	diags := compileErr(t, "parse_json(.raw)")
	d := diagWithCode(t, diags, CodeUnhandledFallible)
	joined := strings.Join(d.Fixes, "\n")
	if !strings.Contains(joined, "parse_json!(.raw)") {
		t.Fatalf("fixes should offer the abort form: %q", d.Fixes)
	}
	if !strings.Contains(joined, "?? null") {
		t.Fatalf("fixes should offer the coalesce form: %q", d.Fixes)
	}
}

func Test_Checker_Handlers_Discharge_Fallibility(t *testing.T) {
	compileT(t, "parse_json!(.raw)")
	compileT(t, "parse_json(.raw) ?? null")
	compileT(t, "out = parse_json(.raw) ?? null")
}

func Test_Checker_Useless_Abort_And_Coalesce_Warn(t *testing.T) {
	src := "downcase!(\"A\")"
	prog, diags := Compile(src, Options{Registry: DefaultRegistry()})
	if prog == nil {
		t.Fatalf("compile failed:\n%s", diags.Render(src))
	}
	diagWithCode(t, diags, CodeUselessAbort)

	src = "\"a\" ?? \"b\""
	prog, diags = Compile(src, Options{Registry: DefaultRegistry()})
	if prog == nil {
		t.Fatalf("compile failed:\n%s", diags.Render(src))
	}
	diagWithCode(t, diags, CodeUselessCoalesce)
}

func Test_Checker_Undefined_Variable(t *testing.T) {
	diags := compileErr(t, "out = $nope")
	diagWithCode(t, diags, CodeUndefinedVariable)
}

func Test_Checker_Provably_Absent_Read_Warns(t *testing.T) {
	src := "foo = \"foo\"\nbar = foo.baz"
	prog, diags := Compile(src, Options{Registry: DefaultRegistry()})
	if prog == nil {
		t.Fatalf("compile failed:\n%s", diags.Render(src))
	}
	d := diagWithCode(t, diags, CodeAbsentPath)
	if d.Severity != SevWarning {
		t.Fatalf("absent-path reads warn, got %s", d.Severity)
	}
}

func Test_Checker_Unreachable_After_Abort_Warns(t *testing.T) {
	src := "abort\nfoo = 1"
	prog, diags := Compile(src, Options{Registry: DefaultRegistry()})
	if prog == nil {
		t.Fatalf("compile failed:\n%s", diags.Render(src))
	}
	diagWithCode(t, diags, CodeUnreachable)
}

func Test_Checker_Branch_Merge_Is_Union(t *testing.T) {
	prog := compileT(t, "if .c == true { 1 } else { \"s\" }")
	if prog.Result.Kinds != KindInt|KindString {
		t.Fatalf("merge kinds = %s, want integer or string", prog.Result.Kinds.Name())
	}

	// Without an else branch the null arm joins the union.
	prog = compileT(t, "if .c == true { 1 }")
	if prog.Result.Kinds != KindInt|KindNull {
		t.Fatalf("merge kinds = %s, want integer or null", prog.Result.Kinds.Name())
	}
}

func Test_Checker_Branch_Merge_Blocks_Later_Conflicting_Write(t *testing.T) {
	// Both branches leave a scalar at .foo; indexing through it must fail.
	diags := compileErr(t, "if .c == true { foo = 1 } else { foo = \"s\" }\nfoo[0] = 2")
	diagWithCode(t, diags, CodePathRejected)
}

func Test_Checker_Guard_Narrowing_Silences_Partial_Overlap(t *testing.T) {
	src := "if is_string(.msg) { up = upcase(.msg) }"
	prog, diags := Compile(src, Options{Registry: DefaultRegistry()})
	if prog == nil {
		t.Fatalf("compile failed:\n%s", diags.Render(src))
	}
	for _, d := range diags {
		t.Fatalf("expected a clean compile, got %s", d.Message)
	}
}

func Test_Checker_NonBoolean_Condition_Rejected(t *testing.T) {
	diags := compileErr(t, "if \"nope\" { 1 }")
	diagWithCode(t, diags, CodeInvalidArgument)
}

func Test_Checker_Syntax_Error_Is_E203(t *testing.T) {
	diags := compileErr(t, "foo = = 1")
	diagWithCode(t, diags, CodeSyntax)
}

func Test_Checker_Is_Deterministic(t *testing.T) {
	src := "foo = \"foo\"\nfoo[0] = []\nbar = baz.qux"
	_, a := Compile(src, Options{Registry: DefaultRegistry()})
	_, b := Compile(src, Options{Registry: DefaultRegistry()})
	if a.Render(src) != b.Render(src) {
		t.Fatalf("diagnostics are not deterministic")
	}
}

func Test_Checker_Declared_Target_State_Applies(t *testing.T) {
	// The host declares the event root as a definite object with no
	// surprises; a read still checks fine, and declared variables resolve.
	src := "out = $env"
	prog, diags := Compile(src, Options{
		Registry:  DefaultRegistry(),
		Variables: map[string]TypeState{"env": StateOf(KindString)},
	})
	if prog == nil {
		t.Fatalf("compile failed:\n%s", diags.Render(src))
	}
}

func Test_Checker_Sibling_Prefix_Write_Keeps_Path_State(t *testing.T) {
	// .foobar shares a byte prefix with .foo; writing .foo must not erase
	// what is known about the sibling, so indexing into the string still
	// fails.
	diags := compileErr(t, "foobar = \"s\"\nfoo = 1\nfoobar[0] = 2")
	diagWithCode(t, diags, CodePathRejected)
}

func Test_Checker_Parent_Write_Drops_Descendant_State(t *testing.T) {
	// Replacing .foo wholesale forgets the scalar previously known at
	// .foo.a, so the deeper write is admitted again.
	compileT(t, "foo.a = 1\nfoo = {}\nfoo.a[0] = 2")
}
