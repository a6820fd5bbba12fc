package vrl

import (
	"testing"
)

// compileT compiles src with the stock library, failing the test on errors.
func compileT(t *testing.T, src string) *Program {
	t.Helper()
	prog, diags := Compile(src, Options{Registry: DefaultRegistry()})
	if prog == nil {
		t.Fatalf("compile failed:\n%s", diags.Render(src))
	}
	return prog
}

// compileErr compiles src expecting failure and returns the diagnostics.
func compileErr(t *testing.T, src string) DiagnosticList {
	t.Helper()
	prog, diags := Compile(src, Options{Registry: DefaultRegistry()})
	if prog != nil {
		t.Fatalf("compile unexpectedly succeeded for %q", src)
	}
	return diags
}

// evalT compiles and runs src against an event decoded from eventJSON,
// returning the result and the mutated event.
func evalT(t *testing.T, src, eventJSON string) (Value, Value) {
	t.Helper()
	prog := compileT(t, src)
	event := decodeT(t, eventJSON)
	result, rerr := prog.Resolve(&event)
	if rerr != nil {
		t.Fatalf("runtime error for %q: %v", src, rerr)
	}
	return result, event
}

// evalErr compiles src, runs it, and returns the expected runtime error.
func evalErr(t *testing.T, src, eventJSON string) (*RuntimeError, Value) {
	t.Helper()
	prog := compileT(t, src)
	event := decodeT(t, eventJSON)
	if result, rerr := prog.Resolve(&event); rerr == nil {
		t.Fatalf("expected a runtime error for %q, got %s", src, result)
	} else {
		return rerr, event
	}
	return nil, Null
}

func decodeT(t *testing.T, s string) Value {
	t.Helper()
	if s == "" {
		return Obj(NewObject())
	}
	v, err := DecodeJSON(s)
	if err != nil {
		t.Fatalf("bad test JSON %q: %v", s, err)
	}
	return v
}

// diagWithCode finds the first diagnostic carrying code, or fails.
func diagWithCode(t *testing.T, diags DiagnosticList, code Code) *Diagnostic {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("no %s diagnostic in: %s", code, diags.Error())
	return nil
}

// wantEvent asserts the event equals the JSON document.
func wantEvent(t *testing.T, event Value, wantJSON string) {
	t.Helper()
	want := decodeT(t, wantJSON)
	if !event.Equal(want) {
		t.Fatalf("event mismatch:\n  got  %s\n  want %s", event, want)
	}
}
