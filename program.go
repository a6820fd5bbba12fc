// program.go
//
// Compilation entry points. Compile runs the front end and the checker over
// one source string and either returns an executable Program or the full
// diagnostic list. A Program is immutable after construction and safe for
// concurrent Resolve calls; each invocation gets its own evaluator.
package vrl

// Options configures one compilation.
type Options struct {
	// Registry supplies the callable functions. Required for programs that
	// call anything; DefaultRegistry() is the stock library.
	Registry *Registry

	// Strict escalates partial argument-kind overlap from a warning to an
	// error.
	Strict bool

	// Target is the initial type-state of the external event root. The zero
	// value means "an object whose fields are unknown".
	Target TypeState

	// Variables pre-declares host-provided local variables and their
	// type-states.
	Variables map[string]TypeState
}

// Program is one compiled, checked script.
type Program struct {
	// Source is the original text, kept for diagnostic rendering.
	Source string

	// Result is the checker's type-state for the program's final
	// expression.
	Result TypeState

	root *Block
	reg  *Registry
}

// Compile parses and checks src. On any Error-severity diagnostic the
// program is nil; the diagnostic list is returned either way, so hosts can
// surface warnings from successful compiles.
func Compile(src string, opts Options) (*Program, DiagnosticList) {
	root, diags := parseProgram(src)
	if diags.HasErrors() {
		return nil, diags
	}
	result, checkDiags := check(src, root, opts)
	diags = append(diags, checkDiags...)
	if diags.HasErrors() {
		return nil, diags
	}
	return &Program{Source: src, Result: result, root: root, reg: opts.Registry}, diags
}

// Resolve executes the program against event, mutating it in place, and
// returns the program's result value. On a runtime error the event keeps
// every mutation applied before the failure; the caller decides whether to
// keep, drop, or route the record. err.Aborted() distinguishes the
// deliberate give-up from a fault.
func (p *Program) Resolve(event *Value) (Value, *RuntimeError) {
	return p.ResolveWith(event, nil)
}

// ResolveWith is Resolve with host-provided local variable values, matching
// Options.Variables declarations from compile time.
func (p *Program) ResolveWith(event *Value, vars map[string]Value) (Value, *RuntimeError) {
	if event.Tag == VTNull {
		*event = Obj(NewObject())
	}
	ev := newEvaluator(event, p.reg, vars)
	return ev.evalBlock(p.root, false)
}
