// registry.go
//
// The contract every builtin function fulfills, and the read-only table the
// checker and evaluator both consult. A Function pairs a compile-time
// signature (parameters with accepted kind-sets, optionality, defaults, and
// a result-kind function of the argument type-states) with a runtime
// executor over concrete Values. The registry is populated once at process
// start and never mutated afterwards; a duplicate name is a registration-
// time fatal, and an unknown name is a compile error, never a runtime one.
package vrl

import (
	"fmt"
	"sort"
)

// Param describes one declared function parameter.
type Param struct {
	Name     string
	Kinds    Kind  // accepted kind-set
	Required bool
	Default  Value // applied when an optional parameter is omitted
}

// FuncCall carries the bound, validated arguments into an executor. Missing
// optional arguments are present with their declared defaults.
type FuncCall struct {
	args map[string]Value
}

// Arg returns the value bound to the named parameter. Omitted optional
// parameters are bound to their declared defaults before execution, so the
// value is always present for a declared name.
func (c FuncCall) Arg(name string) Value { return c.args[name] }

// ReturnFn computes a call's result type-state from the argument
// type-states, in declared parameter order. This supports result-type
// narrowing ("returns string when the input is already a string").
type ReturnFn func(args []TypeState) TypeState

// Returns builds the common constant ReturnFn.
func Returns(k Kind) ReturnFn {
	return func([]TypeState) TypeState { return StateOf(k) }
}

// Function is one registered builtin.
type Function struct {
	Name   string
	Params []Param

	// Fallible marks executors that can fail even on well-kinded input
	// (parse failures, I/O capabilities, division-like domains).
	Fallible bool

	// Predicate is non-zero for type-guard functions (is_string and
	// friends): the kind the guard proves about its single argument. The
	// checker uses it to narrow branch type-states.
	Predicate Kind

	// Return computes the result type-state; nil means "any".
	Return ReturnFn

	// Impl executes the call against concrete values.
	Impl func(call FuncCall) (Value, error)

	// Doc is the short usage text the REPL's help command prints.
	Doc string
}

// resultState applies Return with a safe default.
func (f *Function) resultState(args []TypeState) TypeState {
	if f.Return == nil {
		return StateOf(KindAny)
	}
	return f.Return(args)
}

// Registry is the static name → Function table.
type Registry struct {
	funcs map[string]*Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{funcs: map[string]*Function{}} }

// Register installs f. A duplicate name or malformed signature is an error;
// both are contract violations the process must surface before compiling
// anything (see MustRegister).
func (r *Registry) Register(f *Function) error {
	if f.Name == "" {
		return fmt.Errorf("registry: function with empty name")
	}
	if _, dup := r.funcs[f.Name]; dup {
		return fmt.Errorf("registry: duplicate function %q", f.Name)
	}
	if f.Impl == nil {
		return fmt.Errorf("registry: function %q has no executor", f.Name)
	}
	seen := map[string]bool{}
	optional := false
	for _, p := range f.Params {
		if p.Name == "" || p.Kinds == 0 {
			return fmt.Errorf("registry: function %q has a malformed parameter", f.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("registry: function %q repeats parameter %q", f.Name, p.Name)
		}
		seen[p.Name] = true
		if !p.Required {
			optional = true
		} else if optional {
			return fmt.Errorf("registry: function %q declares a required parameter after an optional one", f.Name)
		}
	}
	r.funcs[f.Name] = f
	return nil
}

// MustRegister is Register for process-start wiring: a violation is fatal.
func (r *Registry) MustRegister(f *Function) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Lookup finds a function by name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	f, ok := r.funcs[name]
	return f, ok
}

// Names lists registered functions sorted by name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// validateRuntime checks concrete argument values against the declared
// kind-sets. This is the registry's runtime validator, independent of the
// compile-time signature check: it matters exactly when the static
// type-state was broader than the parameter (a compile Warning in
// permissive mode).
func (f *Function) validateRuntime(args map[string]Value) *RuntimeError {
	for _, p := range f.Params {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		if !p.Kinds.Intersects(v.Kind()) {
			return &RuntimeError{
				Kind: ErrTypeMismatch,
				Msg: fmt.Sprintf("%s: argument %q must be %s, got %s",
					f.Name, p.Name, p.Kinds.Name(), v.KindName()),
			}
		}
	}
	return nil
}

// bindDefaults fills omitted optional parameters with their defaults.
func (f *Function) bindDefaults(args map[string]Value) {
	for _, p := range f.Params {
		if _, ok := args[p.Name]; !ok && !p.Required {
			args[p.Name] = p.Default
		}
	}
}
