// eval.go
//
// The runtime evaluator. A compiled program runs against one event at a
// time: expressions evaluate left to right, the first runtime error aborts
// the invocation (fail fast), and mutations applied before the failure
// remain visible in the event — the host decides the record's disposition.
// All per-invocation state lives on the evaluator instance, so one Program
// may be resolved concurrently against distinct events.
package vrl

import (
	"fmt"
	"math"
)

// RuntimeErrorKind discriminates the typed runtime failures.
type RuntimeErrorKind int

const (
	// ErrTypeMismatch: a value had a kind an operation can not accept.
	ErrTypeMismatch RuntimeErrorKind = iota
	// ErrPathConflict: a write could not restructure the event as required.
	ErrPathConflict
	// ErrFunctionCall: a builtin's executor failed; Cause carries the
	// underlying error.
	ErrFunctionCall
	// ErrAborted: the program gave up on this record, via the abort
	// statement or a `!` call suffix.
	ErrAborted
)

var runtimeErrorNames = map[RuntimeErrorKind]string{
	ErrTypeMismatch: "type mismatch",
	ErrPathConflict: "path conflict",
	ErrFunctionCall: "function call failed",
	ErrAborted:      "aborted",
}

// RuntimeError is the single error type crossing the evaluator boundary.
// Span points into the program source that raised it.
type RuntimeError struct {
	Kind  RuntimeErrorKind
	Msg   string
	Span  Span
	Cause error
}

func (e *RuntimeError) Error() string {
	name := runtimeErrorNames[e.Kind]
	switch {
	case e.Msg != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", name, e.Msg, e.Cause)
	case e.Msg != "":
		return name + ": " + e.Msg
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", name, e.Cause)
	default:
		return name
	}
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// Aborted reports whether the error is the deliberate give-up signal rather
// than a fault.
func (e *RuntimeError) Aborted() bool { return e.Kind == ErrAborted }

func (e *RuntimeError) at(sp Span) *RuntimeError {
	if e.Span.End == 0 {
		e.Span = sp
	}
	return e
}

// -----------------------------
// Evaluator
// -----------------------------

// evaluator holds one invocation's state: the event under mutation and the
// local variable scope stack.
type evaluator struct {
	event  *Value
	reg    *Registry
	scopes []map[string]Value
}

func newEvaluator(event *Value, reg *Registry, vars map[string]Value) *evaluator {
	root := map[string]Value{}
	for k, v := range vars {
		root[k] = v
	}
	return &evaluator{event: event, reg: reg, scopes: []map[string]Value{root}}
}

func (ev *evaluator) pushScope() { ev.scopes = append(ev.scopes, map[string]Value{}) }
func (ev *evaluator) popScope()  { ev.scopes = ev.scopes[:len(ev.scopes)-1] }

func (ev *evaluator) lookup(name string) (Value, bool) {
	for i := len(ev.scopes) - 1; i >= 0; i-- {
		if v, ok := ev.scopes[i][name]; ok {
			return v, true
		}
	}
	return Null, false
}

func (ev *evaluator) bind(name string, v Value) {
	ev.scopes[len(ev.scopes)-1][name] = v
}

// setVar writes to an existing visible binding's scope, so nested-scope
// mutation matches what the checker assumed for the binding site.
func (ev *evaluator) setVar(name string, v Value) {
	for i := len(ev.scopes) - 1; i >= 0; i-- {
		if _, ok := ev.scopes[i][name]; ok {
			ev.scopes[i][name] = v
			return
		}
	}
	ev.bind(name, v)
}

func (ev *evaluator) evalBlock(b *Block, newScope bool) (Value, *RuntimeError) {
	if newScope {
		ev.pushScope()
		defer ev.popScope()
	}
	result := Null
	for _, e := range b.Exprs {
		v, err := ev.eval(e)
		if err != nil {
			return Null, err
		}
		result = v
	}
	return result, nil
}

func (ev *evaluator) eval(e Expr) (Value, *RuntimeError) {
	switch n := e.(type) {
	case *Literal:
		return n.Val, nil
	case *ArrayLit:
		xs := make([]Value, 0, len(n.Elems))
		for _, el := range n.Elems {
			v, err := ev.eval(el)
			if err != nil {
				return Null, err
			}
			xs = append(xs, v)
		}
		return Arr(xs), nil
	case *ObjectLit:
		o := NewObject()
		for i, k := range n.Keys {
			v, err := ev.eval(n.Vals[i])
			if err != nil {
				return Null, err
			}
			o.Set(k, v)
		}
		return Obj(o), nil
	case *PathExpr:
		v, ok := pathGet(*ev.event, n.Path)
		if !ok {
			return Null, nil
		}
		return v, nil
	case *VarExpr:
		base, ok := ev.lookup(n.Name)
		if !ok {
			return Null, nil
		}
		if len(n.Path) == 0 {
			return base, nil
		}
		v, ok := pathGet(base, n.Path)
		if !ok {
			return Null, nil
		}
		return v, nil
	case *Assign:
		return ev.evalAssign(n)
	case *If:
		return ev.evalIf(n)
	case *Call:
		return ev.evalCall(n)
	case *Coalesce:
		return ev.evalCoalesce(n)
	case *Binary:
		return ev.evalBinary(n)
	case *Unary:
		return ev.evalUnary(n)
	case *Block:
		return ev.evalBlock(n, true)
	case *Abort:
		return Null, &RuntimeError{Kind: ErrAborted, Span: n.Sp}
	default:
		return Null, &RuntimeError{Kind: ErrTypeMismatch, Msg: "unsupported expression", Span: e.Span()}
	}
}

// evalAssign evaluates the right-hand side, then routes the write. The
// stored value is a deep copy when it is a container, so later mutations of
// one location never alias another.
func (ev *evaluator) evalAssign(n *Assign) (Value, *RuntimeError) {
	v, err := ev.eval(n.Value)
	if err != nil {
		return Null, err
	}
	stored := v.Clone()
	t := n.Target
	if t.Var != "" {
		if len(t.Path) == 0 {
			ev.bind(t.Var, stored)
			return v, nil
		}
		base, ok := ev.lookup(t.Var)
		if !ok {
			base = Null
		}
		if err := pathSet(&base, t.Path, stored); err != nil {
			return Null, err.at(n.Sp)
		}
		ev.setVar(t.Var, base)
		return v, nil
	}
	if err := pathSet(ev.event, t.Path, stored); err != nil {
		return Null, err.at(n.Sp)
	}
	return v, nil
}

func (ev *evaluator) evalIf(n *If) (Value, *RuntimeError) {
	cond, err := ev.eval(n.Cond)
	if err != nil {
		return Null, err
	}
	if cond.Tag != VTBool {
		return Null, &RuntimeError{
			Kind: ErrTypeMismatch,
			Msg:  "if condition must be a boolean, got " + cond.KindName(),
			Span: n.Cond.Span(),
		}
	}
	if cond.Data.(bool) {
		return ev.evalBlock(n.Then, true)
	}
	if n.Else != nil {
		return ev.evalBlock(n.Else, true)
	}
	return Null, nil
}

// evalCall binds arguments the same way the checker did (positional by
// declared order, then named), fills defaults, runs the registry's runtime
// validator, and dispatches the executor.
func (ev *evaluator) evalCall(n *Call) (Value, *RuntimeError) {
	// exists and del are special forms when applied directly to an event
	// path: they act on the location, not the value it holds.
	if len(n.Args) == 1 {
		if pe, ok := n.Args[0].Val.(*PathExpr); ok {
			switch n.Func {
			case "exists":
				_, present := pathGet(*ev.event, pe.Path)
				return Bool(present), nil
			case "del":
				return pathDelete(ev.event, pe.Path), nil
			}
		}
	}
	f, ok := ev.reg.Lookup(n.Func)
	if !ok {
		// Unreachable after a successful compile.
		return Null, &RuntimeError{Kind: ErrFunctionCall, Msg: "undefined function " + n.Func, Span: n.FuncSpan}
	}
	args := map[string]Value{}
	pos := 0
	for _, a := range n.Args {
		v, err := ev.eval(a.Val)
		if err != nil {
			return Null, err
		}
		name := a.Name
		if name == "" && pos < len(f.Params) {
			name = f.Params[pos].Name
			pos++
		}
		args[name] = v
	}
	f.bindDefaults(args)
	if verr := f.validateRuntime(args); verr != nil {
		return Null, ev.callOutcome(n, verr)
	}
	out, callErr := f.Impl(FuncCall{args: args})
	if callErr != nil {
		rerr, ok := callErr.(*RuntimeError)
		if !ok {
			rerr = &RuntimeError{Kind: ErrFunctionCall, Msg: n.Func, Cause: callErr}
		}
		return Null, ev.callOutcome(n, rerr)
	}
	return out, nil
}

// callOutcome applies the `!` suffix: an aborting call converts its failure
// into the give-up signal, keeping the original as the cause.
func (ev *evaluator) callOutcome(n *Call, err *RuntimeError) *RuntimeError {
	err.at(n.Sp)
	if n.Abort && err.Kind != ErrAborted {
		return &RuntimeError{Kind: ErrAborted, Msg: n.Func + " failed", Span: n.Sp, Cause: err}
	}
	return err
}

// evalCoalesce runs the left side; a runtime failure (other than abort)
// or an absent path selects the right side instead.
func (ev *evaluator) evalCoalesce(n *Coalesce) (Value, *RuntimeError) {
	if pe, ok := n.Lhs.(*PathExpr); ok {
		if _, present := pathGet(*ev.event, pe.Path); !present {
			return ev.eval(n.Rhs)
		}
	}
	v, err := ev.eval(n.Lhs)
	if err != nil {
		if err.Kind == ErrAborted {
			return Null, err
		}
		return ev.eval(n.Rhs)
	}
	return v, nil
}

// -----------------------------
// Operators
// -----------------------------

func (ev *evaluator) evalBinary(n *Binary) (Value, *RuntimeError) {
	// Short-circuit forms first.
	if n.Op == OpAnd || n.Op == OpOr {
		lhs, err := ev.evalBool(n.Lhs)
		if err != nil {
			return Null, err
		}
		if (n.Op == OpAnd && !lhs) || (n.Op == OpOr && lhs) {
			return Bool(lhs), nil
		}
		rhs, err := ev.evalBool(n.Rhs)
		if err != nil {
			return Null, err
		}
		return Bool(rhs), nil
	}

	lhs, err := ev.eval(n.Lhs)
	if err != nil {
		return Null, err
	}
	rhs, err := ev.eval(n.Rhs)
	if err != nil {
		return Null, err
	}

	switch n.Op {
	case OpEq:
		return Bool(lhs.Equal(rhs)), nil
	case OpNe:
		return Bool(!lhs.Equal(rhs)), nil
	case OpLt, OpLe, OpGt, OpGe:
		return compareValues(n, lhs, rhs)
	case OpAdd:
		if lhs.Tag == VTString || rhs.Tag == VTString {
			if lhs.Tag != VTString || rhs.Tag != VTString {
				return Null, opError(n, lhs, rhs, "can only concatenate two strings")
			}
			return Str(lhs.Data.(string) + rhs.Data.(string)), nil
		}
		return arith(n, lhs, rhs)
	case OpSub, OpMul, OpDiv:
		return arith(n, lhs, rhs)
	}
	return Null, opError(n, lhs, rhs, "unsupported operator")
}

func (ev *evaluator) evalBool(e Expr) (bool, *RuntimeError) {
	v, err := ev.eval(e)
	if err != nil {
		return false, err
	}
	if v.Tag != VTBool {
		return false, &RuntimeError{
			Kind: ErrTypeMismatch,
			Msg:  "expected a boolean operand, got " + v.KindName(),
			Span: e.Span(),
		}
	}
	return v.Data.(bool), nil
}

func (ev *evaluator) evalUnary(n *Unary) (Value, *RuntimeError) {
	v, err := ev.eval(n.Operand)
	if err != nil {
		return Null, err
	}
	switch n.Op {
	case OpNot:
		if v.Tag != VTBool {
			return Null, &RuntimeError{
				Kind: ErrTypeMismatch,
				Msg:  "\"!\" needs a boolean, got " + v.KindName(),
				Span: n.Operand.Span(),
			}
		}
		return Bool(!v.Data.(bool)), nil
	case OpNeg:
		switch v.Tag {
		case VTInt:
			return Int(-v.Data.(int64)), nil
		case VTFloat:
			return Float(-v.Data.(float64)), nil
		}
		return Null, &RuntimeError{
			Kind: ErrTypeMismatch,
			Msg:  "\"-\" needs a number, got " + v.KindName(),
			Span: n.Operand.Span(),
		}
	}
	return Null, nil
}

// numeric extracts the float view of a numeric value.
func numeric(v Value) (f float64, isInt bool, ok bool) {
	switch v.Tag {
	case VTInt:
		return float64(v.Data.(int64)), true, true
	case VTFloat:
		return v.Data.(float64), false, true
	}
	return 0, false, false
}

func opError(n *Binary, lhs, rhs Value, msg string) *RuntimeError {
	return &RuntimeError{
		Kind: ErrTypeMismatch,
		Msg:  fmt.Sprintf("%q on %s and %s: %s", n.Op.String(), lhs.KindName(), rhs.KindName(), msg),
		Span: n.Sp,
	}
}

func compareValues(n *Binary, lhs, rhs Value) (Value, *RuntimeError) {
	a, _, okA := numeric(lhs)
	b, _, okB := numeric(rhs)
	if !okA || !okB {
		return Null, opError(n, lhs, rhs, "comparison needs numbers")
	}
	var out bool
	switch n.Op {
	case OpLt:
		out = a < b
	case OpLe:
		out = a <= b
	case OpGt:
		out = a > b
	case OpGe:
		out = a >= b
	}
	return Bool(out), nil
}

// arith applies +, -, * and / with integer arithmetic preserved when both
// operands are integers; division always produces a float and rejects a
// zero divisor.
func arith(n *Binary, lhs, rhs Value) (Value, *RuntimeError) {
	a, aInt, okA := numeric(lhs)
	b, bInt, okB := numeric(rhs)
	if !okA || !okB {
		return Null, opError(n, lhs, rhs, "arithmetic needs numbers")
	}
	if n.Op == OpDiv {
		if b == 0 {
			return Null, &RuntimeError{Kind: ErrTypeMismatch, Msg: "division by zero", Span: n.Sp}
		}
		return Float(a / b), nil
	}
	if aInt && bInt {
		z, ok := intArith(n.Op, lhs.Data.(int64), rhs.Data.(int64))
		if !ok {
			return Null, &RuntimeError{Kind: ErrTypeMismatch, Msg: "arithmetic overflow", Span: n.Sp}
		}
		return Int(z), nil
	}
	var f float64
	switch n.Op {
	case OpAdd:
		f = a + b
	case OpSub:
		f = a - b
	case OpMul:
		f = a * b
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Null, &RuntimeError{Kind: ErrTypeMismatch, Msg: "arithmetic overflow", Span: n.Sp}
	}
	return Float(f), nil
}

// intArith applies +, - or * on int64 operands, reporting overflow instead
// of wrapping.
func intArith(op BinOp, x, y int64) (int64, bool) {
	switch op {
	case OpAdd:
		if (y > 0 && x > math.MaxInt64-y) || (y < 0 && x < math.MinInt64-y) {
			return 0, false
		}
		return x + y, true
	case OpSub:
		if (y < 0 && x > math.MaxInt64+y) || (y > 0 && x < math.MinInt64+y) {
			return 0, false
		}
		return x - y, true
	case OpMul:
		if x == 0 || y == 0 {
			return 0, true
		}
		if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return 0, false
		}
		z := x * y
		if z/y != x {
			return 0, false
		}
		return z, true
	}
	return 0, false
}
