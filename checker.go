// checker.go
//
// The type checker and path resolver. One bottom-up walk over the AST
// computes a TypeState for every expression, validates each assignment
// target against the path-mutation rule, and checks call sites against the
// function registry. The walk is pure given its inputs: the same AST and
// initial states always produce the same diagnostics and the same final
// type-state (see program.go for the entry points).
//
// Branching discipline follows the lattice: each branch of an if/else is
// checked against its own copy of the mutable analysis state (event path
// states), and the copies are re-joined by union at the merge point. Local
// variables are block scoped; a binding introduced inside a branch dies
// with the branch's scope.
package vrl

import (
	"fmt"
	"strings"
)

// checker carries the walk state. src is only used to slice original
// statement text into suggested fixes.
type checker struct {
	src      string
	reg      *Registry
	strict   bool
	diag     DiagnosticList
	scopes   []map[string]*varBinding
	paths    *pathStates
}

// varBinding is one local variable's analysis state, including what is
// known about locations inside it (for `$x.field` style access).
type varBinding struct {
	state TypeState
	sub   map[string]TypeState // keyed by relative Path.String()
}

func (b *varBinding) clone() *varBinding {
	out := &varBinding{state: b.state, sub: make(map[string]TypeState, len(b.sub))}
	for k, v := range b.sub {
		out.sub[k] = v
	}
	return out
}

// pathStates tracks what the checker knows about locations in the external
// event. Keys are canonical dotted path strings (".foo[0]"). Unknown paths
// resolve to the unconstrained external-input state.
type pathStates struct {
	root  TypeState
	known map[string]TypeState
}

func newPathStates(root TypeState) *pathStates {
	return &pathStates{root: root, known: map[string]TypeState{}}
}

func (ps *pathStates) clone() *pathStates {
	out := &pathStates{root: ps.root, known: make(map[string]TypeState, len(ps.known))}
	for k, v := range ps.known {
		out.known[k] = v
	}
	return out
}

// merge joins two branch exits: union where both know something, and union
// with the unconstrained state where only one branch learned about a path
// (the other branch may have left any prior value in place).
func (ps *pathStates) merge(other *pathStates) *pathStates {
	out := &pathStates{root: ps.root.Union(other.root), known: map[string]TypeState{}}
	for k, a := range ps.known {
		if b, ok := other.known[k]; ok {
			out.known[k] = a.Union(b)
		} else {
			out.known[k] = a.Union(AnyState())
		}
	}
	for k, b := range other.known {
		if _, ok := ps.known[k]; !ok {
			out.known[k] = b.Union(AnyState())
		}
	}
	return out
}

// resolve returns the known state at path, defaulting to the external
// unconstrained state.
func (ps *pathStates) resolve(p Path) TypeState {
	if len(p) == 0 {
		return ps.root
	}
	if st, ok := ps.known[p.String()]; ok {
		return st
	}
	return AnyState()
}

// assume records the auto-vivification assumption for an ancestor: the
// location is exactly the collection kind its child segment requires. A
// parent already known to be that collection keeps its state (and what is
// known underneath it).
func (ps *pathStates) assume(p Path, required Kind) {
	st := ps.resolve(p)
	if st.Kinds.IsExactly(required) && !st.MaybeAbsent {
		return
	}
	if len(p) == 0 {
		ps.root = StateOf(required)
		return
	}
	ps.known[p.String()] = StateOf(required)
}

// set records the state at path, dropping anything previously known about
// locations underneath it (the write replaced them). Only true descendants
// are dropped: the next byte after the prefix must open a segment, so a
// write to .foo leaves the sibling .foobar alone.
func (ps *pathStates) set(p Path, st TypeState) {
	key := p.String()
	for k := range ps.known {
		if len(k) <= len(key) || !strings.HasPrefix(k, key) {
			continue
		}
		if c := k[len(key)]; c == '.' || c == '[' {
			delete(ps.known, k)
		}
	}
	if len(p) == 0 {
		ps.root = st
		ps.known = map[string]TypeState{}
		return
	}
	ps.known[key] = st
}

// -----------------------------
// Entry
// -----------------------------

// check walks the root block and returns the program's result type-state.
func check(src string, root *Block, opts Options) (TypeState, DiagnosticList) {
	target := opts.Target
	if target.Kinds == 0 {
		// Default external input: an object whose fields may be absent.
		target = StateOf(KindObject)
	}
	c := &checker{
		src:    src,
		reg:    opts.Registry,
		strict: opts.Strict,
		scopes: []map[string]*varBinding{{}},
		paths:  newPathStates(target),
	}
	for name, st := range opts.Variables {
		c.scopes[0][name] = &varBinding{state: st, sub: map[string]TypeState{}}
	}
	result := c.checkBlock(root, false)
	return result, c.diag
}

func (c *checker) errorAt(code Code, span Span, msg, label string) *Diagnostic {
	d := NewError(code, span, msg, label)
	c.diag = append(c.diag, d)
	return d
}

func (c *checker) warnAt(code Code, span Span, msg, label string) *Diagnostic {
	d := NewWarning(code, span, msg, label)
	c.diag = append(c.diag, d)
	return d
}

// -----------------------------
// Scopes
// -----------------------------

func (c *checker) pushScope() { c.scopes = append(c.scopes, map[string]*varBinding{}) }
func (c *checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *checker) lookupVar(name string) (*varBinding, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i][name]; ok {
			return b, true
		}
	}
	return nil, false
}

// bindVar replaces the variable's state in the current scope, shadowing any
// outer binding until the scope ends.
func (c *checker) bindVar(name string, st TypeState) *varBinding {
	b := &varBinding{state: st, sub: map[string]TypeState{}}
	c.scopes[len(c.scopes)-1][name] = b
	return b
}

// -----------------------------
// Blocks and statements
// -----------------------------

// checkBlock walks statements in order. newScope controls whether the block
// opens a variable scope (the root block does not: pre-declared external
// variables live there).
func (c *checker) checkBlock(b *Block, newScope bool) TypeState {
	if newScope {
		c.pushScope()
		defer c.popScope()
	}
	result := StateOf(KindNull)
	unreachableFrom := -1
	for i, e := range b.Exprs {
		if unreachableFrom == i {
			c.warnAt(CodeUnreachable, e.Span(),
				"statements after abort never execute", "unreachable")
		}
		st := c.checkExpr(e)
		if _, isAssign := e.(*Assign); !isAssign {
			if st.Fallible {
				c.unhandledFallible(e)
				st = st.Infallible()
			}
		}
		if _, isAbort := e.(*Abort); isAbort && unreachableFrom < 0 {
			unreachableFrom = i + 1
		}
		result = st
	}
	return result
}

// unhandledFallible reports E103 with the two standard handling forms.
func (c *checker) unhandledFallible(e Expr) {
	text := c.slice(e.Span())
	d := c.errorAt(CodeUnhandledFallible, e.Span(),
		"this expression can fail at runtime and the error is not handled",
		"this expression is fallible")
	if call, ok := e.(*Call); ok && !call.Abort {
		d.WithFix(strings.Replace(text, call.Func+"(", call.Func+"!(", 1))
	}
	d.WithFix(text + " ?? null")
}

func (c *checker) slice(sp Span) string {
	if sp.Start < 0 || sp.End > len(c.src) || sp.Start > sp.End {
		return ""
	}
	return c.src[sp.Start:sp.End]
}

// -----------------------------
// Expressions
// -----------------------------

func (c *checker) checkExpr(e Expr) TypeState {
	switch n := e.(type) {
	case *Literal:
		return StateOf(n.Val.Kind())
	case *ArrayLit:
		st := StateOf(KindArray)
		for _, el := range n.Elems {
			es := c.checkExpr(el)
			if es.Fallible {
				c.unhandledFallible(el)
			}
		}
		return st
	case *ObjectLit:
		st := StateOf(KindObject)
		for _, v := range n.Vals {
			vs := c.checkExpr(v)
			if vs.Fallible {
				c.unhandledFallible(v)
			}
		}
		return st
	case *PathExpr:
		return c.checkPathRead(n)
	case *VarExpr:
		return c.checkVarRead(n)
	case *Assign:
		return c.checkAssign(n)
	case *If:
		return c.checkIf(n)
	case *Call:
		return c.checkCall(n)
	case *Coalesce:
		return c.checkCoalesce(n)
	case *Binary:
		return c.checkBinary(n)
	case *Unary:
		return c.checkUnary(n)
	case *Block:
		return c.checkBlock(n, true)
	case *Abort:
		return StateOf(KindNull)
	default:
		return AnyState()
	}
}

// checkPathRead resolves an event path. Reading under a parent known to be
// an incompatible scalar can never resolve; that is an advisory warning,
// never an error, because the event's true shape is only known at runtime.
func (c *checker) checkPathRead(n *PathExpr) TypeState {
	for i := 1; i < len(n.Path); i++ {
		parent := c.paths.resolve(n.Path[:i])
		c.adviseAbsent(parent, n.Path[i], n.SegSpans[i])
	}
	return c.paths.resolve(n.Path)
}

func (c *checker) adviseAbsent(parent TypeState, seg Segment, span Span) {
	need := seg.requiredKind() | KindNull
	if !parent.MaybeAbsent && !parent.Kinds.Intersects(need) {
		c.warnAt(CodeAbsentPath, span,
			fmt.Sprintf("the parent resolves to a %s, so this segment never matches", parent.Kinds.Name()),
			"this path can not be resolved")
	}
}

func (c *checker) checkVarRead(n *VarExpr) TypeState {
	b, ok := c.lookupVar(n.Name)
	if !ok {
		c.errorAt(CodeUndefinedVariable, n.Sp,
			fmt.Sprintf("variable $%s is not defined", n.Name), "undefined variable")
		return AnyState()
	}
	if len(n.Path) == 0 {
		return b.state
	}
	if st, ok := b.sub[n.Path.String()]; ok {
		return st
	}
	if !b.state.Kinds.Intersects(n.Path[0].requiredKind() | KindNull) {
		c.warnAt(CodeAbsentPath, n.SegSpans[0],
			fmt.Sprintf("$%s resolves to a %s, so this segment never matches", n.Name, b.state.Kinds.Name()),
			"this path can not be resolved")
	}
	return AnyState()
}

// -----------------------------
// Assignment and the path-mutation rule
// -----------------------------

func (c *checker) checkAssign(n *Assign) TypeState {
	val := c.checkExpr(n.Value)
	if val.Fallible {
		c.unhandledFallible(n.Value)
		val = val.Infallible()
	}
	assigned := val.Definite()

	t := n.Target
	if t.Var != "" {
		if len(t.Path) == 0 {
			c.bindVar(t.Var, assigned)
			return assigned
		}
		b, ok := c.lookupVar(t.Var)
		if !ok {
			// Writing through a path into a fresh variable vivifies it.
			b = c.bindVar(t.Var, StateOf(t.Path[0].requiredKind()))
		}
		if !c.checkMutationPath(n, t, true) {
			return assigned
		}
		b.state = StateOf(t.Path[0].requiredKind())
		b.sub[t.Path.String()] = assigned
		return assigned
	}

	// Event target.
	if len(t.Path) == 0 {
		c.paths.set(nil, assigned)
		return assigned
	}
	if !c.checkMutationPath(n, t, false) {
		return assigned
	}
	// Compile-time auto-vivification assumption: every ancestor becomes
	// exactly the collection kind its child segment requires.
	c.paths.assume(nil, t.Path[0].requiredKind())
	for i := 1; i < len(t.Path); i++ {
		c.paths.assume(t.Path[:i], t.Path[i].requiredKind())
	}
	c.paths.set(t.Path, assigned)
	return assigned
}

// checkMutationPath enforces the rule: for each segment, the state of the
// location above it must admit the kind the segment requires. A parent
// whose kind-set is concrete and incompatible (no collection, no null, not
// absent) is rejected at compile time; a permissive parent (Any, absent, or
// already the right collection) is accepted and assumed vivified. isVar
// switches resolution to the variable's sub-path table.
func (c *checker) checkMutationPath(n *Assign, t Target, isVar bool) bool {
	for i := 0; i < len(t.Path); i++ {
		var parent TypeState
		if isVar {
			parent = c.varPrefixState(t, i)
		} else {
			parent = c.paths.resolve(t.Path[:i])
		}
		seg := t.Path[i]
		need := seg.requiredKind()
		if parent.Kinds.Intersects(need|KindNull) || parent.MaybeAbsent || parent.IsAny() {
			continue
		}
		c.rejectMutation(n, t, i, parent)
		return false
	}
	return true
}

// varPrefixState resolves what is known about a variable-rooted prefix.
func (c *checker) varPrefixState(t Target, i int) TypeState {
	b, ok := c.lookupVar(t.Var)
	if !ok {
		return AnyState()
	}
	if i == 0 {
		return b.state
	}
	if st, ok := b.sub[t.Path[:i].String()]; ok {
		return st
	}
	if i == 1 {
		// First hop resolves through the variable's own state... a concrete
		// scalar variable blocks exactly like a concrete scalar event field.
		return b.state
	}
	return AnyState()
}

// rejectMutation emits the E642 diagnostic for segment i of the target:
// primary span on the offending trailing segment, a secondary label naming
// the blocking concrete type on the parent, and the two-line suggested fix
// (reset the parent to an empty collection, then redo the assignment).
func (c *checker) rejectMutation(n *Assign, t Target, i int, parent TypeState) {
	seg := t.Path[i]
	parentPath := t.Path[:i]
	parentText := parentPath.String()
	if t.Var != "" {
		parentText = "$" + t.Var
		if len(parentPath) > 0 {
			parentText += parentPath.String()
		}
	}
	d := c.errorAt(CodePathRejected, t.SegSpans[i],
		fmt.Sprintf("cannot write through %s: the parent is a %s, not an %s",
			seg.String(), parent.Kinds.Name(), seg.requiredKind().Name()),
		"this segment conflicts with the parent's type")
	parentSpan := t.Sp
	if i > 0 {
		parentSpan = t.SegSpans[i-1]
	}
	d.WithSecondary(parentSpan, fmt.Sprintf("%s resolves to a %s", parentText, parent.Kinds.Name()))
	d.WithFix(
		parentText+" = "+seg.requiredLiteral(),
		c.slice(n.Sp),
	)
}

// -----------------------------
// Conditionals
// -----------------------------

func (c *checker) checkIf(n *If) TypeState {
	cond := c.checkExpr(n.Cond)
	if cond.Fallible {
		c.unhandledFallible(n.Cond)
	}
	if !cond.Kinds.Intersects(KindBool) {
		c.errorAt(CodeInvalidArgument, n.Cond.Span(),
			fmt.Sprintf("if condition must be a boolean, this is a %s", cond.Kinds.Name()),
			"not a boolean")
	}

	before := c.paths
	thenGuard, elseGuard := c.guardNarrowing(n.Cond)

	c.paths = before.clone()
	thenGuard(c)
	thenState := c.checkBlock(n.Then, true)
	thenPaths := c.paths

	var elseState TypeState
	var elsePaths *pathStates
	if n.Else != nil {
		c.paths = before.clone()
		elseGuard(c)
		elseState = c.checkBlock(n.Else, true)
		elsePaths = c.paths
	} else {
		elseState = StateOf(KindNull)
		elsePaths = before.clone()
	}

	// Merge point: the exit state is the union of both branches, never
	// just one of them.
	c.paths = thenPaths.merge(elsePaths)
	return thenState.Union(elseState)
}

// guardNarrowing recognizes type-guard conditions (`is_string(.field)`,
// `exists(.field)`) and returns the narrowing to apply inside each branch.
func (c *checker) guardNarrowing(cond Expr) (then func(*checker), els func(*checker)) {
	nop := func(*checker) {}
	call, ok := cond.(*Call)
	if !ok || c.reg == nil || len(call.Args) != 1 {
		return nop, nop
	}
	f, ok := c.reg.Lookup(call.Func)
	if !ok {
		return nop, nop
	}
	pe, ok := call.Args[0].Val.(*PathExpr)
	if !ok {
		return nop, nop
	}
	path := pe.Path
	if f.Predicate != 0 {
		pred := f.Predicate
		return func(c *checker) {
				st := c.paths.resolve(path).Narrow(pred)
				c.paths.set(path, st)
			}, func(c *checker) {
				st := c.paths.resolve(path)
				if rest := st.Kinds &^ pred; rest != 0 {
					st.Kinds = rest
					c.paths.set(path, st)
				}
			}
	}
	if f.Name == "exists" {
		return func(c *checker) {
			st := c.paths.resolve(path).Definite()
			c.paths.set(path, st)
		}, nop
	}
	return nop, nop
}

// -----------------------------
// Calls
// -----------------------------

func (c *checker) checkCall(n *Call) TypeState {
	if c.reg == nil {
		c.errorAt(CodeUndefinedFunction, n.FuncSpan,
			"no function registry is configured", "undefined function")
		return AnyState()
	}
	f, ok := c.reg.Lookup(n.Func)
	if !ok {
		c.errorAt(CodeUndefinedFunction, n.FuncSpan,
			fmt.Sprintf("undefined function %s", n.Func), "undefined function")
		// Still walk the arguments for their own findings.
		for _, a := range n.Args {
			c.checkExpr(a.Val)
		}
		return AnyState()
	}

	// Bind arguments to parameters: positional first, then named.
	bound := map[string]TypeState{}
	spans := map[string]Span{}
	pos := 0
	for _, a := range n.Args {
		st := c.checkExpr(a.Val)
		if st.Fallible {
			c.unhandledFallible(a.Val)
			st = st.Infallible()
		}
		name := a.Name
		if name == "" {
			if pos >= len(f.Params) {
				c.errorAt(CodeUnknownArgument, a.Sp,
					fmt.Sprintf("%s takes %d parameters", f.Name, len(f.Params)),
					"unexpected argument")
				continue
			}
			name = f.Params[pos].Name
			pos++
		} else if !paramDeclared(f, name) {
			c.errorAt(CodeUnknownArgument, a.Sp,
				fmt.Sprintf("%s has no parameter named %q", f.Name, name),
				"unknown argument name")
			continue
		}
		if _, dup := bound[name]; dup {
			c.errorAt(CodeUnknownArgument, a.Sp,
				fmt.Sprintf("argument %q supplied twice", name), "duplicate argument")
			continue
		}
		bound[name] = st
		spans[name] = a.Sp
	}

	// Validate against the declared signature.
	runtimeChecked := false
	ordered := make([]TypeState, len(f.Params))
	for i, p := range f.Params {
		st, supplied := bound[p.Name]
		if !supplied {
			if p.Required {
				c.errorAt(CodeMissingArgument, n.Sp,
					fmt.Sprintf("%s requires the %q argument", f.Name, p.Name),
					fmt.Sprintf("missing argument %q", p.Name))
				ordered[i] = StateOf(p.Kinds)
				continue
			}
			ordered[i] = StateOf(p.Default.Kind())
			continue
		}
		ordered[i] = st
		switch {
		case !st.Kinds.Intersects(p.Kinds):
			c.errorAt(CodeInvalidArgument, spans[p.Name],
				fmt.Sprintf("%s's %q argument must be %s, this is a %s",
					f.Name, p.Name, p.Kinds.Name(), st.Kinds.Name()),
				"this can never satisfy the parameter")
		case !p.Kinds.Contains(st.Kinds):
			// Partial overlap: the runtime validator still guards the call.
			runtimeChecked = true
			msg := fmt.Sprintf("%s's %q argument must be %s, this might be a %s",
				f.Name, p.Name, p.Kinds.Name(), (st.Kinds &^ p.Kinds).Name())
			if c.strict {
				c.errorAt(CodePartialArgument, spans[p.Name], msg, "not guaranteed here")
			} else {
				c.warnAt(CodePartialArgument, spans[p.Name], msg, "checked at runtime")
			}
		}
	}

	result := f.resultState(ordered)
	result.Fallible = result.Fallible || f.Fallible || runtimeChecked
	if n.Abort {
		if !result.Fallible {
			c.warnAt(CodeUselessAbort, n.FuncSpan,
				fmt.Sprintf("%s can not fail, the `!` has no effect", f.Name), "infallible call")
		}
		result = result.Infallible()
	}
	return result
}

func paramDeclared(f *Function, name string) bool {
	for _, p := range f.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// -----------------------------
// Operators
// -----------------------------

func (c *checker) checkCoalesce(n *Coalesce) TypeState {
	lhs := c.checkExpr(n.Lhs)
	if !lhs.Fallible && !lhs.MaybeAbsent {
		c.warnAt(CodeUselessCoalesce, n.Lhs.Span(),
			"the left-hand side can neither fail nor be absent", "infallible expression")
	}
	rhs := c.checkExpr(n.Rhs)
	out := lhs.Infallible().Definite().Union(rhs)
	out.Fallible = rhs.Fallible
	return out
}

func (c *checker) checkBinary(n *Binary) TypeState {
	lhs := c.checkExpr(n.Lhs)
	rhs := c.checkExpr(n.Rhs)
	fallible := lhs.Fallible || rhs.Fallible

	switch n.Op {
	case OpEq, OpNe:
		return TypeState{Kinds: KindBool, Fallible: fallible}
	case OpAnd, OpOr:
		c.requireOperand(n, lhs, rhs, KindBool, "boolean")
		guarded := !lhs.Kinds.IsExactly(KindBool) || !rhs.Kinds.IsExactly(KindBool)
		return TypeState{Kinds: KindBool, Fallible: fallible || guarded}
	case OpLt, OpLe, OpGt, OpGe:
		c.requireOperand(n, lhs, rhs, KindNumber, "number")
		guarded := !KindNumber.Contains(lhs.Kinds) || !KindNumber.Contains(rhs.Kinds)
		return TypeState{Kinds: KindBool, Fallible: fallible || guarded}
	case OpAdd:
		allowed := KindNumber | KindString
		c.requireOperand(n, lhs, rhs, allowed, "number or string")
		kinds := addResult(lhs.Kinds, rhs.Kinds)
		guarded := !allowed.Contains(lhs.Kinds) || !allowed.Contains(rhs.Kinds) ||
			(lhs.Kinds.Intersects(KindString) != rhs.Kinds.Intersects(KindString) &&
				(lhs.Kinds.Intersects(KindString) || rhs.Kinds.Intersects(KindString)))
		return TypeState{Kinds: kinds, Fallible: fallible || guarded}
	case OpSub, OpMul:
		c.requireOperand(n, lhs, rhs, KindNumber, "number")
		guarded := !KindNumber.Contains(lhs.Kinds) || !KindNumber.Contains(rhs.Kinds)
		return TypeState{Kinds: numResult(lhs.Kinds, rhs.Kinds), Fallible: fallible || guarded}
	case OpDiv:
		c.requireOperand(n, lhs, rhs, KindNumber, "number")
		// Division is always fallible: the divisor may be zero.
		return TypeState{Kinds: KindFloat, Fallible: true}
	default:
		return AnyState()
	}
}

// requireOperand rejects operands that can never hold an allowed kind.
func (c *checker) requireOperand(n *Binary, lhs, rhs TypeState, allowed Kind, what string) {
	if !lhs.Kinds.Intersects(allowed) {
		c.errorAt(CodeInvalidArgument, n.Lhs.Span(),
			fmt.Sprintf("%q needs a %s operand, this is a %s", n.Op.String(), what, lhs.Kinds.Name()),
			"invalid operand")
	}
	if !rhs.Kinds.Intersects(allowed) {
		c.errorAt(CodeInvalidArgument, n.Rhs.Span(),
			fmt.Sprintf("%q needs a %s operand, this is a %s", n.Op.String(), what, rhs.Kinds.Name()),
			"invalid operand")
	}
}

// addResult computes the kind-set of `+`: numeric addition and string
// concatenation, resolved as far as the operands allow.
func addResult(a, b Kind) Kind {
	var out Kind
	if a.Intersects(KindString) && b.Intersects(KindString) {
		out |= KindString
	}
	if a.Intersects(KindNumber) && b.Intersects(KindNumber) {
		out |= numResult(a&KindNumber, b&KindNumber)
	}
	if out == 0 {
		out = KindString | KindNumber
	}
	return out
}

// numResult: integer op integer stays integer, anything touching float is
// float, undecided stays the pair.
func numResult(a, b Kind) Kind {
	if a.IsExactly(KindInt) && b.IsExactly(KindInt) {
		return KindInt
	}
	if a.IsExactly(KindFloat) || b.IsExactly(KindFloat) {
		return KindFloat
	}
	return KindNumber
}

func (c *checker) checkUnary(n *Unary) TypeState {
	op := c.checkExpr(n.Operand)
	switch n.Op {
	case OpNot:
		if !op.Kinds.Intersects(KindBool) {
			c.errorAt(CodeInvalidArgument, n.Operand.Span(),
				fmt.Sprintf("\"!\" needs a boolean operand, this is a %s", op.Kinds.Name()),
				"invalid operand")
		}
		return TypeState{Kinds: KindBool, Fallible: op.Fallible || !op.Kinds.IsExactly(KindBool)}
	case OpNeg:
		if !op.Kinds.Intersects(KindNumber) {
			c.errorAt(CodeInvalidArgument, n.Operand.Span(),
				fmt.Sprintf("\"-\" needs a numeric operand, this is a %s", op.Kinds.Name()),
				"invalid operand")
		}
		kinds := op.Kinds & KindNumber
		if kinds == 0 {
			kinds = KindNumber
		}
		return TypeState{Kinds: kinds, Fallible: op.Fallible || !KindNumber.Contains(op.Kinds)}
	default:
		return AnyState()
	}
}
