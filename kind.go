// kind.go
//
// The static type-state lattice. A Kind is a bitset of possible runtime
// value kinds; a TypeState is a Kind plus the two analysis flags the checker
// threads through the program: whether the expression's location may be
// absent, and whether evaluating it can raise a runtime error.
//
// The lattice operations are tiny and total: Union is bitwise-or with both
// flags or'd, Narrow is intersection used after runtime-type guards. The
// empty kind-set is only ever a transient artifact of unreachable-code
// analysis; every finalized expression carries a non-empty set.
package vrl

import "strings"

// Kind is a bitset over the nine value kinds.
type Kind uint16

const (
	KindNull Kind = 1 << iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTimestamp
	KindRegex
	KindArray
	KindObject

	// KindAny is the unconstrained top: all kinds possible.
	KindAny = KindNull | KindBool | KindInt | KindFloat | KindString |
		KindTimestamp | KindRegex | KindArray | KindObject

	// KindScalar covers every non-collection kind.
	KindScalar = KindAny &^ (KindArray | KindObject)

	// KindNumber is the arithmetic domain.
	KindNumber = KindInt | KindFloat
)

// Contains reports whether every kind in sub is possible under k.
func (k Kind) Contains(sub Kind) bool { return k&sub == sub }

// Intersects reports whether k and other share any kind.
func (k Kind) Intersects(other Kind) bool { return k&other != 0 }

// IsExactly reports whether k is precisely the single kind want.
func (k Kind) IsExactly(want Kind) bool { return k == want }

// IsSingle reports whether exactly one kind bit is set.
func (k Kind) IsSingle() bool { return k != 0 && k&(k-1) == 0 }

// Name renders the kind set for diagnostics: a single kind renders as its
// plain name ("string"), the full set as "any", and mixtures join with
// " or " in declaration order.
func (k Kind) Name() string {
	if k == KindAny {
		return "any"
	}
	names := []struct {
		bit  Kind
		name string
	}{
		{KindNull, "null"},
		{KindBool, "boolean"},
		{KindInt, "integer"},
		{KindFloat, "float"},
		{KindString, "string"},
		{KindTimestamp, "timestamp"},
		{KindRegex, "regex"},
		{KindArray, "array"},
		{KindObject, "object"},
	}
	var parts []string
	for _, n := range names {
		if k&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "never"
	}
	return strings.Join(parts, " or ")
}

// TypeState is the checker's approximation of an expression at a program
// point: the set of kinds it may produce, whether its location may not
// resolve at all, and whether evaluating it can fail at runtime.
type TypeState struct {
	Kinds       Kind
	MaybeAbsent bool
	Fallible    bool
}

// StateOf returns an infallible, definitely-present state of the given kinds.
func StateOf(k Kind) TypeState { return TypeState{Kinds: k} }

// AnyState is the unconstrained external-input state: any kind, possibly
// absent, infallible to read.
func AnyState() TypeState { return TypeState{Kinds: KindAny, MaybeAbsent: true} }

// Union joins two branch states: kinds union, flags or'd. It is commutative,
// associative, and idempotent, which the merge points (if/else) rely on.
func (s TypeState) Union(other TypeState) TypeState {
	return TypeState{
		Kinds:       s.Kinds | other.Kinds,
		MaybeAbsent: s.MaybeAbsent || other.MaybeAbsent,
		Fallible:    s.Fallible || other.Fallible,
	}
}

// Narrow intersects the kind-set with a guard's predicate kind, for use
// inside the guarded branch only. Narrowing to a kind the state cannot hold
// yields the transient empty set (the branch is unreachable).
func (s TypeState) Narrow(predicate Kind) TypeState {
	return TypeState{
		Kinds:       s.Kinds & predicate,
		MaybeAbsent: false,
		Fallible:    s.Fallible,
	}
}

// WithFallible returns a copy with the fallible flag set as given.
func (s TypeState) WithFallible(f bool) TypeState {
	s.Fallible = f
	return s
}

// Infallible returns a copy with the fallible flag cleared; used when an
// error-handling construct (`!`, `??`) discharges the failure path.
func (s TypeState) Infallible() TypeState { return s.WithFallible(false) }

// Definite returns a copy that is guaranteed present.
func (s TypeState) Definite() TypeState {
	s.MaybeAbsent = false
	return s
}

// IsAny reports an unconstrained kind-set.
func (s TypeState) IsAny() bool { return s.Kinds == KindAny }

// IsNever reports the transient empty kind-set.
func (s TypeState) IsNever() bool { return s.Kinds == 0 }
