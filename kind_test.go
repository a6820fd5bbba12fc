package vrl

import (
	"math/rand"
	"testing"
)

func randomState(rng *rand.Rand) TypeState {
	return TypeState{
		Kinds:       Kind(rng.Intn(int(KindAny))) + 1,
		MaybeAbsent: rng.Intn(2) == 0,
		Fallible:    rng.Intn(2) == 0,
	}
}

func Test_Kind_Union_Laws(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		a, b, c := randomState(rng), randomState(rng), randomState(rng)

		if got := a.Union(a); got != a {
			t.Fatalf("union not idempotent: %v != %v", got, a)
		}
		if ab, ba := a.Union(b), b.Union(a); ab != ba {
			t.Fatalf("union not commutative: %v != %v", ab, ba)
		}
		if l, r := a.Union(b).Union(c), a.Union(b.Union(c)); l != r {
			t.Fatalf("union not associative: %v != %v", l, r)
		}
	}
}

func Test_Kind_Narrow_Intersects_And_Clears_Absence(t *testing.T) {
	s := TypeState{Kinds: KindString | KindInt, MaybeAbsent: true}
	n := s.Narrow(KindString)
	if n.Kinds != KindString {
		t.Fatalf("narrow kept %s", n.Kinds.Name())
	}
	if n.MaybeAbsent {
		t.Fatalf("narrow kept the absence flag")
	}

	if never := s.Narrow(KindBool); !never.IsNever() {
		t.Fatalf("narrowing to a disjoint kind should be never, got %s", never.Kinds.Name())
	}
}

func Test_Kind_Names(t *testing.T) {
	cases := map[Kind]string{
		KindString:            "string",
		KindAny:               "any",
		KindInt | KindFloat:   "integer or float",
		KindNull | KindObject: "null or object",
		0:                     "never",
	}
	for k, want := range cases {
		if got := k.Name(); got != want {
			t.Fatalf("Name(%d) = %q, want %q", k, got, want)
		}
	}
}

func Test_Kind_Contains_And_Intersects(t *testing.T) {
	if !KindAny.Contains(KindScalar) {
		t.Fatalf("any should contain scalar")
	}
	if KindScalar.Intersects(KindObject) {
		t.Fatalf("scalar should not intersect object")
	}
	if !KindNumber.IsExactly(KindInt | KindFloat) {
		t.Fatalf("number should be exactly int|float")
	}
	if !KindBool.IsSingle() || KindNumber.IsSingle() {
		t.Fatalf("IsSingle misbehaves")
	}
}
