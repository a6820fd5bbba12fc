package vrl

import "testing"

func Test_Builtin_Length_All_Shapes(t *testing.T) {
	_, event := evalT(t, `s = length("héllo")
a = length([1, 2, 3])
o = length({"k": 1})`, `{}`)
	wantEvent(t, event, `{"s": 6, "a": 3, "o": 1}`)
}

func Test_Builtin_Merge_Shallow_And_Deep(t *testing.T) {
	src := `flat = merge({"a": 1, "n": {"x": 1}}, {"n": {"y": 2}})
deep = merge({"a": 1, "n": {"x": 1}}, {"n": {"y": 2}}, deep: true)`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{
		"flat": {"a": 1, "n": {"y": 2}},
		"deep": {"a": 1, "n": {"x": 1, "y": 2}}
	}`)
}

func Test_Builtin_Keys_And_Values_Keep_Order(t *testing.T) {
	src := `k = keys({"z": 1, "a": 2})
v = values({"z": 1, "a": 2})`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"k": ["z", "a"], "v": [1, 2]}`)
}

func Test_Builtin_Type_Guards(t *testing.T) {
	src := `a = is_string("x")
b = is_string(1)
c = is_integer(1)
d = is_float(1.5)
e = is_null(null)
f = is_array([])
g = is_object({})`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"a": true, "b": false, "c": true, "d": true, "e": true, "f": true, "g": true}`)
}

func Test_Builtin_Conversions(t *testing.T) {
	src := `a = to_int!("42")
b = to_int!(3.9)
c = to_float!("2.5")
d = to_bool!("yes")
e = to_string(17)
f = to_string(null)`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"a": 42, "b": 3, "c": 2.5, "d": true, "e": "17", "f": ""}`)
}

func Test_Builtin_Conversion_Failures(t *testing.T) {
	rerr, _ := evalErr(t, `to_int!("nope")`, `{}`)
	if !rerr.Aborted() {
		t.Fatalf("got %v", rerr)
	}
	result, _ := evalT(t, `to_float("x") ?? -1.0`, `{}`)
	if result.Data.(float64) != -1.0 {
		t.Fatalf("fallback = %s", result)
	}
}

func Test_Builtin_Rounding(t *testing.T) {
	src := `a = round(2.5)
b = floor(2.9)
c = ceil(2.1)
d = round(2.444, precision: 2)
e = round(7)`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"a": 3, "b": 2, "c": 3, "d": 2.44, "e": 7}`)
}

func Test_Builtin_Now_Is_A_Timestamp(t *testing.T) {
	result, _ := evalT(t, "now()", `{}`)
	if result.Tag != VTTimestamp {
		t.Fatalf("now() = %s", result.KindName())
	}
}
