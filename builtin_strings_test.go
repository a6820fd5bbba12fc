package vrl

import "testing"

func Test_Builtin_Strings_Case_And_Trim(t *testing.T) {
	src := `a = downcase("MiXeD")
b = upcase("MiXeD")
c = strip_whitespace("  x \t")`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"a": "mixed", "b": "MIXED", "c": "x"}`)
}

func Test_Builtin_Strings_Split_And_Join(t *testing.T) {
	src := `a = split("a,b,c", ",")
b = split("a,b,c", ",", limit: 2)
c = split("a1b22c", r'\d+')
d = join!(["x", "y"], separator: "-")`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{
		"a": ["a", "b", "c"],
		"b": ["a", "b,c"],
		"c": ["a", "b", "c"],
		"d": "x-y"
	}`)
}

func Test_Builtin_Strings_Join_Rejects_NonStrings(t *testing.T) {
	rerr, _ := evalErr(t, `join!([1])`, `{}`)
	if !rerr.Aborted() {
		t.Fatalf("got %v", rerr)
	}
}

func Test_Builtin_Strings_Predicates(t *testing.T) {
	src := `a = contains("Hello", "ell")
b = contains("Hello", "ELL")
c = contains("Hello", "ELL", case_sensitive: false)
d = starts_with("Hello", "He")
e = ends_with("Hello", "lo")
f = match("abc123", r'\d+')
g = match("abc", r'^\d+$')`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"a": true, "b": false, "c": true, "d": true, "e": true, "f": true, "g": false}`)
}

func Test_Builtin_Strings_Replace(t *testing.T) {
	src := `a = replace("aaa", "a", "b")
b = replace("aaa", "a", "b", count: 1)
c = replace("a1b2", r'\d', "#")`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"a": "bbb", "b": "baa", "c": "a#b#"}`)
}

func Test_Builtin_Strings_Truncate_Is_Rune_Safe(t *testing.T) {
	src := `a = truncate("héllo", 3)
b = truncate("hi", 10)
c = truncate("abcdef", 3, suffix: "...")`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"a": "hél", "b": "hi", "c": "abc..."}`)
}
