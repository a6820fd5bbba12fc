package vrl

import "testing"

func Test_Builtin_ParseURL(t *testing.T) {
	src := `u = parse_url!("https://example.com:8443/a%20b?x=1&x=2&y=z#frag")`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{
		"u": {
			"scheme": "https",
			"host": "example.com",
			"port": 8443,
			"path": "/a%20b",
			"query": {"x": ["1", "2"], "y": ["z"]},
			"fragment": "frag"
		}
	}`)
}

func Test_Builtin_ParseURL_Omits_Absent_Parts(t *testing.T) {
	src := `u = parse_url!("http://example.com/")`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{
		"u": {"scheme": "http", "host": "example.com", "path": "/", "query": {}}
	}`)
}

func Test_Builtin_QueryString_Both_Directions(t *testing.T) {
	src := `q = parse_query_string!("?a=1&b=x%20y")
s = encode_query_string!({"b": "x y", "a": ["1", "2"]})`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{
		"q": {"a": ["1"], "b": ["x y"]},
		"s": "a=1&a=2&b=x+y"
	}`)
}

func Test_Builtin_QueryString_Rejects_Bad_Values(t *testing.T) {
	rerr, _ := evalErr(t, `encode_query_string!({"a": 1})`, `{}`)
	if !rerr.Aborted() {
		t.Fatalf("got %v", rerr)
	}
}

func Test_Builtin_Percent_Encoding(t *testing.T) {
	src := `enc = encode_percent("a b&c")
dec = decode_percent!("a+b%26c")`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"enc": "a+b%26c", "dec": "a b&c"}`)

	rerr, _ := evalErr(t, `decode_percent!("%zz")`, `{}`)
	if !rerr.Aborted() {
		t.Fatalf("got %v", rerr)
	}
}
