package vrl

import (
	"strings"
	"testing"
)

func Test_Builtin_ParseJSON_Preserves_Order_And_Numbers(t *testing.T) {
	src := `doc = parse_json!("{\"z\": 1, \"a\": 2.5, \"nested\": {\"k\": [true, null]}}")`
	_, event := evalT(t, src, `{}`)
	doc, ok := pathGet(event, Path{FieldSeg("doc")})
	if !ok || doc.Tag != VTObject {
		t.Fatalf("doc = %v", doc)
	}
	o := doc.Data.(*Object)
	if o.Keys[0] != "z" || o.Keys[1] != "a" || o.Keys[2] != "nested" {
		t.Fatalf("key order = %v", o.Keys)
	}
	z, _ := o.Get("z")
	a, _ := o.Get("a")
	if z.Tag != VTInt || a.Tag != VTFloat {
		t.Fatalf("number kinds: z=%s a=%s", z.KindName(), a.KindName())
	}
}

func Test_Builtin_ParseJSON_Failures(t *testing.T) {
	rerr, _ := evalErr(t, `parse_json!("{oops")`, `{}`)
	if !rerr.Aborted() {
		t.Fatalf("got %v", rerr)
	}
	rerr, _ = evalErr(t, `parse_json!("{} trailing")`, `{}`)
	if !rerr.Aborted() {
		t.Fatalf("trailing data should fail, got %v", rerr)
	}
}

func Test_Builtin_EncodeJSON_Roundtrip(t *testing.T) {
	src := `out = encode_json({"z": 1, "a": [true, null, "s"], "f": 1.5})`
	result, _ := evalT(t, src, `{}`)
	want := `{"z":1,"a":[true,null,"s"],"f":1.5}`
	if result.Data.(string) != want {
		t.Fatalf("encode_json = %s, want %s", result, want)
	}
}

func Test_Builtin_EncodeJSON_Pretty(t *testing.T) {
	result, _ := evalT(t, `encode_json({"a": 1}, pretty: true)`, `{}`)
	if !strings.Contains(result.Data.(string), "\n  \"a\": 1\n") {
		t.Fatalf("pretty output = %q", result.Data.(string))
	}
}

func Test_Builtin_Timestamps(t *testing.T) {
	src := `$ts = parse_timestamp!("2021-03-04T05:06:07Z")
y = format_timestamp!($ts, format: "2006-01-02")
u = to_unix_timestamp!($ts)
ms = to_unix_timestamp!($ts, unit: "milliseconds")`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{
		"y": "2021-03-04",
		"u": 1614834367,
		"ms": 1614834367000
	}`)
}

func Test_Builtin_Timestamp_Literal_Flows_Through(t *testing.T) {
	result, _ := evalT(t, `format_timestamp!(t'2020-01-02T03:04:05Z', format: "15:04")`, `{}`)
	if result.Data.(string) != "03:04" {
		t.Fatalf("formatted = %s", result)
	}
}

func Test_Builtin_ParseInt_Bases(t *testing.T) {
	src := `d = parse_int!("42")
h = parse_int!("ff", base: 16)
o = parse_int!("17", base: 8)`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"d": 42, "h": 255, "o": 15}`)
}

func Test_Builtin_ParseKeyValue(t *testing.T) {
	src := `kv = parse_key_value!("a=1 b=\"quoted\" c=3")
csv = parse_key_value!("x:1,y:2", key_value_delimiter: ":", field_delimiter: ",")`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{
		"kv": {"a": "1", "b": "quoted", "c": "3"},
		"csv": {"x": "1", "y": "2"}
	}`)

	rerr, _ := evalErr(t, `parse_key_value!("no_delimiter_here")`, `{}`)
	if !rerr.Aborted() {
		t.Fatalf("field without delimiter should fail, got %v", rerr)
	}
}
