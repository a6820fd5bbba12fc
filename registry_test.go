package vrl

import (
	"strings"
	"testing"
)

func noopFn(name string) *Function {
	return &Function{
		Name:   name,
		Params: []Param{{Name: "value", Kinds: KindAny, Required: true}},
		Impl:   func(c FuncCall) (Value, error) { return c.Arg("value"), nil },
	}
}

func Test_Registry_Duplicate_Registration_Fails(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(noopFn("dup")); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	err := r.Register(noopFn("dup"))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("duplicate should fail, got %v", err)
	}
}

func Test_Registry_MustRegister_Panics_On_Violation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustRegister should panic on duplicate")
		}
	}()
	r := NewRegistry()
	r.MustRegister(noopFn("dup"))
	r.MustRegister(noopFn("dup"))
}

func Test_Registry_Rejects_Malformed_Signatures(t *testing.T) {
	r := NewRegistry()
	impl := func(FuncCall) (Value, error) { return Null, nil }

	bad := []*Function{
		{Name: "", Impl: impl},
		{Name: "no_impl"},
		{Name: "empty_param", Params: []Param{{Name: "", Kinds: KindAny}}, Impl: impl},
		{Name: "no_kinds", Params: []Param{{Name: "p"}}, Impl: impl},
		{Name: "dup_param", Params: []Param{
			{Name: "p", Kinds: KindAny, Required: true},
			{Name: "p", Kinds: KindAny, Required: true},
		}, Impl: impl},
		{Name: "required_after_optional", Params: []Param{
			{Name: "a", Kinds: KindAny},
			{Name: "b", Kinds: KindAny, Required: true},
		}, Impl: impl},
	}
	for _, f := range bad {
		if err := r.Register(f); err == nil {
			t.Fatalf("registering %q should fail", f.Name)
		}
	}
}

func Test_Registry_Lookup_And_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(noopFn("zeta"))
	r.MustRegister(noopFn("alpha"))

	if _, ok := r.Lookup("zeta"); !ok {
		t.Fatalf("lookup failed")
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Fatalf("lookup of unknown name should fail")
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("names = %v", names)
	}
}

func Test_Registry_Runtime_Validation_And_Defaults(t *testing.T) {
	f := &Function{
		Name: "f",
		Params: []Param{
			{Name: "s", Kinds: KindString, Required: true},
			{Name: "n", Kinds: KindInt, Default: Int(7)},
		},
		Impl: func(c FuncCall) (Value, error) { return c.Arg("n"), nil },
	}

	args := map[string]Value{"s": Str("ok")}
	f.bindDefaults(args)
	if args["n"].Data.(int64) != 7 {
		t.Fatalf("default not bound: %v", args["n"])
	}
	if err := f.validateRuntime(args); err != nil {
		t.Fatalf("valid args rejected: %v", err)
	}

	args["s"] = Int(3)
	err := f.validateRuntime(args)
	if err == nil || err.Kind != ErrTypeMismatch {
		t.Fatalf("kind violation should be a type mismatch, got %v", err)
	}
}

func Test_Registry_Default_Library_Is_Complete(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{
		"exists", "del", "length", "merge", "is_string", "to_int", "now",
		"downcase", "upcase", "split", "join", "replace", "match",
		"parse_json", "encode_json", "parse_timestamp", "format_timestamp",
		"md5", "sha2", "hmac", "encode_base64", "decode_base64", "uuid_v4",
		"encode_gzip", "decode_gzip", "encode_zlib", "decode_zlib",
		"parse_url", "parse_query_string", "encode_query_string",
		"encode_percent", "decode_percent",
	} {
		if _, ok := r.Lookup(name); !ok {
			t.Fatalf("stock library is missing %s", name)
		}
	}
}
