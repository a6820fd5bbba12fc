package vrl

import "testing"

func Test_Path_Parse_And_Render(t *testing.T) {
	cases := []string{".foo", ".foo.bar", ".foo[3]", ".foo[0].bar", ".(a|b).c", "."}
	for _, s := range cases {
		p, err := ParsePath(s)
		if err != nil {
			t.Fatalf("ParsePath(%q): %v", s, err)
		}
		if got := p.String(); got != s {
			t.Fatalf("roundtrip %q -> %q", s, got)
		}
	}
}

func Test_Path_Parse_Rejects_Malformed(t *testing.T) {
	for _, s := range []string{".foo[", ".foo[x]", ".foo[-1]", ".(a|)"} {
		if _, err := ParsePath(s); err == nil {
			t.Fatalf("ParsePath(%q) should fail", s)
		}
	}
}

func Test_Path_Get_Distinguishes_Missing(t *testing.T) {
	event := decodeT(t, `{"a": {"b": [10, 20]}, "s": "x"}`)

	get := func(s string) (Value, bool) {
		p, err := ParsePath(s)
		if err != nil {
			t.Fatalf("%v", err)
		}
		return pathGet(event, p)
	}

	if v, ok := get(".a.b[1]"); !ok || v.Data.(int64) != 20 {
		t.Fatalf("nested read failed: %v %v", v, ok)
	}
	if _, ok := get(".a.missing"); ok {
		t.Fatalf("missing field should not resolve")
	}
	if _, ok := get(".a.b[9]"); ok {
		t.Fatalf("out-of-range index should not resolve")
	}
	if _, ok := get(".s.deep"); ok {
		t.Fatalf("field access through a string should not resolve")
	}
	if v, ok := get("."); !ok || !v.Equal(event) {
		t.Fatalf("root read failed")
	}
}

func Test_Path_Get_Coalesce_Skips_Null_And_Missing(t *testing.T) {
	event := decodeT(t, `{"a": null, "b": "hit"}`)
	p, _ := ParsePath(".(a|b)")
	v, ok := pathGet(event, p)
	if !ok || v.Data.(string) != "hit" {
		t.Fatalf("coalesce read got %v %v", v, ok)
	}

	p2, _ := ParsePath(".(x|y)")
	if _, ok := pathGet(event, p2); ok {
		t.Fatalf("coalesce with no present alternative should miss")
	}
}

func Test_Path_Set_Vivifies_And_Pads(t *testing.T) {
	event := Obj(NewObject())
	p, _ := ParsePath(".a.b[2]")
	if err := pathSet(&event, p, Str("x")); err != nil {
		t.Fatalf("pathSet: %v", err)
	}
	wantEvent(t, event, `{"a": {"b": [null, null, "x"]}}`)
}

func Test_Path_Set_Rejects_Scalar_Parent(t *testing.T) {
	event := decodeT(t, `{"a": "scalar"}`)
	p, _ := ParsePath(".a.b")
	err := pathSet(&event, p, Int(1))
	if err == nil || err.Kind != ErrTypeMismatch {
		t.Fatalf("expected a type mismatch, got %v", err)
	}
	wantEvent(t, event, `{"a": "scalar"}`)
}

func Test_Path_Set_Coalesce_Targets_Existing_Alternative(t *testing.T) {
	event := decodeT(t, `{"b": 1}`)
	p, _ := ParsePath(".(a|b)")
	if err := pathSet(&event, p, Int(2)); err != nil {
		t.Fatalf("pathSet: %v", err)
	}
	wantEvent(t, event, `{"b": 2}`)

	fresh := Obj(NewObject())
	if err := pathSet(&fresh, p, Int(3)); err != nil {
		t.Fatalf("pathSet: %v", err)
	}
	wantEvent(t, fresh, `{"a": 3}`)
}

func Test_Path_Delete_Returns_Removed(t *testing.T) {
	event := decodeT(t, `{"a": {"b": 1, "c": 2}, "xs": [1, 2, 3]}`)

	p, _ := ParsePath(".a.b")
	if old := pathDelete(&event, p); old.Data.(int64) != 1 {
		t.Fatalf("delete returned %v", old)
	}
	p2, _ := ParsePath(".xs[1]")
	if old := pathDelete(&event, p2); old.Data.(int64) != 2 {
		t.Fatalf("index delete returned %v", old)
	}
	wantEvent(t, event, `{"a": {"c": 2}, "xs": [1, 3]}`)

	p3, _ := ParsePath(".nope.deep")
	if old := pathDelete(&event, p3); old.Tag != VTNull {
		t.Fatalf("deleting a missing path should return null, got %v", old)
	}

	root := Path{}
	if old := pathDelete(&event, root); old.Tag != VTObject {
		t.Fatalf("root delete should return the old event")
	}
	wantEvent(t, event, `{}`)
}
