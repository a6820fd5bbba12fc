package vrl

import "testing"

func Test_Builtin_Gzip_Roundtrip(t *testing.T) {
	src := `back = decode_gzip!(encode_gzip("the same bytes out"))`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"back": "the same bytes out"}`)
}

func Test_Builtin_Zlib_Roundtrip(t *testing.T) {
	src := `back = decode_zlib!(encode_zlib("the same bytes out"))`
	_, event := evalT(t, src, `{}`)
	wantEvent(t, event, `{"back": "the same bytes out"}`)
}

func Test_Builtin_Decompress_Rejects_Garbage(t *testing.T) {
	for _, prog := range []string{`decode_gzip!("not gzip")`, `decode_zlib!("not zlib")`} {
		rerr, _ := evalErr(t, prog, `{}`)
		if !rerr.Aborted() {
			t.Fatalf("%s: got %v", prog, rerr)
		}
	}
}
