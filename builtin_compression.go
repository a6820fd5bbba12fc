// builtin_compression.go
package vrl

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
)

// registerCompressionFns installs the gzip and zlib codecs. Compressed
// output is binary carried in a string; strings hold arbitrary bytes.
func registerCompressionFns(r *Registry) {
	r.MustRegister(&Function{
		Name:   "encode_gzip",
		Params: []Param{{Name: "value", Kinds: KindString, Required: true}},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			zw.Write([]byte(c.Arg("value").Data.(string)))
			if err := zw.Close(); err != nil {
				return Null, fmt.Errorf("encode_gzip: %v", err)
			}
			return Str(buf.String()), nil
		},
		Doc: "encode_gzip(value) -> string\nRFC 1952 at the default level. Output is binary bytes in a string.",
	})

	r.MustRegister(&Function{
		Name:     "decode_gzip",
		Params:   []Param{{Name: "value", Kinds: KindString, Required: true}},
		Fallible: true,
		Return:   Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			zr, err := gzip.NewReader(bytes.NewReader([]byte(c.Arg("value").Data.(string))))
			if err != nil {
				return Null, fmt.Errorf("decode_gzip: %v", err)
			}
			defer zr.Close()
			out, err := io.ReadAll(zr)
			if err != nil {
				return Null, fmt.Errorf("decode_gzip: %v", err)
			}
			return Str(string(out)), nil
		},
		Doc: "decode_gzip(value) -> string\nFallible: bad headers, checksum mismatch, or truncated input fail.",
	})

	r.MustRegister(&Function{
		Name:   "encode_zlib",
		Params: []Param{{Name: "value", Kinds: KindString, Required: true}},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			var buf bytes.Buffer
			zw := zlib.NewWriter(&buf)
			zw.Write([]byte(c.Arg("value").Data.(string)))
			if err := zw.Close(); err != nil {
				return Null, fmt.Errorf("encode_zlib: %v", err)
			}
			return Str(buf.String()), nil
		},
		Doc: "encode_zlib(value) -> string\nRFC 1950 at the default level.",
	})

	r.MustRegister(&Function{
		Name:     "decode_zlib",
		Params:   []Param{{Name: "value", Kinds: KindString, Required: true}},
		Fallible: true,
		Return:   Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			zr, err := zlib.NewReader(bytes.NewReader([]byte(c.Arg("value").Data.(string))))
			if err != nil {
				return Null, fmt.Errorf("decode_zlib: %v", err)
			}
			defer zr.Close()
			out, err := io.ReadAll(zr)
			if err != nil {
				return Null, fmt.Errorf("decode_zlib: %v", err)
			}
			return Str(string(out)), nil
		},
		Doc: "decode_zlib(value) -> string\nFallible: malformed or truncated input fails.",
	})
}
