// builtin_url.go
package vrl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// registerURLFns installs URL and query-string handling plus plain
// percent encoding.
func registerURLFns(r *Registry) {
	r.MustRegister(&Function{
		Name:     "parse_url",
		Params:   []Param{{Name: "value", Kinds: KindString, Required: true}},
		Fallible: true,
		Return:   Returns(KindObject),
		Impl: func(c FuncCall) (Value, error) {
			u, err := url.Parse(c.Arg("value").Data.(string))
			if err != nil {
				return Null, fmt.Errorf("parse_url: %v", err)
			}
			o := NewObject()
			o.Set("scheme", Str(u.Scheme))
			o.Set("host", Str(u.Hostname()))
			if p := u.Port(); p != "" {
				if n, err := strconv.ParseInt(p, 10, 64); err == nil {
					o.Set("port", Int(n))
				}
			}
			o.Set("path", Str(u.EscapedPath()))
			o.Set("query", queryObject(u.Query()))
			if u.Fragment != "" {
				o.Set("fragment", Str(u.Fragment))
			}
			return Obj(o), nil
		},
		Doc: "parse_url(value) -> object\nFields: scheme, host, port (when explicit), path, query, fragment (when present).\nQuery values preserve multiplicity as arrays.",
	})

	r.MustRegister(&Function{
		Name:     "parse_query_string",
		Params:   []Param{{Name: "value", Kinds: KindString, Required: true}},
		Fallible: true,
		Return:   Returns(KindObject),
		Impl: func(c FuncCall) (Value, error) {
			raw := strings.TrimPrefix(c.Arg("value").Data.(string), "?")
			vals, err := url.ParseQuery(raw)
			if err != nil {
				return Null, fmt.Errorf("parse_query_string: %v", err)
			}
			return queryObject(vals), nil
		},
		Doc: "parse_query_string(value) -> object\nAccepts an optional leading '?'. Keys and values are percent-decoded;\nvalues preserve multiplicity as arrays.",
	})

	r.MustRegister(&Function{
		Name:     "encode_query_string",
		Params:   []Param{{Name: "value", Kinds: KindObject, Required: true}},
		Fallible: true,
		Return:   Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			o := c.Arg("value").Data.(*Object)
			vals := url.Values{}
			for _, k := range o.Keys {
				switch v := o.Entries[k]; v.Tag {
				case VTString:
					vals.Add(k, v.Data.(string))
				case VTArray:
					for _, e := range v.Data.([]Value) {
						if e.Tag != VTString {
							return Null, fmt.Errorf("encode_query_string: %q holds a %s element", k, e.KindName())
						}
						vals.Add(k, e.Data.(string))
					}
				default:
					return Null, fmt.Errorf("encode_query_string: %q is a %s, want string or array", k, v.KindName())
				}
			}
			return Str(vals.Encode()), nil
		},
		Doc: "encode_query_string(value) -> string\nFallible: values must be strings or arrays of strings. Keys are sorted;\nno leading '?'.",
	})

	r.MustRegister(&Function{
		Name:   "encode_percent",
		Params: []Param{{Name: "value", Kinds: KindString, Required: true}},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			return Str(url.QueryEscape(c.Arg("value").Data.(string))), nil
		},
		Doc: "encode_percent(value) -> string\nPercent-encodes for use in a query component; space becomes '+'.",
	})

	r.MustRegister(&Function{
		Name:     "decode_percent",
		Params:   []Param{{Name: "value", Kinds: KindString, Required: true}},
		Fallible: true,
		Return:   Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			s, err := url.QueryUnescape(c.Arg("value").Data.(string))
			if err != nil {
				return Null, fmt.Errorf("decode_percent: %v", err)
			}
			return Str(s), nil
		},
		Doc: "decode_percent(value) -> string\nFallible: malformed escapes fail.",
	})
}

// queryObject converts parsed query values to an object with sorted keys
// and array values, keeping repeated keys.
func queryObject(vals url.Values) Value {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	o := NewObject()
	for _, k := range keys {
		xs := make([]Value, 0, len(vals[k]))
		for _, s := range vals[k] {
			xs = append(xs, Str(s))
		}
		o.Set(k, Arr(xs))
	}
	return Obj(o)
}
