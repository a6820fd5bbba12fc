// builtin_parse.go
package vrl

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// registerParseFns installs the codec group: JSON in both directions,
// timestamp parsing and formatting, and key-value extraction.
func registerParseFns(r *Registry) {
	r.MustRegister(&Function{
		Name:     "parse_json",
		Params:   []Param{{Name: "value", Kinds: KindString, Required: true}},
		Fallible: true,
		Impl: func(c FuncCall) (Value, error) {
			return DecodeJSON(c.Arg("value").Data.(string))
		},
		Doc: "parse_json(value) -> any\nFallible: the input must be well-formed JSON. Object key order is preserved.",
	})

	r.MustRegister(&Function{
		Name: "encode_json",
		Params: []Param{
			{Name: "value", Kinds: KindAny, Required: true},
			{Name: "pretty", Kinds: KindBool, Default: Bool(false)},
		},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			return Str(EncodeJSON(c.Arg("value"), c.Arg("pretty").Truthy())), nil
		},
		Doc: "encode_json(value, pretty: false) -> string\nTimestamps encode as RFC 3339 strings; regexes as their pattern source.",
	})

	r.MustRegister(&Function{
		Name: "parse_timestamp",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "format", Kinds: KindString, Default: Str(time.RFC3339Nano)},
		},
		Fallible: true,
		Return:   Returns(KindTimestamp),
		Impl: func(c FuncCall) (Value, error) {
			t, err := time.Parse(c.Arg("format").Data.(string), c.Arg("value").Data.(string))
			if err != nil {
				return Null, fmt.Errorf("parse_timestamp: %v", err)
			}
			return Timestamp(t.UTC()), nil
		},
		Doc: "parse_timestamp(value, format: RFC 3339) -> timestamp\nFormat uses Go reference-time layouts.",
	})

	r.MustRegister(&Function{
		Name: "format_timestamp",
		Params: []Param{
			{Name: "value", Kinds: KindTimestamp, Required: true},
			{Name: "format", Kinds: KindString, Default: Str(time.RFC3339Nano)},
		},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			t := c.Arg("value").Data.(time.Time)
			return Str(t.UTC().Format(c.Arg("format").Data.(string))), nil
		},
		Doc: "format_timestamp(value, format: RFC 3339) -> string",
	})

	r.MustRegister(&Function{
		Name: "to_unix_timestamp",
		Params: []Param{
			{Name: "value", Kinds: KindTimestamp, Required: true},
			{Name: "unit", Kinds: KindString, Default: Str("seconds")},
		},
		Fallible: true,
		Return:   Returns(KindInt),
		Impl: func(c FuncCall) (Value, error) {
			t := c.Arg("value").Data.(time.Time)
			switch unit := c.Arg("unit").Data.(string); unit {
			case "seconds":
				return Int(t.Unix()), nil
			case "milliseconds":
				return Int(t.UnixMilli()), nil
			case "nanoseconds":
				return Int(t.UnixNano()), nil
			default:
				return Null, fmt.Errorf("to_unix_timestamp: unknown unit %q", unit)
			}
		},
		Doc: "to_unix_timestamp(value, unit: \"seconds\") -> integer\nUnits: seconds, milliseconds, nanoseconds.",
	})

	r.MustRegister(&Function{
		Name: "parse_int",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "base", Kinds: KindInt, Default: Int(10)},
		},
		Fallible: true,
		Return:   Returns(KindInt),
		Impl: func(c FuncCall) (Value, error) {
			n, err := strconv.ParseInt(c.Arg("value").Data.(string), int(c.Arg("base").Data.(int64)), 64)
			if err != nil {
				return Null, fmt.Errorf("parse_int: %v", err)
			}
			return Int(n), nil
		},
		Doc: "parse_int(value, base: 10) -> integer",
	})

	r.MustRegister(&Function{
		Name: "parse_key_value",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "key_value_delimiter", Kinds: KindString, Default: Str("=")},
			{Name: "field_delimiter", Kinds: KindString, Default: Str(" ")},
		},
		Fallible: true,
		Return:   Returns(KindObject),
		Impl: func(c FuncCall) (Value, error) {
			kv := c.Arg("key_value_delimiter").Data.(string)
			fd := c.Arg("field_delimiter").Data.(string)
			o := NewObject()
			for _, field := range strings.Split(c.Arg("value").Data.(string), fd) {
				if field == "" {
					continue
				}
				key, val, ok := strings.Cut(field, kv)
				if !ok {
					return Null, fmt.Errorf("parse_key_value: field %q has no %q", field, kv)
				}
				o.Set(key, Str(strings.Trim(val, `"`)))
			}
			return Obj(o), nil
		},
		Doc: "parse_key_value(value, key_value_delimiter: \"=\", field_delimiter: \" \") -> object\nEvery field must contain the key-value delimiter; values shed surrounding double quotes.",
	})
}

// -----------------------------
// JSON codec
// -----------------------------

// DecodeJSON parses one JSON document into a Value, preserving object key
// order and distinguishing integers from floats.
func DecodeJSON(s string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return Null, fmt.Errorf("parse_json: %v", err)
	}
	// Trailing garbage after the document is an error too.
	if dec.More() {
		return Null, fmt.Errorf("parse_json: trailing data after document")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null, err
	}
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Null, err
		}
		return Float(f), nil
	case json.Delim:
		switch t {
		case '[':
			var xs []Value
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return Null, err
				}
				xs = append(xs, v)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return Null, err
			}
			return Arr(xs), nil
		case '{':
			o := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null, err
				}
				key := keyTok.(string)
				v, err := decodeJSONValue(dec)
				if err != nil {
					return Null, err
				}
				o.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // closing }
				return Null, err
			}
			return Obj(o), nil
		}
	}
	return Null, fmt.Errorf("unexpected token %v", tok)
}

// EncodeJSON renders a Value as JSON text. Object keys keep insertion
// order; timestamps render as RFC 3339 strings; regexes as their pattern.
func EncodeJSON(v Value, pretty bool) string {
	var b strings.Builder
	encodeJSONValue(&b, v, pretty, 0)
	return b.String()
}

func encodeJSONValue(b *strings.Builder, v Value, pretty bool, depth int) {
	indent := func(d int) {
		if pretty {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("  ", d))
		}
	}
	switch v.Tag {
	case VTNull:
		b.WriteString("null")
	case VTBool:
		b.WriteString(strconv.FormatBool(v.Data.(bool)))
	case VTInt:
		b.WriteString(strconv.FormatInt(v.Data.(int64), 10))
	case VTFloat:
		b.WriteString(strconv.FormatFloat(v.Data.(float64), 'g', -1, 64))
	case VTString:
		raw, _ := json.Marshal(v.Data.(string))
		b.Write(raw)
	case VTTimestamp:
		b.WriteByte('"')
		b.WriteString(v.Data.(time.Time).UTC().Format(time.RFC3339Nano))
		b.WriteByte('"')
	case VTRegex:
		raw, _ := json.Marshal(v.Data.(*regexp.Regexp).String())
		b.Write(raw)
	case VTArray:
		xs := v.Data.([]Value)
		if len(xs) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i, e := range xs {
			if i > 0 {
				b.WriteByte(',')
			}
			indent(depth + 1)
			encodeJSONValue(b, e, pretty, depth+1)
		}
		indent(depth)
		b.WriteByte(']')
	case VTObject:
		o := v.Data.(*Object)
		if o.Len() == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteByte('{')
		for i, k := range o.Keys {
			if i > 0 {
				b.WriteByte(',')
			}
			indent(depth + 1)
			raw, _ := json.Marshal(k)
			b.Write(raw)
			b.WriteByte(':')
			if pretty {
				b.WriteByte(' ')
			}
			encodeJSONValue(b, o.Entries[k], pretty, depth+1)
		}
		indent(depth)
		b.WriteByte('}')
	}
}
