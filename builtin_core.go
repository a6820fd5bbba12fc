// builtin_core.go
package vrl

import (
	"fmt"
	"math"
	"time"
)

// registerCoreFns installs value inspection, conversion, and structural
// helpers. The two path-aware functions (exists, del) are special forms:
// the evaluator resolves their path argument against the event itself and
// the registered executors only serve as value-level fallbacks.
func registerCoreFns(r *Registry) {
	r.MustRegister(&Function{
		Name:   "exists",
		Params: []Param{{Name: "path", Kinds: KindAny, Required: true}},
		Return: Returns(KindBool),
		Impl: func(c FuncCall) (Value, error) {
			return Bool(c.Arg("path").Tag != VTNull), nil
		},
		Doc: "exists(path) -> boolean\nWhether the path resolves to a present value.",
	})

	r.MustRegister(&Function{
		Name:   "del",
		Params: []Param{{Name: "path", Kinds: KindAny, Required: true}},
		Impl: func(c FuncCall) (Value, error) {
			return Null, nil
		},
		Doc: "del(path) -> any\nRemoves the path from the event, returning the removed value.",
	})

	r.MustRegister(&Function{
		Name:   "length",
		Params: []Param{{Name: "value", Kinds: KindArray | KindObject | KindString, Required: true}},
		Return: Returns(KindInt),
		Impl: func(c FuncCall) (Value, error) {
			switch v := c.Arg("value"); v.Tag {
			case VTString:
				return Int(int64(len(v.Data.(string)))), nil
			case VTArray:
				return Int(int64(len(v.Data.([]Value)))), nil
			default:
				return Int(int64(v.Data.(*Object).Len())), nil
			}
		},
		Doc: "length(value) -> integer\nBytes of a string, elements of an array, entries of an object.",
	})

	r.MustRegister(&Function{
		Name: "merge",
		Params: []Param{
			{Name: "to", Kinds: KindObject, Required: true},
			{Name: "from", Kinds: KindObject, Required: true},
			{Name: "deep", Kinds: KindBool, Default: Bool(false)},
		},
		Return: Returns(KindObject),
		Impl: func(c FuncCall) (Value, error) {
			to := c.Arg("to").Clone().Data.(*Object)
			from := c.Arg("from").Data.(*Object)
			mergeObjects(to, from, c.Arg("deep").Truthy())
			return Obj(to), nil
		},
		Doc: "merge(to, from, deep: false) -> object\nKeys of `from` override keys of `to`; deep merging recurses into shared object keys.",
	})

	r.MustRegister(&Function{
		Name:   "keys",
		Params: []Param{{Name: "value", Kinds: KindObject, Required: true}},
		Return: Returns(KindArray),
		Impl: func(c FuncCall) (Value, error) {
			o := c.Arg("value").Data.(*Object)
			out := make([]Value, 0, len(o.Keys))
			for _, k := range o.Keys {
				out = append(out, Str(k))
			}
			return Arr(out), nil
		},
		Doc: "keys(object) -> array\nKeys in insertion order.",
	})

	r.MustRegister(&Function{
		Name:   "values",
		Params: []Param{{Name: "value", Kinds: KindObject, Required: true}},
		Return: Returns(KindArray),
		Impl: func(c FuncCall) (Value, error) {
			o := c.Arg("value").Data.(*Object)
			out := make([]Value, 0, len(o.Keys))
			for _, k := range o.Keys {
				out = append(out, o.Entries[k])
			}
			return Arr(out), nil
		},
		Doc: "values(object) -> array\nValues in key insertion order.",
	})

	// Type guards. Predicate feeds branch narrowing in the checker.
	guards := []struct {
		name string
		kind Kind
	}{
		{"is_null", KindNull},
		{"is_boolean", KindBool},
		{"is_integer", KindInt},
		{"is_float", KindFloat},
		{"is_string", KindString},
		{"is_timestamp", KindTimestamp},
		{"is_regex", KindRegex},
		{"is_array", KindArray},
		{"is_object", KindObject},
	}
	for _, g := range guards {
		kind := g.kind
		r.MustRegister(&Function{
			Name:      g.name,
			Params:    []Param{{Name: "value", Kinds: KindAny, Required: true}},
			Predicate: kind,
			Return:    Returns(KindBool),
			Impl: func(c FuncCall) (Value, error) {
				return Bool(c.Arg("value").Kind() == kind), nil
			},
			Doc: g.name + "(value) -> boolean",
		})
	}

	r.MustRegister(&Function{
		Name:   "to_string",
		Params: []Param{{Name: "value", Kinds: KindScalar, Required: true}},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			switch v := c.Arg("value"); v.Tag {
			case VTString:
				return v, nil
			case VTNull:
				return Str(""), nil
			case VTTimestamp:
				return Str(v.Data.(time.Time).UTC().Format(time.RFC3339Nano)), nil
			default:
				s := v.String()
				return Str(s), nil
			}
		},
		Doc: "to_string(value) -> string\nRenders any scalar as its textual form; null becomes the empty string.",
	})

	r.MustRegister(&Function{
		Name:     "to_int",
		Params:   []Param{{Name: "value", Kinds: KindScalar, Required: true}},
		Fallible: true,
		Return:   Returns(KindInt),
		Impl: func(c FuncCall) (Value, error) {
			switch v := c.Arg("value"); v.Tag {
			case VTInt:
				return v, nil
			case VTFloat:
				return Int(int64(v.Data.(float64))), nil
			case VTBool:
				if v.Data.(bool) {
					return Int(1), nil
				}
				return Int(0), nil
			case VTString:
				var n int64
				if _, err := fmt.Sscanf(v.Data.(string), "%d", &n); err != nil {
					return Null, fmt.Errorf("to_int: %q is not an integer", v.Data.(string))
				}
				return Int(n), nil
			case VTTimestamp:
				return Int(v.Data.(time.Time).Unix()), nil
			default:
				return Null, fmt.Errorf("to_int: cannot convert %s", v.KindName())
			}
		},
		Doc: "to_int(value) -> integer\nFallible: string inputs must be decimal integers.",
	})

	r.MustRegister(&Function{
		Name:     "to_float",
		Params:   []Param{{Name: "value", Kinds: KindScalar, Required: true}},
		Fallible: true,
		Return:   Returns(KindFloat),
		Impl: func(c FuncCall) (Value, error) {
			switch v := c.Arg("value"); v.Tag {
			case VTFloat:
				return v, nil
			case VTInt:
				return Float(float64(v.Data.(int64))), nil
			case VTString:
				var f float64
				if _, err := fmt.Sscanf(v.Data.(string), "%g", &f); err != nil {
					return Null, fmt.Errorf("to_float: %q is not a number", v.Data.(string))
				}
				return Float(f), nil
			default:
				return Null, fmt.Errorf("to_float: cannot convert %s", v.KindName())
			}
		},
		Doc: "to_float(value) -> float\nFallible: string inputs must parse as numbers.",
	})

	r.MustRegister(&Function{
		Name:     "to_bool",
		Params:   []Param{{Name: "value", Kinds: KindScalar, Required: true}},
		Fallible: true,
		Return:   Returns(KindBool),
		Impl: func(c FuncCall) (Value, error) {
			switch v := c.Arg("value"); v.Tag {
			case VTBool:
				return v, nil
			case VTString:
				switch v.Data.(string) {
				case "true", "yes", "1":
					return Bool(true), nil
				case "false", "no", "0":
					return Bool(false), nil
				}
				return Null, fmt.Errorf("to_bool: %q is not a boolean", v.Data.(string))
			case VTInt:
				return Bool(v.Data.(int64) != 0), nil
			case VTNull:
				return Bool(false), nil
			default:
				return Null, fmt.Errorf("to_bool: cannot convert %s", v.KindName())
			}
		},
		Doc: "to_bool(value) -> boolean",
	})

	r.MustRegister(&Function{
		Name: "round",
		Params: []Param{
			{Name: "value", Kinds: KindNumber, Required: true},
			{Name: "precision", Kinds: KindInt, Default: Int(0)},
		},
		Return: roundReturn,
		Impl:   roundImpl(math.Round),
		Doc:    "round(value, precision: 0) -> integer or float\nInteger inputs pass through untouched.",
	})
	r.MustRegister(&Function{
		Name: "floor",
		Params: []Param{
			{Name: "value", Kinds: KindNumber, Required: true},
			{Name: "precision", Kinds: KindInt, Default: Int(0)},
		},
		Return: roundReturn,
		Impl:   roundImpl(math.Floor),
		Doc:    "floor(value, precision: 0) -> integer or float",
	})
	r.MustRegister(&Function{
		Name: "ceil",
		Params: []Param{
			{Name: "value", Kinds: KindNumber, Required: true},
			{Name: "precision", Kinds: KindInt, Default: Int(0)},
		},
		Return: roundReturn,
		Impl:   roundImpl(math.Ceil),
		Doc:    "ceil(value, precision: 0) -> integer or float",
	})

	r.MustRegister(&Function{
		Name:   "now",
		Return: Returns(KindTimestamp),
		Impl: func(FuncCall) (Value, error) {
			return Timestamp(time.Now().UTC()), nil
		},
		Doc: "now() -> timestamp\nThe current UTC instant.",
	})
}

// roundReturn narrows the result: an input already proven integer stays
// integer, a float input stays float.
func roundReturn(args []TypeState) TypeState {
	if len(args) > 0 && args[0].Kinds.IsExactly(KindInt) {
		return StateOf(KindInt)
	}
	if len(args) > 0 && args[0].Kinds.IsExactly(KindFloat) {
		return StateOf(KindFloat)
	}
	return StateOf(KindNumber)
}

func roundImpl(f func(float64) float64) func(FuncCall) (Value, error) {
	return func(c FuncCall) (Value, error) {
		v := c.Arg("value")
		if v.Tag == VTInt {
			return v, nil
		}
		prec := c.Arg("precision").Data.(int64)
		scale := math.Pow10(int(prec))
		out := f(v.Data.(float64)*scale) / scale
		if prec <= 0 {
			return Int(int64(out)), nil
		}
		return Float(out), nil
	}
}

// mergeObjects writes every key of from into to. With deep, keys holding
// objects on both sides merge recursively instead of being replaced.
func mergeObjects(to, from *Object, deep bool) {
	for _, k := range from.Keys {
		fv := from.Entries[k]
		if deep {
			if tv, ok := to.Get(k); ok && tv.Tag == VTObject && fv.Tag == VTObject {
				merged := tv.Clone().Data.(*Object)
				mergeObjects(merged, fv.Data.(*Object), true)
				to.Set(k, Obj(merged))
				continue
			}
		}
		to.Set(k, fv.Clone())
	}
}
