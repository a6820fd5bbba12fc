// value.go
//
// The runtime value model. A single tagged variant flows through both
// compilation (as literal payloads and registry defaults) and evaluation
// (as the external event and every intermediate result).
//
// Objects preserve key insertion order for iteration and serialization;
// order is irrelevant for equality. Values nest arbitrarily but never
// back-reference: they are built top-down and owned by their container.
package vrl

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValueTag enumerates the runtime kinds a Value may hold. The tag decides
// which Go type Value.Data carries (see Value).
type ValueTag int

const (
	VTNull      ValueTag = iota // no payload
	VTBool                      // bool
	VTInt                       // int64
	VTFloat                     // float64
	VTString                    // string (byte-accurate; not necessarily UTF-8)
	VTTimestamp                 // time.Time
	VTRegex                     // *regexp.Regexp
	VTArray                     // []Value
	VTObject                    // *Object
)

// Value is the universal carrier.
//
//	Tag        Data
//	VTNull     nil
//	VTBool     bool
//	VTInt      int64
//	VTFloat    float64
//	VTString   string
//	VTTimestamp time.Time
//	VTRegex    *regexp.Regexp
//	VTArray    []Value
//	VTObject   *Object
type Value struct {
	Tag  ValueTag
	Data any
}

// Null is the singleton null Value.
var Null = Value{Tag: VTNull}

// Primitive constructors.
func Bool(b bool) Value              { return Value{Tag: VTBool, Data: b} }
func Int(n int64) Value              { return Value{Tag: VTInt, Data: n} }
func Float(f float64) Value          { return Value{Tag: VTFloat, Data: f} }
func Str(s string) Value             { return Value{Tag: VTString, Data: s} }
func Timestamp(t time.Time) Value    { return Value{Tag: VTTimestamp, Data: t} }
func Regex(re *regexp.Regexp) Value  { return Value{Tag: VTRegex, Data: re} }
func Arr(xs []Value) Value           { return Value{Tag: VTArray, Data: xs} }
func Obj(o *Object) Value            { return Value{Tag: VTObject, Data: o} }

// Object is an ordered string-keyed map. Keys lists unique keys in insertion
// order; Entries is the storage. Order-sensitive consumers iterate Keys.
type Object struct {
	Entries map[string]Value
	Keys    []string
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{Entries: map[string]Value{}}
}

// ObjectFrom builds an ordered object from a plain Go map; key order is
// sorted for determinism (literal objects built by the parser preserve
// source order instead).
func ObjectFrom(m map[string]Value) *Object {
	o := &Object{Entries: make(map[string]Value, len(m)), Keys: make([]string, 0, len(m))}
	for k := range m {
		o.Keys = append(o.Keys, k)
	}
	sort.Strings(o.Keys)
	for _, k := range o.Keys {
		o.Entries[k] = m[k]
	}
	return o
}

// Get returns the value bound to key, if present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.Entries[key]
	return v, ok
}

// Set binds key to v, appending to Keys when the key is new.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.Entries[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Entries[key] = v
}

// Delete removes key and its slot in Keys. Reports whether the key existed.
func (o *Object) Delete(key string) bool {
	if _, ok := o.Entries[key]; !ok {
		return false
	}
	delete(o.Entries, key)
	for i, k := range o.Keys {
		if k == key {
			o.Keys = append(o.Keys[:i], o.Keys[i+1:]...)
			break
		}
	}
	return true
}

// Len reports the number of entries.
func (o *Object) Len() int { return len(o.Entries) }

// Kind returns the type-state kind bit for this value's tag.
func (v Value) Kind() Kind {
	switch v.Tag {
	case VTNull:
		return KindNull
	case VTBool:
		return KindBool
	case VTInt:
		return KindInt
	case VTFloat:
		return KindFloat
	case VTString:
		return KindString
	case VTTimestamp:
		return KindTimestamp
	case VTRegex:
		return KindRegex
	case VTArray:
		return KindArray
	case VTObject:
		return KindObject
	default:
		return 0
	}
}

// KindName renders the human name of the value's kind ("string", "array", ...).
// Diagnostics use this to label blocking types.
func (v Value) KindName() string { return v.Kind().Name() }

// Clone deep-copies v. Regex values share the compiled pattern (immutable).
func (v Value) Clone() Value {
	switch v.Tag {
	case VTArray:
		xs := v.Data.([]Value)
		out := make([]Value, len(xs))
		for i := range xs {
			out[i] = xs[i].Clone()
		}
		return Arr(out)
	case VTObject:
		o := v.Data.(*Object)
		out := &Object{Entries: make(map[string]Value, len(o.Entries)), Keys: append([]string(nil), o.Keys...)}
		for k, e := range o.Entries {
			out.Entries[k] = e.Clone()
		}
		return Obj(out)
	default:
		return v
	}
}

// Equal is deep structural equality. Object key order is ignored; regexes
// compare by pattern source; timestamps by instant.
func (a Value) Equal(b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTInt:
		return a.Data.(int64) == b.Data.(int64)
	case VTFloat:
		return a.Data.(float64) == b.Data.(float64)
	case VTString:
		return a.Data.(string) == b.Data.(string)
	case VTTimestamp:
		return a.Data.(time.Time).Equal(b.Data.(time.Time))
	case VTRegex:
		return a.Data.(*regexp.Regexp).String() == b.Data.(*regexp.Regexp).String()
	case VTArray:
		ax, bx := a.Data.([]Value), b.Data.([]Value)
		if len(ax) != len(bx) {
			return false
		}
		for i := range ax {
			if !ax[i].Equal(bx[i]) {
				return false
			}
		}
		return true
	case VTObject:
		ao, bo := a.Data.(*Object), b.Data.(*Object)
		if len(ao.Entries) != len(bo.Entries) {
			return false
		}
		for k, av := range ao.Entries {
			bv, ok := bo.Entries[k]
			if !ok || !av.Equal(bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Truthy reports the boolean interpretation used by `if` at runtime after
// the checker proved the predicate Boolean. Only VTBool values are truthy
// or falsy; anything else is a checker bug surfaced as false.
func (v Value) Truthy() bool {
	b, ok := v.Data.(bool)
	return v.Tag == VTBool && ok && b
}

// String renders a JSON-flavored debug representation. Timestamps render as
// RFC3339; regexes as r'...'. Object keys follow insertion order.
func (v Value) String() string {
	var b strings.Builder
	v.render(&b)
	return b.String()
}

func (v Value) render(b *strings.Builder) {
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
		b.WriteString(strconv.Quote(v.Data.(string)))
	case VTTimestamp:
		b.WriteString("t'" + v.Data.(time.Time).UTC().Format(time.RFC3339Nano) + "'")
	case VTRegex:
		b.WriteString("r'" + v.Data.(*regexp.Regexp).String() + "'")
	case VTArray:
		b.WriteByte('[')
		for i, e := range v.Data.([]Value) {
			if i > 0 {
				b.WriteString(", ")
			}
			e.render(b)
		}
		b.WriteByte(']')
	case VTObject:
		o := v.Data.(*Object)
		b.WriteByte('{')
		for i, k := range o.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			o.Entries[k].render(b)
		}
		b.WriteByte('}')
	default:
		fmt.Fprintf(b, "<unknown tag %d>", v.Tag)
	}
}
