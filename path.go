// path.go
//
// Paths address locations inside the external event value. A Path is an
// ordered list of segments, each a field name, an array index, or a
// coalescing group of field names. The checker reasons about paths
// symbolically (see checker.go); this file owns the shared representation
// and the runtime navigation used by the evaluator: reads that distinguish
// "not found" from type errors, and writes that create intermediate
// containers on demand.
package vrl

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind discriminates the Segment variant.
type SegmentKind int

const (
	SegField    SegmentKind = iota // .name
	SegIndex                       // [i]
	SegCoalesce                    // .(a|b|...)
)

// Segment is one step of a path.
type Segment struct {
	Kind         SegmentKind
	Field        string   // SegField
	Index        int      // SegIndex
	Alternatives []string // SegCoalesce, in source order
}

// FieldSeg, IndexSeg, CoalesceSeg are segment constructors.
func FieldSeg(name string) Segment       { return Segment{Kind: SegField, Field: name} }
func IndexSeg(i int) Segment             { return Segment{Kind: SegIndex, Index: i} }
func CoalesceSeg(alts ...string) Segment { return Segment{Kind: SegCoalesce, Alternatives: alts} }

// requiredKind is the collection kind the segment needs its parent to be.
func (s Segment) requiredKind() Kind {
	if s.Kind == SegIndex {
		return KindArray
	}
	return KindObject
}

// requiredLiteral renders the empty collection literal a suggested fix
// assigns to reset an incompatible parent.
func (s Segment) requiredLiteral() string {
	if s.Kind == SegIndex {
		return "[]"
	}
	return "{}"
}

func (s Segment) String() string {
	switch s.Kind {
	case SegField:
		return "." + s.Field
	case SegIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case SegCoalesce:
		return ".(" + strings.Join(s.Alternatives, "|") + ")"
	default:
		return ".<invalid>"
	}
}

// Path addresses a location in a value tree. The empty path is the root.
type Path []Segment

func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// ParsePath parses the dotted textual form used by hosts and tests:
// ".foo.bar[3].(a|b)". The leading dot is optional.
func ParsePath(s string) (Path, error) {
	src := strings.TrimPrefix(s, ".")
	var p Path
	i := 0
	for i < len(src) {
		switch {
		case src[i] == '.':
			i++
		case src[i] == '[':
			j := strings.IndexByte(src[i:], ']')
			if j < 0 {
				return nil, fmt.Errorf("path %q: unclosed index", s)
			}
			n, err := strconv.Atoi(src[i+1 : i+j])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("path %q: bad index %q", s, src[i+1:i+j])
			}
			p = append(p, IndexSeg(n))
			i += j + 1
		case src[i] == '(':
			j := strings.IndexByte(src[i:], ')')
			if j < 0 {
				return nil, fmt.Errorf("path %q: unclosed coalesce group", s)
			}
			alts := strings.Split(src[i+1:i+j], "|")
			for k := range alts {
				alts[k] = strings.TrimSpace(alts[k])
				if alts[k] == "" {
					return nil, fmt.Errorf("path %q: empty coalesce alternative", s)
				}
			}
			p = append(p, CoalesceSeg(alts...))
			i += j + 1
		default:
			j := i
			for j < len(src) && src[j] != '.' && src[j] != '[' && src[j] != '(' {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("path %q: empty field segment", s)
			}
			p = append(p, FieldSeg(src[i:j]))
			i = j
		}
	}
	return p, nil
}

// -----------------------------
// Runtime navigation
// -----------------------------

// pathGet reads the location addressed by p under root. A missing field, an
// out-of-range index, or a field access on a non-object all report "not
// found" rather than an error; the checker decides separately whether a
// stricter typed error applies (see eval.go).
func pathGet(root Value, p Path) (Value, bool) {
	cur := root
	for _, seg := range p {
		switch seg.Kind {
		case SegField:
			if cur.Tag != VTObject {
				return Null, false
			}
			v, ok := cur.Data.(*Object).Get(seg.Field)
			if !ok {
				return Null, false
			}
			cur = v
		case SegIndex:
			if cur.Tag != VTArray {
				return Null, false
			}
			xs := cur.Data.([]Value)
			if seg.Index >= len(xs) {
				return Null, false
			}
			cur = xs[seg.Index]
		case SegCoalesce:
			if cur.Tag != VTObject {
				return Null, false
			}
			o := cur.Data.(*Object)
			found := false
			for _, alt := range seg.Alternatives {
				if v, ok := o.Get(alt); ok && v.Tag != VTNull {
					cur, found = v, true
					break
				}
			}
			if !found {
				return Null, false
			}
		}
	}
	return cur, true
}

// pathSet writes v at the location addressed by p under *root, creating
// intermediate objects/arrays when the slot along the way is absent or
// null. Index writes pad the array with nulls up to the index. A concrete
// incompatible parent (e.g. a string where an index must descend) fails
// with a TypeMismatch runtime error; compile-time approval of such a write
// only ever happens when the static type-state was permissive.
//
// The walk is recursive write-back: each level mutates a copy of the child
// slot and stores it into its container on the way out, which keeps map
// entries (not addressable in Go) and re-allocated array headers coherent.
func pathSet(root *Value, p Path, v Value) *RuntimeError {
	if len(p) == 0 {
		*root = v
		return nil
	}
	seg := p[0]
	switch seg.Kind {
	case SegField, SegCoalesce:
		if root.Tag == VTNull {
			*root = Obj(NewObject())
		}
		if root.Tag != VTObject {
			return &RuntimeError{
				Kind: ErrTypeMismatch,
				Msg:  "cannot write field " + seg.String() + " through a " + root.KindName(),
			}
		}
		o := root.Data.(*Object)
		name := seg.Field
		if seg.Kind == SegCoalesce {
			// Writes land on the first alternative already present,
			// else on the first alternative.
			name = seg.Alternatives[0]
			for _, alt := range seg.Alternatives {
				if _, ok := o.Get(alt); ok {
					name = alt
					break
				}
			}
		}
		child, _ := o.Get(name)
		if err := pathSet(&child, p[1:], v); err != nil {
			return err
		}
		o.Set(name, child)
		return nil
	case SegIndex:
		if root.Tag == VTNull {
			*root = Arr(nil)
		}
		if root.Tag != VTArray {
			return &RuntimeError{
				Kind: ErrTypeMismatch,
				Msg:  "cannot write index " + seg.String() + " through a " + root.KindName(),
			}
		}
		xs := root.Data.([]Value)
		for len(xs) <= seg.Index {
			xs = append(xs, Null)
		}
		child := xs[seg.Index]
		if err := pathSet(&child, p[1:], v); err != nil {
			return err
		}
		xs[seg.Index] = child
		root.Data = xs
		return nil
	}
	return nil
}

// pathDelete removes the location addressed by p and returns the removed
// value (null when nothing resolved). Deleting the root resets the event to
// an empty object.
func pathDelete(root *Value, p Path) Value {
	if len(p) == 0 {
		old := *root
		*root = Obj(NewObject())
		return old
	}
	seg := p[0]
	switch seg.Kind {
	case SegField, SegCoalesce:
		if root.Tag != VTObject {
			return Null
		}
		o := root.Data.(*Object)
		name := seg.Field
		if seg.Kind == SegCoalesce {
			name = ""
			for _, alt := range seg.Alternatives {
				if _, ok := o.Get(alt); ok {
					name = alt
					break
				}
			}
			if name == "" {
				return Null
			}
		}
		child, ok := o.Get(name)
		if !ok {
			return Null
		}
		if len(p) == 1 {
			o.Delete(name)
			return child
		}
		old := pathDelete(&child, p[1:])
		o.Set(name, child)
		return old
	case SegIndex:
		if root.Tag != VTArray {
			return Null
		}
		xs := root.Data.([]Value)
		if seg.Index >= len(xs) {
			return Null
		}
		if len(p) == 1 {
			old := xs[seg.Index]
			root.Data = append(xs[:seg.Index], xs[seg.Index+1:]...)
			return old
		}
		child := xs[seg.Index]
		old := pathDelete(&child, p[1:])
		xs[seg.Index] = child
		root.Data = xs
		return old
	}
	return Null
}
