// builtin_strings.go
package vrl

import (
	"fmt"
	"regexp"
	"strings"
)

// registerStringFns installs the text manipulation group. Pattern-taking
// functions accept either a plain string or a regex literal; the regex arm
// compiles nothing at runtime because regex literals compile during
// parsing.
func registerStringFns(r *Registry) {
	r.MustRegister(&Function{
		Name:   "downcase",
		Params: []Param{{Name: "value", Kinds: KindString, Required: true}},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			return Str(strings.ToLower(c.Arg("value").Data.(string))), nil
		},
		Doc: "downcase(value) -> string",
	})

	r.MustRegister(&Function{
		Name:   "upcase",
		Params: []Param{{Name: "value", Kinds: KindString, Required: true}},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			return Str(strings.ToUpper(c.Arg("value").Data.(string))), nil
		},
		Doc: "upcase(value) -> string",
	})

	r.MustRegister(&Function{
		Name:   "strip_whitespace",
		Params: []Param{{Name: "value", Kinds: KindString, Required: true}},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			return Str(strings.TrimSpace(c.Arg("value").Data.(string))), nil
		},
		Doc: "strip_whitespace(value) -> string\nTrims Unicode whitespace from both ends.",
	})

	r.MustRegister(&Function{
		Name: "split",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "pattern", Kinds: KindString | KindRegex, Required: true},
			{Name: "limit", Kinds: KindInt, Default: Int(-1)},
		},
		Return: Returns(KindArray),
		Impl: func(c FuncCall) (Value, error) {
			s := c.Arg("value").Data.(string)
			limit := int(c.Arg("limit").Data.(int64))
			var parts []string
			if p := c.Arg("pattern"); p.Tag == VTRegex {
				parts = p.Data.(*regexp.Regexp).Split(s, limit)
			} else {
				parts = strings.SplitN(s, p.Data.(string), limit)
			}
			out := make([]Value, len(parts))
			for i, part := range parts {
				out[i] = Str(part)
			}
			return Arr(out), nil
		},
		Doc: "split(value, pattern, limit: -1) -> array\nPattern is a string or a regex.",
	})

	r.MustRegister(&Function{
		Name: "join",
		Params: []Param{
			{Name: "value", Kinds: KindArray, Required: true},
			{Name: "separator", Kinds: KindString, Default: Str("")},
		},
		Fallible: true,
		Return:   Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			xs := c.Arg("value").Data.([]Value)
			parts := make([]string, len(xs))
			for i, v := range xs {
				if v.Tag != VTString {
					return Null, fmt.Errorf("join: element %d is a %s, not a string", i, v.KindName())
				}
				parts[i] = v.Data.(string)
			}
			return Str(strings.Join(parts, c.Arg("separator").Data.(string))), nil
		},
		Doc: "join(value, separator: \"\") -> string\nFallible: every element must be a string.",
	})

	r.MustRegister(&Function{
		Name: "contains",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "substring", Kinds: KindString, Required: true},
			{Name: "case_sensitive", Kinds: KindBool, Default: Bool(true)},
		},
		Return: Returns(KindBool),
		Impl: func(c FuncCall) (Value, error) {
			s, sub := c.Arg("value").Data.(string), c.Arg("substring").Data.(string)
			if !c.Arg("case_sensitive").Truthy() {
				s, sub = strings.ToLower(s), strings.ToLower(sub)
			}
			return Bool(strings.Contains(s, sub)), nil
		},
		Doc: "contains(value, substring, case_sensitive: true) -> boolean",
	})

	r.MustRegister(&Function{
		Name: "starts_with",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "prefix", Kinds: KindString, Required: true},
			{Name: "case_sensitive", Kinds: KindBool, Default: Bool(true)},
		},
		Return: Returns(KindBool),
		Impl: func(c FuncCall) (Value, error) {
			s, p := c.Arg("value").Data.(string), c.Arg("prefix").Data.(string)
			if !c.Arg("case_sensitive").Truthy() {
				s, p = strings.ToLower(s), strings.ToLower(p)
			}
			return Bool(strings.HasPrefix(s, p)), nil
		},
		Doc: "starts_with(value, prefix, case_sensitive: true) -> boolean",
	})

	r.MustRegister(&Function{
		Name: "ends_with",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "suffix", Kinds: KindString, Required: true},
			{Name: "case_sensitive", Kinds: KindBool, Default: Bool(true)},
		},
		Return: Returns(KindBool),
		Impl: func(c FuncCall) (Value, error) {
			s, x := c.Arg("value").Data.(string), c.Arg("suffix").Data.(string)
			if !c.Arg("case_sensitive").Truthy() {
				s, x = strings.ToLower(s), strings.ToLower(x)
			}
			return Bool(strings.HasSuffix(s, x)), nil
		},
		Doc: "ends_with(value, suffix, case_sensitive: true) -> boolean",
	})

	r.MustRegister(&Function{
		Name: "replace",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "pattern", Kinds: KindString | KindRegex, Required: true},
			{Name: "with", Kinds: KindString, Required: true},
			{Name: "count", Kinds: KindInt, Default: Int(-1)},
		},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			s := c.Arg("value").Data.(string)
			with := c.Arg("with").Data.(string)
			count := int(c.Arg("count").Data.(int64))
			if p := c.Arg("pattern"); p.Tag == VTRegex {
				re := p.Data.(*regexp.Regexp)
				if count < 0 {
					return Str(re.ReplaceAllString(s, with)), nil
				}
				n := 0
				return Str(re.ReplaceAllStringFunc(s, func(m string) string {
					if n >= count {
						return m
					}
					n++
					return re.ReplaceAllString(m, with)
				})), nil
			} else {
				return Str(strings.Replace(s, p.Data.(string), with, count)), nil
			}
		},
		Doc: "replace(value, pattern, with, count: -1) -> string\nRegex patterns support $1-style capture references in `with`.",
	})

	r.MustRegister(&Function{
		Name: "match",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "pattern", Kinds: KindRegex, Required: true},
		},
		Return: Returns(KindBool),
		Impl: func(c FuncCall) (Value, error) {
			re := c.Arg("pattern").Data.(*regexp.Regexp)
			return Bool(re.MatchString(c.Arg("value").Data.(string))), nil
		},
		Doc: "match(value, pattern) -> boolean",
	})

	r.MustRegister(&Function{
		Name: "truncate",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "limit", Kinds: KindInt, Required: true},
			{Name: "suffix", Kinds: KindString, Default: Str("")},
		},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			s := c.Arg("value").Data.(string)
			limit := int(c.Arg("limit").Data.(int64))
			if limit < 0 {
				limit = 0
			}
			r := []rune(s)
			if len(r) <= limit {
				return Str(s), nil
			}
			return Str(string(r[:limit]) + c.Arg("suffix").Data.(string)), nil
		},
		Doc: "truncate(value, limit, suffix: \"\") -> string\nRune-safe truncation.",
	})
}
