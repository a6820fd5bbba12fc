// parser.go
//
// Recursive-descent parser producing the typed AST in ast.go. The grammar
// is newline-separated statements of expressions; precedence (loosest to
// tightest): ?? , || , && , == != , < <= > >= , + - , * / , unary.
//
// Path targets and path reads share one sub-parser so that the checker sees
// identical segment spans on both sides of an assignment. Bare identifiers
// not followed by '(' are event paths (`foo` is `.foo`); `$name` is a local
// variable; `name(...)` and `name!(...)` are function calls.
//
// Syntax problems become E203 diagnostics; the parser stops at the first
// one (no recovery), matching the fail-fast compile contract.
package vrl

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

type parser struct {
	toks []Token
	pos  int
	src  string
	diag DiagnosticList
}

// parseProgram lexes and parses src into a root block. On failure the block
// is nil and the list carries a single E203 diagnostic.
func parseProgram(src string) (*Block, DiagnosticList) {
	toks, lerr := lex(src)
	if lerr != nil {
		return nil, DiagnosticList{NewError(CodeSyntax, lerr.span, lerr.msg, "invalid token")}
	}
	p := &parser{toks: toks, src: src}
	block := p.parseStmts(TokEOF)
	if p.diag.HasErrors() {
		return nil, p.diag
	}
	block.Sp = Span{Start: 0, End: len(src)}
	return block, p.diag
}

// -----------------------------
// Token plumbing
// -----------------------------

func (p *parser) peek() Token {
	if p.pos >= len(p.toks) {
		end := len(p.src)
		return Token{Kind: TokEOF, Sp: Span{Start: end, End: end}}
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		end := len(p.src)
		return Token{Kind: TokEOF, Sp: Span{Start: end, End: end}}
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) at(k TokKind) bool { return p.peek().Kind == k }

func (p *parser) accept(k TokKind) (Token, bool) {
	if p.at(k) {
		return p.next(), true
	}
	return Token{}, false
}

func (p *parser) expect(k TokKind, what string) (Token, bool) {
	if p.at(k) {
		return p.next(), true
	}
	t := p.peek()
	p.errorf(t.Sp, "expected %s", what)
	return t, false
}

func (p *parser) skipSeps() {
	for p.at(TokNewline) {
		p.pos++
	}
}

func (p *parser) errorf(sp Span, format string, args ...any) {
	p.diag = append(p.diag, NewError(CodeSyntax, sp, fmt.Sprintf(format, args...), "unexpected here"))
}

// -----------------------------
// Statements
// -----------------------------

// parseStmts parses newline-separated statements until the terminator kind.
func (p *parser) parseStmts(until TokKind) *Block {
	b := &Block{}
	p.skipSeps()
	for !p.at(until) && !p.at(TokEOF) && !p.diag.HasErrors() {
		start := p.peek().Sp
		e := p.parseStmt()
		if e == nil {
			break
		}
		b.Exprs = append(b.Exprs, e)
		if len(b.Exprs) == 1 {
			b.Sp.Start = start.Start
		}
		b.Sp.End = e.Span().End
		if !p.at(until) && !p.at(TokEOF) {
			if _, ok := p.expect(TokNewline, "end of statement"); !ok {
				break
			}
			p.skipSeps()
		}
	}
	return b
}

// parseStmt parses one statement: an assignment when the lookahead shows a
// target followed by '=', otherwise a bare expression.
func (p *parser) parseStmt() Expr {
	if tgt, ok := p.tryTarget(); ok {
		val := p.parseExpr()
		if val == nil {
			return nil
		}
		return &Assign{
			Target: tgt,
			Value:  val,
			Sp:     Span{Start: tgt.Sp.Start, End: val.Span().End},
		}
	}
	return p.parseExpr()
}

// tryTarget speculatively parses an assignment target. It only commits when
// the token after the target is a plain '='.
func (p *parser) tryTarget() (Target, bool) {
	save := p.pos
	var tgt Target
	switch p.peek().Kind {
	case TokVar:
		t := p.next()
		tgt.Var = t.Text
		tgt.Sp = t.Sp
		path, spans, _ := p.parsePathSuffix()
		tgt.Path, tgt.SegSpans = path, spans
		if len(spans) > 0 {
			tgt.Sp.End = spans[len(spans)-1].End
		}
	case TokDot:
		start := p.next().Sp
		path, spans, ok := p.parsePathAfterDot(start)
		if !ok {
			p.pos = save
			return Target{}, false
		}
		tgt.Path, tgt.SegSpans = path, spans
		tgt.Sp = start
		if len(spans) > 0 {
			tgt.Sp.End = spans[len(spans)-1].End
		}
	case TokIdent:
		// Bare identifier: event path head, unless it is a call or keyword.
		t := p.peek()
		if isKeyword(t.Text) || p.peekAt(1).Kind == TokLParen ||
			(p.peekAt(1).Kind == TokBang && p.peekAt(2).Kind == TokLParen) {
			return Target{}, false
		}
		p.next()
		path := Path{FieldSeg(t.Text)}
		spans := []Span{t.Sp}
		more, moreSpans, _ := p.parsePathSuffix()
		path = append(path, more...)
		spans = append(spans, moreSpans...)
		tgt.Path, tgt.SegSpans = path, spans
		tgt.Sp = Span{Start: t.Sp.Start, End: spans[len(spans)-1].End}
	default:
		return Target{}, false
	}
	if !p.at(TokAssign) {
		p.pos = save
		return Target{}, false
	}
	p.next()
	return tgt, true
}

func isKeyword(s string) bool {
	switch s {
	case "if", "else", "null", "true", "false", "abort":
		return true
	}
	return false
}

// -----------------------------
// Paths
// -----------------------------

// parsePathSuffix parses zero or more `.field`, `[i]`, `.(a|b)` segments.
func (p *parser) parsePathSuffix() (Path, []Span, bool) {
	var path Path
	var spans []Span
	for {
		switch p.peek().Kind {
		case TokDot:
			dot := p.next()
			segs, segSpans, ok := p.parsePathAfterDot(dot.Sp)
			if !ok {
				return path, spans, false
			}
			path = append(path, segs...)
			spans = append(spans, segSpans...)
		case TokLBracket:
			lb := p.next()
			idx, ok := p.expect(TokInt, "array index")
			if !ok {
				return path, spans, false
			}
			rb, ok := p.expect(TokRBracket, "']'")
			if !ok {
				return path, spans, false
			}
			n, _ := strconv.Atoi(idx.Text)
			path = append(path, IndexSeg(n))
			spans = append(spans, Span{Start: lb.Sp.Start, End: rb.Sp.End})
		default:
			return path, spans, true
		}
	}
}

// parsePathAfterDot parses what follows a consumed '.': a field name, a
// coalesce group, or nothing (the event root when used as an expression).
func (p *parser) parsePathAfterDot(dot Span) (Path, []Span, bool) {
	switch p.peek().Kind {
	case TokIdent:
		t := p.next()
		path := Path{FieldSeg(t.Text)}
		spans := []Span{{Start: dot.Start, End: t.Sp.End}}
		more, moreSpans, ok := p.parsePathSuffix()
		return append(path, more...), append(spans, moreSpans...), ok
	case TokLParen:
		lp := p.next()
		var alts []string
		for {
			id, ok := p.expect(TokIdent, "coalesce field name")
			if !ok {
				return nil, nil, false
			}
			alts = append(alts, id.Text)
			if _, ok := p.accept(TokPipe); !ok {
				break
			}
		}
		rp, ok := p.expect(TokRParen, "')'")
		if !ok {
			return nil, nil, false
		}
		path := Path{CoalesceSeg(alts...)}
		spans := []Span{{Start: lp.Sp.Start - 1, End: rp.Sp.End}}
		more, moreSpans, ok := p.parsePathSuffix()
		return append(path, more...), append(spans, moreSpans...), ok
	default:
		// Bare '.' is the event root.
		return nil, nil, true
	}
}

// -----------------------------
// Expressions
// -----------------------------

func (p *parser) parseExpr() Expr { return p.parseCoalesce() }

func (p *parser) parseCoalesce() Expr {
	lhs := p.parseOr()
	if lhs == nil {
		return nil
	}
	for p.at(TokCoalesce) {
		p.next()
		rhs := p.parseOr()
		if rhs == nil {
			return nil
		}
		lhs = &Coalesce{Lhs: lhs, Rhs: rhs, Sp: Span{Start: lhs.Span().Start, End: rhs.Span().End}}
	}
	return lhs
}

func (p *parser) parseBinaryLevel(ops map[TokKind]BinOp, sub func() Expr) Expr {
	lhs := sub()
	if lhs == nil {
		return nil
	}
	for {
		op, ok := ops[p.peek().Kind]
		if !ok {
			return lhs
		}
		p.next()
		rhs := sub()
		if rhs == nil {
			return nil
		}
		lhs = &Binary{Op: op, Lhs: lhs, Rhs: rhs, Sp: Span{Start: lhs.Span().Start, End: rhs.Span().End}}
	}
}

func (p *parser) parseOr() Expr {
	return p.parseBinaryLevel(map[TokKind]BinOp{TokOr: OpOr}, p.parseAnd)
}

func (p *parser) parseAnd() Expr {
	return p.parseBinaryLevel(map[TokKind]BinOp{TokAnd: OpAnd}, p.parseEquality)
}

func (p *parser) parseEquality() Expr {
	return p.parseBinaryLevel(map[TokKind]BinOp{TokEq: OpEq, TokNe: OpNe}, p.parseCompare)
}

func (p *parser) parseCompare() Expr {
	return p.parseBinaryLevel(map[TokKind]BinOp{
		TokLt: OpLt, TokLe: OpLe, TokGt: OpGt, TokGe: OpGe,
	}, p.parseAdditive)
}

func (p *parser) parseAdditive() Expr {
	return p.parseBinaryLevel(map[TokKind]BinOp{TokPlus: OpAdd, TokMinus: OpSub}, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() Expr {
	return p.parseBinaryLevel(map[TokKind]BinOp{TokStar: OpMul, TokSlash: OpDiv}, p.parseUnary)
}

func (p *parser) parseUnary() Expr {
	switch p.peek().Kind {
	case TokBang:
		t := p.next()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &Unary{Op: OpNot, Operand: operand, Sp: Span{Start: t.Sp.Start, End: operand.Span().End}}
	case TokMinus:
		t := p.next()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &Unary{Op: OpNeg, Operand: operand, Sp: Span{Start: t.Sp.Start, End: operand.Span().End}}
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() Expr {
	t := p.peek()
	switch t.Kind {
	case TokInt:
		p.next()
		n, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			p.errorf(t.Sp, "integer literal out of range")
			return nil
		}
		return &Literal{Val: Int(n), Sp: t.Sp}
	case TokFloat:
		p.next()
		f, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			p.errorf(t.Sp, "malformed float literal")
			return nil
		}
		return &Literal{Val: Float(f), Sp: t.Sp}
	case TokString:
		p.next()
		return &Literal{Val: Str(t.Text), Sp: t.Sp}
	case TokRegex:
		p.next()
		re, err := regexp.Compile(t.Text)
		if err != nil {
			p.errorf(t.Sp, "invalid regex: %v", err)
			return nil
		}
		return &Literal{Val: Regex(re), Sp: t.Sp}
	case TokTime:
		p.next()
		ts, err := time.Parse(time.RFC3339Nano, t.Text)
		if err != nil {
			p.errorf(t.Sp, "invalid timestamp (want RFC3339): %v", err)
			return nil
		}
		return &Literal{Val: Timestamp(ts), Sp: t.Sp}
	case TokVar:
		p.next()
		path, spans, ok := p.parsePathSuffix()
		if !ok {
			return nil
		}
		end := t.Sp.End
		if len(spans) > 0 {
			end = spans[len(spans)-1].End
		}
		return &VarExpr{Name: t.Text, Path: path, SegSpans: spans, Sp: Span{Start: t.Sp.Start, End: end}}
	case TokDot:
		p.next()
		path, spans, ok := p.parsePathAfterDot(t.Sp)
		if !ok {
			return nil
		}
		end := t.Sp.End
		if len(spans) > 0 {
			end = spans[len(spans)-1].End
		}
		return &PathExpr{Path: path, SegSpans: spans, Sp: Span{Start: t.Sp.Start, End: end}}
	case TokLBracket:
		return p.parseArrayLit()
	case TokLBrace:
		return p.parseBraced()
	case TokLParen:
		p.next()
		p.skipSeps()
		inner := p.parseExpr()
		if inner == nil {
			return nil
		}
		p.skipSeps()
		if _, ok := p.expect(TokRParen, "')'"); !ok {
			return nil
		}
		return inner
	case TokIdent:
		switch t.Text {
		case "null":
			p.next()
			return &Literal{Val: Null, Sp: t.Sp}
		case "true", "false":
			p.next()
			return &Literal{Val: Bool(t.Text == "true"), Sp: t.Sp}
		case "if":
			return p.parseIf()
		case "abort":
			p.next()
			return &Abort{Sp: t.Sp}
		case "else":
			p.errorf(t.Sp, "'else' without matching 'if'")
			return nil
		}
		// Call: name(...) or name!(...)
		if p.peekAt(1).Kind == TokLParen ||
			(p.peekAt(1).Kind == TokBang && p.peekAt(2).Kind == TokLParen) {
			return p.parseCall()
		}
		// Bare identifier: event path.
		p.next()
		path := Path{FieldSeg(t.Text)}
		spans := []Span{t.Sp}
		more, moreSpans, ok := p.parsePathSuffix()
		if !ok {
			return nil
		}
		path = append(path, more...)
		spans = append(spans, moreSpans...)
		return &PathExpr{Path: path, SegSpans: spans, Sp: Span{Start: t.Sp.Start, End: spans[len(spans)-1].End}}
	default:
		p.errorf(t.Sp, "expected expression")
		return nil
	}
}

func (p *parser) parseArrayLit() Expr {
	lb := p.next() // '['
	a := &ArrayLit{}
	p.skipSeps()
	for !p.at(TokRBracket) {
		e := p.parseExpr()
		if e == nil {
			return nil
		}
		a.Elems = append(a.Elems, e)
		p.skipSeps()
		if _, ok := p.accept(TokComma); !ok {
			break
		}
		p.skipSeps()
	}
	rb, ok := p.expect(TokRBracket, "']'")
	if !ok {
		return nil
	}
	a.Sp = Span{Start: lb.Sp.Start, End: rb.Sp.End}
	return a
}

// parseBraced disambiguates object literals from blocks: a '{' followed by
// a quoted key and ':' (or an immediate '}') is an object literal,
// everything else is a block expression.
func (p *parser) parseBraced() Expr {
	lb := p.peek()
	isObject := false
	if p.peekAt(1).Kind == TokRBrace {
		isObject = true
	}
	if p.peekAt(1).Kind == TokString && p.peekAt(2).Kind == TokColon {
		isObject = true
	}
	if isObject {
		return p.parseObjectLit()
	}
	p.next() // '{'
	body := p.parseStmts(TokRBrace)
	rb, ok := p.expect(TokRBrace, "'}'")
	if !ok {
		return nil
	}
	body.Sp = Span{Start: lb.Sp.Start, End: rb.Sp.End}
	return body
}

func (p *parser) parseObjectLit() Expr {
	lb := p.next() // '{'
	o := &ObjectLit{}
	p.skipSeps()
	for !p.at(TokRBrace) {
		key, ok := p.expect(TokString, "object key string")
		if !ok {
			return nil
		}
		if _, ok := p.expect(TokColon, "':'"); !ok {
			return nil
		}
		p.skipSeps()
		val := p.parseExpr()
		if val == nil {
			return nil
		}
		o.Keys = append(o.Keys, key.Text)
		o.Vals = append(o.Vals, val)
		p.skipSeps()
		if _, ok := p.accept(TokComma); !ok {
			break
		}
		p.skipSeps()
	}
	rb, ok := p.expect(TokRBrace, "'}'")
	if !ok {
		return nil
	}
	o.Sp = Span{Start: lb.Sp.Start, End: rb.Sp.End}
	return o
}

func (p *parser) parseIf() Expr {
	kw := p.next() // 'if'
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	lb, ok := p.expect(TokLBrace, "'{' after if condition")
	if !ok {
		return nil
	}
	then := p.parseStmts(TokRBrace)
	rb, ok := p.expect(TokRBrace, "'}'")
	if !ok {
		return nil
	}
	then.Sp = Span{Start: lb.Sp.Start, End: rb.Sp.End}
	node := &If{Cond: cond, Then: then, Sp: Span{Start: kw.Sp.Start, End: rb.Sp.End}}

	if p.at(TokIdent) && p.peek().Text == "else" {
		p.next()
		if p.at(TokIdent) && p.peek().Text == "if" {
			chained := p.parseIf()
			if chained == nil {
				return nil
			}
			node.Else = &Block{Exprs: []Expr{chained}, Sp: chained.Span()}
			node.Sp.End = chained.Span().End
			return node
		}
		elb, ok := p.expect(TokLBrace, "'{' after else")
		if !ok {
			return nil
		}
		els := p.parseStmts(TokRBrace)
		erb, ok := p.expect(TokRBrace, "'}'")
		if !ok {
			return nil
		}
		els.Sp = Span{Start: elb.Sp.Start, End: erb.Sp.End}
		node.Else = els
		node.Sp.End = erb.Sp.End
	}
	return node
}

func (p *parser) parseCall() Expr {
	name := p.next() // ident
	abort := false
	if _, ok := p.accept(TokBang); ok {
		abort = true
	}
	if _, ok := p.expect(TokLParen, "'(' after function name"); !ok {
		return nil
	}
	c := &Call{Func: name.Text, FuncSpan: name.Sp, Abort: abort}
	p.skipSeps()
	for !p.at(TokRParen) {
		var arg Arg
		start := p.peek().Sp
		// Named argument: ident ':' expr
		if p.at(TokIdent) && p.peekAt(1).Kind == TokColon && !isKeyword(p.peek().Text) {
			n := p.next()
			p.next() // ':'
			p.skipSeps()
			arg.Name = n.Text
		}
		val := p.parseExpr()
		if val == nil {
			return nil
		}
		arg.Val = val
		arg.Sp = Span{Start: start.Start, End: val.Span().End}
		c.Args = append(c.Args, arg)
		p.skipSeps()
		if _, ok := p.accept(TokComma); !ok {
			break
		}
		p.skipSeps()
	}
	rp, ok := p.expect(TokRParen, "')'")
	if !ok {
		return nil
	}
	c.Sp = Span{Start: name.Sp.Start, End: rp.Sp.End}
	return c
}
