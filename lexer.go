// lexer.go
//
// Tokenizer for the remap language. Tokens carry byte spans into the
// original source; everything downstream (parser, checker, diagnostics)
// points back into the source through those spans and never re-scans text.
//
// Lexical shape: `#` comments to end of line; newlines and `;` separate
// statements (consecutive separators collapse); strings use double quotes
// with backslash escapes; `r'...'` is a regex literal and `t'...'` an
// RFC3339 timestamp literal; `$name` is a local variable.
package vrl

import (
	"strings"
)

// TokKind discriminates tokens.
type TokKind int

const (
	TokEOF TokKind = iota
	TokNewline
	TokIdent  // bare identifier (path head, function name; keywords resolved by the parser)
	TokVar    // $name
	TokInt    // 123
	TokFloat  // 1.5
	TokString // "..."
	TokRegex  // r'...'
	TokTime   // t'...'
	TokDot    // .
	TokLBracket
	TokRBracket
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokComma
	TokColon
	TokPipe
	TokAssign   // =
	TokEq       // ==
	TokNe       // !=
	TokLt       // <
	TokLe       // <=
	TokGt       // >
	TokGe       // >=
	TokPlus     // +
	TokMinus    // -
	TokStar     // *
	TokSlash    // /
	TokAnd      // &&
	TokOr       // ||
	TokBang     // !
	TokCoalesce // ??
)

// Token is one lexeme. Text holds the decoded payload for literals (string
// contents unescaped, regex/timestamp bodies raw) and the identifier text
// for TokIdent/TokVar.
type Token struct {
	Kind TokKind
	Text string
	Sp   Span
}

// lexError is a syntax finding surfaced as an E203 diagnostic.
type lexError struct {
	span Span
	msg  string
}

// lex tokenizes src. The error return carries the first lexical problem;
// the token slice is valid up to that point.
func lex(src string) ([]Token, *lexError) {
	var toks []Token
	i := 0
	emit := func(k TokKind, text string, start, end int) {
		toks = append(toks, Token{Kind: k, Text: text, Sp: Span{Start: start, End: end}})
	}
	lastSeparates := func() bool {
		if len(toks) == 0 {
			return true
		}
		return toks[len(toks)-1].Kind == TokNewline
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '\n' || c == ';':
			if !lastSeparates() {
				emit(TokNewline, "", i, i+1)
			}
			i++
		case c == '"':
			start := i
			i++
			var b strings.Builder
			closed := false
			for i < len(src) {
				ch := src[i]
				if ch == '\\' {
					if i+1 >= len(src) {
						return toks, &lexError{span: Span{Start: i, End: i + 1}, msg: "dangling escape at end of input"}
					}
					i++
					switch src[i] {
					case 'n':
						b.WriteByte('\n')
					case 't':
						b.WriteByte('\t')
					case 'r':
						b.WriteByte('\r')
					case '"':
						b.WriteByte('"')
					case '\\':
						b.WriteByte('\\')
					case '0':
						b.WriteByte(0)
					default:
						return toks, &lexError{span: Span{Start: i - 1, End: i + 1}, msg: "unknown escape sequence \\" + string(src[i])}
					}
					i++
					continue
				}
				if ch == '"' {
					closed = true
					i++
					break
				}
				b.WriteByte(ch)
				i++
			}
			if !closed {
				return toks, &lexError{span: Span{Start: start, End: len(src)}, msg: "unterminated string literal"}
			}
			emit(TokString, b.String(), start, i)
		case c == 'r' && i+1 < len(src) && src[i+1] == '\'':
			body, end, lerr := quotedBody(src, i+2)
			if lerr != nil {
				return toks, lerr
			}
			emit(TokRegex, body, i, end)
			i = end
		case c == 't' && i+1 < len(src) && src[i+1] == '\'':
			body, end, lerr := quotedBody(src, i+2)
			if lerr != nil {
				return toks, lerr
			}
			emit(TokTime, body, i, end)
			i = end
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			emit(TokIdent, src[start:i], start, i)
		case c == '$':
			start := i
			i++
			if i >= len(src) || !isIdentStart(src[i]) {
				return toks, &lexError{span: Span{Start: start, End: i}, msg: "expected variable name after '$'"}
			}
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			emit(TokVar, src[start+1:i], start, i)
		case c >= '0' && c <= '9':
			start := i
			isFloat := false
			for i < len(src) && (src[i] >= '0' && src[i] <= '9') {
				i++
			}
			if i+1 < len(src) && src[i] == '.' && src[i+1] >= '0' && src[i+1] <= '9' {
				isFloat = true
				i++
				for i < len(src) && src[i] >= '0' && src[i] <= '9' {
					i++
				}
			}
			if isFloat {
				emit(TokFloat, src[start:i], start, i)
			} else {
				emit(TokInt, src[start:i], start, i)
			}
		default:
			start := i
			two := ""
			if i+1 < len(src) {
				two = src[i : i+2]
			}
			switch two {
			case "==":
				emit(TokEq, two, start, start+2)
				i += 2
				continue
			case "!=":
				emit(TokNe, two, start, start+2)
				i += 2
				continue
			case "<=":
				emit(TokLe, two, start, start+2)
				i += 2
				continue
			case ">=":
				emit(TokGe, two, start, start+2)
				i += 2
				continue
			case "&&":
				emit(TokAnd, two, start, start+2)
				i += 2
				continue
			case "||":
				emit(TokOr, two, start, start+2)
				i += 2
				continue
			case "??":
				emit(TokCoalesce, two, start, start+2)
				i += 2
				continue
			}
			var k TokKind
			switch c {
			case '.':
				k = TokDot
			case '[':
				k = TokLBracket
			case ']':
				k = TokRBracket
			case '(':
				k = TokLParen
			case ')':
				k = TokRParen
			case '{':
				k = TokLBrace
			case '}':
				k = TokRBrace
			case ',':
				k = TokComma
			case ':':
				k = TokColon
			case '|':
				k = TokPipe
			case '=':
				k = TokAssign
			case '<':
				k = TokLt
			case '>':
				k = TokGt
			case '+':
				k = TokPlus
			case '-':
				k = TokMinus
			case '*':
				k = TokStar
			case '/':
				k = TokSlash
			case '!':
				k = TokBang
			default:
				return toks, &lexError{span: Span{Start: start, End: start + 1}, msg: "unexpected character " + string(c)}
			}
			emit(k, string(c), start, start+1)
			i++
		}
	}
	// Drop a trailing separator so the parser's statement loop ends cleanly.
	if n := len(toks); n > 0 && toks[n-1].Kind == TokNewline {
		toks = toks[:n-1]
	}
	return toks, nil
}

// quotedBody scans a single-quoted body starting at `start` (the byte after
// the opening quote). `\'` escapes a quote. Returns the raw body and the
// offset just past the closing quote.
func quotedBody(src string, start int) (string, int, *lexError) {
	var b strings.Builder
	i := start
	for i < len(src) {
		if src[i] == '\\' && i+1 < len(src) && src[i+1] == '\'' {
			b.WriteByte('\'')
			i += 2
			continue
		}
		if src[i] == '\'' {
			return b.String(), i + 1, nil
		}
		b.WriteByte(src[i])
		i++
	}
	return "", len(src), &lexError{span: Span{Start: start - 2, End: len(src)}, msg: "unterminated quoted literal"}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
