package vrl

import "testing"

func kindsOf(toks []Token) []TokKind {
	out := make([]TokKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func lexT(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := lex(src)
	if err != nil {
		t.Fatalf("lex(%q): %s", src, err.msg)
	}
	return toks
}

func Test_Lexer_Operators_Two_Char_First(t *testing.T) {
	toks := lexT(t, "a == b != c <= d >= e ?? f")
	want := []TokKind{TokIdent, TokEq, TokIdent, TokNe, TokIdent, TokLe,
		TokIdent, TokGe, TokIdent, TokCoalesce, TokIdent}
	got := kindsOf(toks)
	if len(got) != len(want) {
		t.Fatalf("token count %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func Test_Lexer_Assign_Vs_Equality(t *testing.T) {
	toks := lexT(t, "a = b == c")
	got := kindsOf(toks)
	if got[1] != TokAssign || got[3] != TokEq {
		t.Fatalf("got %v", got)
	}
}

func Test_Lexer_String_Escapes(t *testing.T) {
	toks := lexT(t, `"a\"b\n\t\\"`)
	if toks[0].Kind != TokString {
		t.Fatalf("kind = %v", toks[0].Kind)
	}
	if toks[0].Text != "a\"b\n\t\\" {
		t.Fatalf("text = %q", toks[0].Text)
	}
}

func Test_Lexer_Regex_And_Timestamp_Literals(t *testing.T) {
	toks := lexT(t, `r'^\d+$' t'2021-01-01T00:00:00Z'`)
	if toks[0].Kind != TokRegex || toks[0].Text != `^\d+$` {
		t.Fatalf("regex token = %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != TokTime || toks[1].Text != "2021-01-01T00:00:00Z" {
		t.Fatalf("time token = %v %q", toks[1].Kind, toks[1].Text)
	}
}

func Test_Lexer_Variables_And_Comments(t *testing.T) {
	toks := lexT(t, "$name # a comment\n$other")
	got := kindsOf(toks)
	want := []TokKind{TokVar, TokNewline, TokVar}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	if toks[0].Text != "name" || toks[2].Text != "other" {
		t.Fatalf("variable texts %q %q", toks[0].Text, toks[2].Text)
	}
}

func Test_Lexer_Collapses_Separators(t *testing.T) {
	toks := lexT(t, "a\n\n\n;;b\n")
	got := kindsOf(toks)
	// Runs of newlines and semicolons fold into one separator; the
	// trailing one is dropped.
	want := []TokKind{TokIdent, TokNewline, TokIdent}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func Test_Lexer_Numbers(t *testing.T) {
	toks := lexT(t, "12 3.5 0.25")
	if toks[0].Kind != TokInt || toks[1].Kind != TokFloat || toks[2].Kind != TokFloat {
		t.Fatalf("got %v", kindsOf(toks))
	}
}

func Test_Lexer_Unterminated_String_Fails(t *testing.T) {
	if _, err := lex(`"open`); err == nil {
		t.Fatalf("unterminated string should fail")
	}
	if _, err := lex(`r'open`); err == nil {
		t.Fatalf("unterminated regex should fail")
	}
}

func Test_Lexer_Spans_Cover_Source(t *testing.T) {
	src := `foo = "bar"`
	toks := lexT(t, src)
	for _, tok := range toks {
		if tok.Sp.Start < 0 || tok.Sp.End > len(src) || tok.Sp.Start >= tok.Sp.End {
			t.Fatalf("bad span %+v for %q", tok.Sp, tok.Text)
		}
	}
}
