package token_test

import (
	"testing"

	"github.com/Brendon-Mendicino/testsh/pkg/token"
)

func kinds(t *testing.T, input string) []token.Kind {
	t.Helper()
	toks, err := token.Scan(input)
	if err != nil {
		t.Fatalf("Scan(%q): %v", input, err)
	}
	var ks []token.Kind
	for _, tok := range toks {
		ks = append(ks, tok.Kind)
	}
	return ks
}

func TestScanOperators(t *testing.T) {
	cases := []struct {
		input string
		want  []token.Kind
	}{
		{"a | b", []token.Kind{token.Word, token.Pipe, token.Word, token.Eof}},
		{"a && b", []token.Kind{token.Word, token.AndAnd, token.Word, token.Eof}},
		{"a || b", []token.Kind{token.Word, token.OrOr, token.Word, token.Eof}},
		{"a & b", []token.Kind{token.Word, token.Ampersand, token.Word, token.Eof}},
		{"a; b", []token.Kind{token.Word, token.Semicolon, token.Word, token.Eof}},
		{"(a)", []token.Kind{token.OpenRound, token.Word, token.CloseRound, token.Eof}},
		{"$(a)", []token.Kind{token.AndOpen, token.Word, token.CloseRound, token.Eof}},
	}
	for _, c := range cases {
		got := kinds(t, c.input)
		if !equalKinds(got, c.want) {
			t.Errorf("Scan(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestScanIoNumber(t *testing.T) {
	got := kinds(t, "2>file")
	want := []token.Kind{token.IoNumber, token.Great, token.Word, token.Eof}
	if !equalKinds(got, want) {
		t.Errorf("Scan(2>file) = %v, want %v", got, want)
	}
}

func TestScanTrailingBackslashIsLineContinuation(t *testing.T) {
	toks, err := token.Scan("foo \\")
	if err != nil {
		t.Fatal(err)
	}
	last := toks[len(toks)-2] // before Eof
	if last.Kind != token.LineContinuation {
		t.Errorf("last token kind = %v, want LineContinuation", last.Kind)
	}
}

func TestScanQuotedWord(t *testing.T) {
	toks, err := token.Scan(`"a b"`)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != token.QuotedWord || toks[0].Value != "a b" {
		t.Errorf("got %+v, want QuotedWord %q", toks[0], "a b")
	}
}

func TestScanUnterminatedQuoteErrors(t *testing.T) {
	if _, err := token.Scan(`"unterminated`); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestScanCommandSubstitutionInsideDoubleQuotesSplitsAndGlues(t *testing.T) {
	toks, err := token.Scan(`"pre$(echo x)post"`)
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Kind{
		token.QuotedWord, token.AndOpen, token.Word, token.Word, token.CloseRound, token.QuotedWord, token.Eof,
	}
	got := make([]token.Kind, len(toks))
	for i, tok := range toks {
		got[i] = tok.Kind
	}
	if !equalKinds(got, want) {
		t.Fatalf("Scan = %v, want %v", got, want)
	}
	if toks[0].Value != "pre" || toks[0].Glued {
		t.Errorf("toks[0] = %+v, want unglued literal %q", toks[0], "pre")
	}
	if !toks[1].Glued {
		t.Error("the embedded $( must be Glued to the preceding literal chunk")
	}
	if toks[5].Value != "post" || !toks[5].Glued {
		t.Errorf("toks[5] = %+v, want glued literal %q", toks[5], "post")
	}
}

func TestScanCommandSubstitutionInsideSingleQuotesStaysLiteral(t *testing.T) {
	toks, err := token.Scan(`'$(echo x)'`)
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 2 || toks[0].Kind != token.QuotedWord || toks[0].Value != "$(echo x)" {
		t.Fatalf("Scan = %+v, want a single literal QuotedWord", toks)
	}
}

func equalKinds(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
