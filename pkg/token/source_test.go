package token_test

import (
	"testing"

	"github.com/Brendon-Mendicino/testsh/pkg/token"
)

func TestCursorPeekNextAtEof(t *testing.T) {
	src, err := token.NewLineTokenizer("a b")
	if err != nil {
		t.Fatal(err)
	}
	cur := token.NewCursor(src)

	first, ok := cur.Peek()
	if !ok || first.Kind != token.Word || first.Value != "a" {
		t.Fatalf("Peek() = %+v, %v", first, ok)
	}
	// Peek must not advance.
	again, _ := cur.Peek()
	if again != first {
		t.Fatalf("Peek() is not idempotent: %+v != %+v", again, first)
	}

	cur.Next()
	second, ok := cur.Next()
	if !ok || second.Value != "b" {
		t.Fatalf("second Next() = %+v, %v", second, ok)
	}
	if cur.AtEof() {
		t.Fatal("AtEof() true before consuming the Eof token")
	}
	cur.Next()
	if !cur.AtEof() {
		t.Fatal("AtEof() false after consuming every token")
	}
}

func TestCursorCopySnapshotsPosition(t *testing.T) {
	src, err := token.NewLineTokenizer("a b c")
	if err != nil {
		t.Fatal(err)
	}
	cur := token.NewCursor(src)
	cur.Next()

	saved := cur // value copy: backtracking point
	cur.Next()
	cur.Next()

	restored := saved
	tok, ok := restored.Next()
	if !ok || tok.Value != "b" {
		t.Fatalf("restored cursor resumed at %+v, want %q", tok, "b")
	}
}
