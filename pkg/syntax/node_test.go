package syntax_test

import (
	"testing"

	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

func TestAsyncFromSeqCarriesFieldsOver(t *testing.T) {
	seq := &syntax.SequentialList{Right: &syntax.Pipeline{}}
	async := syntax.AsyncFromSeq(seq)
	if async.Right != seq.Right {
		t.Error("AsyncFromSeq dropped Right")
	}
}

func TestDefaultTargetFd(t *testing.T) {
	cases := []struct {
		kind syntax.OpenKind
		want int
	}{
		{syntax.OpenRead, 0},
		{syntax.OpenRW, 0},
		{syntax.OpenReplace, 1},
		{syntax.OpenAppend, 1},
	}
	for _, c := range cases {
		if got := syntax.DefaultTargetFd(c.kind); got != c.want {
			t.Errorf("DefaultTargetFd(%v) = %d, want %d", c.kind, got, c.want)
		}
	}
}
