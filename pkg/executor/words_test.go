package executor

import (
	"testing"

	"github.com/Brendon-Mendicino/testsh/pkg/shell"
	"github.com/Brendon-Mendicino/testsh/pkg/shellvars"
	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

func newTestExecutor(t *testing.T, environ []string) *Executor {
	t.Helper()
	sh, err := shell.NewWorker()
	if err != nil {
		t.Fatal(err)
	}
	sh.Vars = shellvars.FromEnviron(environ)
	return New(sh, "/bin/testsh")
}

func TestBuildEnvpCarriesExternalVarsMinusOverrides(t *testing.T) {
	ex := newTestExecutor(t, []string{"HOME=/root", "PATH=/bin"})
	envp := ex.buildEnvp([]syntax.AssignmentWord{{Key: "PATH", Value: "/usr/bin"}})

	if !contains(envp, "HOME=/root") {
		t.Errorf("envp = %v, missing untouched HOME", envp)
	}
	if contains(envp, "PATH=/bin") {
		t.Errorf("envp = %v, the prefix assignment should override PATH, not coexist with it", envp)
	}
	if !contains(envp, "PATH=/usr/bin") {
		t.Errorf("envp = %v, missing the prefix-assignment override", envp)
	}
}

func TestBuildEnvpDedupsPrefixAssignmentsKeepingLast(t *testing.T) {
	ex := newTestExecutor(t, nil)
	envp := ex.buildEnvp([]syntax.AssignmentWord{
		{Key: "FOO", Value: "first"},
		{Key: "FOO", Value: "second"},
	})
	if len(envp) != 1 || envp[0] != "FOO=second" {
		t.Errorf("envp = %v, want [FOO=second]", envp)
	}
}

func TestExpandWordLiteral(t *testing.T) {
	ex := newTestExecutor(t, nil)
	val, status := ex.expandWord(&syntax.LiteralWord{Value: "hi"}, rootState())
	if val != "hi" || status != 0 {
		t.Errorf("expandWord = %q, %d, want %q, 0", val, status, "hi")
	}
}

func TestExpandWordsTracksLastCmdSubStatus(t *testing.T) {
	ex := newTestExecutor(t, nil)
	words := []syntax.Word{&syntax.LiteralWord{Value: "a"}, &syntax.LiteralWord{Value: "b"}}
	out, status := ex.expandWords(words, rootState())
	if len(out) != 2 || out[0] != "a" || out[1] != "b" {
		t.Errorf("expandWords = %v, want [a b]", out)
	}
	if status != 0 {
		t.Errorf("status = %d, want 0 (no command substitutions involved)", status)
	}
}

func TestExpandWordCompositeConcatenatesLiteralParts(t *testing.T) {
	ex := newTestExecutor(t, nil)
	w := &syntax.CompositeWord{Parts: []syntax.Word{
		&syntax.LiteralWord{Value: "pre"},
		&syntax.LiteralWord{Value: "mid"},
		&syntax.LiteralWord{Value: "post"},
	}}
	val, status := ex.expandWord(w, rootState())
	if val != "premidpost" {
		t.Errorf("expandWord = %q, want %q", val, "premidpost")
	}
	if status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
}

func TestHasCmdSubRecursesIntoComposite(t *testing.T) {
	plain := &syntax.CompositeWord{Parts: []syntax.Word{&syntax.LiteralWord{Value: "a"}}}
	if hasCmdSub(plain) {
		t.Error("hasCmdSub(plain composite) = true, want false")
	}
	withSub := &syntax.CompositeWord{Parts: []syntax.Word{
		&syntax.LiteralWord{Value: "a"},
		&syntax.CmdSub{},
	}}
	if !hasCmdSub(withSub) {
		t.Error("hasCmdSub(composite with CmdSub part) = false, want true")
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
