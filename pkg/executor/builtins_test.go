package executor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinCdChangesDirectoryAndUpdatesPwd(t *testing.T) {
	ex := newTestExecutor(t, nil)
	var stderr bytes.Buffer
	ex.Stderr = &stderr

	dir := t.TempDir()
	ex.Sh.Vars.Set("HOME", dir)

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	if code := ex.builtinCd(nil); code != 0 {
		t.Fatalf("builtinCd() = %d, want 0; stderr=%q", code, stderr.String())
	}
	got, _ := ex.Sh.Vars.Get("PWD")
	want, _ := filepath.EvalSymlinks(dir)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != want {
		t.Errorf("PWD = %q, want %q", got, dir)
	}
}

func TestBuiltinCdMissingHome(t *testing.T) {
	ex := newTestExecutor(t, nil)
	var stderr bytes.Buffer
	ex.Stderr = &stderr

	if code := ex.builtinCd(nil); code != 1 {
		t.Fatalf("builtinCd() = %d, want 1", code)
	}
	if got := stderr.String(); got != "cd: $HOME not set\n" {
		t.Errorf("stderr = %q, want %q", got, "cd: $HOME not set\n")
	}
}

func TestBuiltinCdTooManyArguments(t *testing.T) {
	ex := newTestExecutor(t, nil)
	var stderr bytes.Buffer
	ex.Stderr = &stderr

	if code := ex.builtinCd([]string{"a", "b"}); code != 1 {
		t.Fatalf("builtinCd() = %d, want 1", code)
	}
	if got := stderr.String(); got != "cd: too many arguments\n" {
		t.Errorf("stderr = %q, want %q", got, "cd: too many arguments\n")
	}
}

func TestBuiltinCdNonexistentDirectory(t *testing.T) {
	ex := newTestExecutor(t, nil)
	var stderr bytes.Buffer
	ex.Stderr = &stderr

	target := filepath.Join(t.TempDir(), "nope")
	if code := ex.builtinCd([]string{target}); code != 1 {
		t.Fatalf("builtinCd() = %d, want 1", code)
	}
	if got := stderr.String(); len(got) == 0 {
		t.Error("expected a cd diagnostic on stderr")
	}
}
