package shellvars_test

import (
	"sort"
	"testing"

	"github.com/Brendon-Mendicino/testsh/pkg/shellvars"
)

func TestFromEnvironMarksEveryEntryExternal(t *testing.T) {
	v := shellvars.FromEnviron([]string{"HOME=/root", "EMPTY="})
	home, ok := v.Get("HOME")
	if !ok || home != "/root" {
		t.Fatalf("Get(HOME) = %q, %v", home, ok)
	}
	entries := v.ExternalEntries()
	sort.Strings(entries)
	want := []string{"EMPTY=", "HOME=/root"}
	if len(entries) != len(want) || entries[0] != want[0] || entries[1] != want[1] {
		t.Errorf("ExternalEntries() = %v, want %v", entries, want)
	}
}

func TestSetPreservesExternalFlag(t *testing.T) {
	v := shellvars.FromEnviron([]string{"HOME=/root"})
	v.Set("HOME", "/home/x")
	if got := v.ExternalEntries(); len(got) != 1 || got[0] != "HOME=/home/x" {
		t.Errorf("ExternalEntries() = %v, want [HOME=/home/x] (external flag preserved by Set)", got)
	}
}

func TestSetOnNewNameIsNotExternal(t *testing.T) {
	v := shellvars.FromEnviron(nil)
	v.Set("LOCAL", "x")
	if got := v.ExternalEntries(); len(got) != 0 {
		t.Errorf("ExternalEntries() = %v, want none — a plain Set must not leak to envp", got)
	}
	val, ok := v.Get("LOCAL")
	if !ok || val != "x" {
		t.Errorf("Get(LOCAL) = %q, %v", val, ok)
	}
}

func TestMarkExternalPromotesExistingEntry(t *testing.T) {
	v := shellvars.FromEnviron(nil)
	v.Set("FOO", "bar")
	v.MarkExternal("FOO")
	if got := v.ExternalEntries(); len(got) != 1 || got[0] != "FOO=bar" {
		t.Errorf("ExternalEntries() = %v, want [FOO=bar]", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	v := shellvars.FromEnviron([]string{"FOO=bar"})
	clone := v.Clone()
	clone.Set("FOO", "changed")
	if got, _ := v.Get("FOO"); got != "bar" {
		t.Errorf("original Get(FOO) = %q, want unaffected %q", got, "bar")
	}
}

func TestSnapshotFromMapRoundTrip(t *testing.T) {
	v := shellvars.FromEnviron([]string{"HOME=/root"})
	v.Set("LOCAL", "x")

	snap := v.Snapshot()
	rebuilt := shellvars.FromMap(snap)

	if home, ok := rebuilt.Get("HOME"); !ok || home != "/root" {
		t.Errorf("rebuilt HOME = %q, %v", home, ok)
	}
	if local, ok := rebuilt.Get("LOCAL"); !ok || local != "x" {
		t.Errorf("rebuilt LOCAL = %q, %v — Snapshot must carry non-external vars too", local, ok)
	}
}
