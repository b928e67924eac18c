package spawn_test

import (
	"os"
	"os/exec"
	"testing"

	"golang.org/x/term"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/spawn"
)

type fakeTerminal struct{ interactive bool }

func (f fakeTerminal) Fd() int                             { return int(os.Stdin.Fd()) }
func (f fakeTerminal) IsInteractive() bool                 { return f.interactive }
func (f fakeTerminal) ShellPgid() int                       { return os.Getpid() }
func (f fakeTerminal) SetForeground(pgid int) error         { return nil }
func (f fakeTerminal) SaveModes() (*term.State, error)      { return nil, nil }
func (f fakeTerminal) RestoreModes(*term.State) error       { return nil }
func (f fakeTerminal) RestoreShellModes() error              { return nil }

func TestSpawnAsyncNonInteractiveStartsProcess(t *testing.T) {
	s := spawn.New(fakeTerminal{interactive: false})
	cmd := exec.Command("/usr/bin/true")
	stats, err := s.SpawnAsync(cmd, spawn.KindCommand, -1, true)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ChildPid <= 0 {
		t.Fatalf("ChildPid = %d, want a positive pid", stats.ChildPid)
	}

	j := job.New()
	j.Add(stats)
	if err := (&job.Waiter{Term: fakeTerminal{}, Stderr: os.Stderr}).WaitJob(j); err != nil {
		t.Fatal(err)
	}
	if got := j.ExecStats().ExitCode; got != 0 {
		t.Errorf("ExitCode = %d, want 0", got)
	}
}

func TestSpawnAsyncCommandNotFound(t *testing.T) {
	s := spawn.New(fakeTerminal{interactive: false})
	cmd := exec.Command("/definitely/not/a/real/path")
	_, err := s.SpawnAsync(cmd, spawn.KindCommand, -1, true)
	if err == nil {
		t.Fatal("expected an error starting a nonexistent executable")
	}
}

func TestInstallWorkerDispositionsDoesNotPanic(t *testing.T) {
	for _, kind := range []spawn.Kind{spawn.KindCommand, spawn.KindSubshell, spawn.KindAsyncList} {
		spawn.InstallWorkerDispositions(kind)
	}
}
