// Package spawn starts child processes with the process-group and
// terminal-ownership bookkeeping job control needs. Go's runtime always
// performs fork+exec atomically in os/exec (there is no window to run
// arbitrary Go code between the two: a freshly forked child has only one
// thread and the rest of the runtime's goroutines/locks would be in an
// inconsistent state), so unlike a C fork()-based shell this Spawner
// cannot run child-side setup code itself. It instead:
//   - uses syscall.SysProcAttr{Setpgid, Pgid} for process-group placement,
//     which the Go runtime performs via raw syscalls in the narrow
//     fork/exec window, and
//   - toggles the shell's own signal dispositions around Start for plain
//     commands, since disposition changes the shell makes to itself before
//     forking are inherited by the child across exec.
// Subshell and async-list children are themselves re-executions of this
// binary (see cmd/testsh's internal worker mode); they install their own
// required dispositions as the first thing their new process image does,
// which is the Go-native substitute for child-side setup before exec.
package spawn

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
)

// Kind mirrors the spawn-kind distinctions that drive signal-disposition
// tables and foreground handling.
type Kind int

const (
	KindCommand Kind = iota
	KindSubshell
	KindAsyncList
)

// Terminal is the slice of shell state the Spawner needs to hand the
// controlling terminal to a newly spawned job.
type Terminal interface {
	Fd() int
	IsInteractive() bool
	ShellPgid() int
	SetForeground(pgid int) error
}

type Spawner struct {
	Term Terminal
}

func New(t Terminal) *Spawner { return &Spawner{Term: t} }

// commandDispositionSignals is the set of signals the shell ignores while
// interactive (§4.6) and that a plain exec'd command must see restored to
// SIG_DFL, matching the "command" row of the spawn signal-disposition
// table. SIGCHLD is deliberately excluded: the shell never sets it to
// SIG_IGN (Go's runtime owns SIGCHLD bookkeeping for os/exec/Wait4), so
// there is nothing to restore.
var commandDispositionSignals = []os_Signal{
	unix.SIGINT, unix.SIGQUIT, unix.SIGTSTP, unix.SIGTTIN, unix.SIGTTOU,
}

type os_Signal = syscall.Signal

// SpawnAsync starts cmd, which the caller has already fully configured
// (Path, Args, Env, Stdin/Stdout/Stderr or ExtraFiles), as a new process.
// inheritedPgid is the pgid the new process should join (>0), or any
// value <= 0 (callers pass -1) to start a new group seeded by the new
// process's own pid. isForeground and
// kind together decide whether the terminal is handed to the new group.
func (s *Spawner) SpawnAsync(cmd *exec.Cmd, kind Kind, inheritedPgid int, isForeground bool) (job.ExecStats, error) {
	interactive := s.Term.IsInteractive()

	if interactive {
		if kind == KindCommand {
			signal.Reset(toOsSignals(commandDispositionSignals)...)
			defer reinstallShellIgnoreSet()
		}
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		if inheritedPgid > 0 {
			cmd.SysProcAttr.Pgid = inheritedPgid
		}
	}

	if err := cmd.Start(); err != nil {
		return job.Error, err
	}

	pid := cmd.Process.Pid
	pgid := pid
	if interactive {
		if inheritedPgid > 0 {
			pgid = inheritedPgid
		}
		// Race-safety: the parent sets the pgid too, idempotently, in
		// addition to the child's own fork-time Setpgid from SysProcAttr.
		_ = unix.Setpgid(pid, pgid)
		if isForeground && kind != KindAsyncList {
			_ = s.Term.SetForeground(pgid)
		}
	} else {
		if pgpid, err := unix.Getpgid(0); err == nil {
			pgid = pgpid
		}
	}

	return job.ExecStats{ExitCode: 0, ChildPid: pid, PipelinePgid: pgid, Completed: false}, nil
}

// InstallWorkerDispositions sets the signal-disposition table for the
// given kind. Called by a re-exec'd subshell/async-list worker as the
// first thing its fresh process image does, matching the "child path"
// step of the original spawn table that a forked C child would run
// between fork and exec.
func InstallWorkerDispositions(kind Kind) {
	switch kind {
	case KindSubshell:
		signal.Reset(toOsSignals([]os_Signal{unix.SIGINT, unix.SIGQUIT})...)
		signal.Ignore(toOsSignals([]os_Signal{unix.SIGTSTP, unix.SIGTTIN, unix.SIGTTOU})...)
	case KindAsyncList:
		signal.Ignore(toOsSignals([]os_Signal{unix.SIGINT, unix.SIGTTIN, unix.SIGTTOU})...)
		signal.Reset(toOsSignals([]os_Signal{unix.SIGQUIT, unix.SIGTSTP})...)
	case KindCommand:
		signal.Reset(toOsSignals(commandDispositionSignals)...)
	}
}

func toOsSignals(sigs []os_Signal) []os.Signal {
	out := make([]os.Signal, len(sigs))
	for i, s := range sigs {
		out[i] = s
	}
	return out
}

// ShellIgnoreSet is installed once at shell startup (§4.6) and reinstalled
// here after briefly resetting it so a plain command can inherit SIG_DFL.
var ShellIgnoreSet = []os_Signal{
	unix.SIGINT, unix.SIGQUIT, unix.SIGTSTP, unix.SIGTTIN, unix.SIGTTOU,
}

func reinstallShellIgnoreSet() {
	signal.Ignore(toOsSignals(ShellIgnoreSet)...)
}

// IgnoreShellSignals installs ShellIgnoreSet as SIG_IGN for the shell's own
// process, called once during interactive startup (§4.6).
func IgnoreShellSignals() {
	signal.Ignore(toOsSignals(ShellIgnoreSet)...)
}
