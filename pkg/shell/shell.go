// Package shell holds process-wide shell state: interactivity, the
// terminal, the shell's own process group, variables, and the background
// job table, plus the startup sequence and prompt cycle that drive them.
package shell

import (
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/shellvars"
	"github.com/Brendon-Mendicino/testsh/pkg/spawn"
)

type Shell struct {
	shellPgid     int
	terminalFd    int
	isInteractive bool
	savedModes    *term.State

	Vars *shellvars.Vars

	BgJobs      []*job.Job
	nextJobNum  int
	currentJob  int // job number of most recently referenced job, for %+/%-
	previousJob int

	LastStatus int

	Prompt      string
	ContPrompt  string
	NoColor     bool

	Diag *log.Logger // fatal shell errors (§7 class 4), no prefix/timestamp
}

// New runs the startup sequence described in §4.6: determine
// interactivity, claim the terminal and the shell's own process group
// when interactive, and import the process environment.
func New() (*Shell, error) {
	sh := &Shell{
		terminalFd:  int(os.Stdin.Fd()),
		Vars:        shellvars.FromEnviron(os.Environ()),
		Prompt:      "$ ",
		ContPrompt:  "> ",
		Diag:        log.New(os.Stderr, "", 0),
		nextJobNum:  1,
	}

	if p, ok := os.LookupEnv("TESTSH_PROMPT"); ok {
		sh.Prompt = p
	}
	if v, ok := os.LookupEnv("TESTSH_NO_COLOR"); ok && v != "" {
		sh.NoColor = true
	}

	sh.isInteractive = isatty.IsTerminal(uintptr(sh.terminalFd)) || isatty.IsCygwinTerminal(uintptr(sh.terminalFd))

	if sh.isInteractive {
		if err := sh.claimTerminal(); err != nil {
			return nil, err
		}
	}

	sh.Vars.SetExternal("PPID", fmt.Sprint(os.Getppid()))
	sh.Vars.MarkExternal("PWD")

	return sh, nil
}

// NewWorker builds the Shell state for a re-exec'd subshell/async-list
// child: it detects interactivity and records the process group the
// parent's Spawner already placed it in, but skips the SIGTTIN-acquire
// loop and signal-ignoring that only the top-level shell performs once —
// InstallWorkerDispositions already set this worker's dispositions for
// its kind before this runs.
func NewWorker() (*Shell, error) {
	sh := &Shell{
		terminalFd: int(os.Stdin.Fd()),
		Prompt:     "$ ",
		ContPrompt: "> ",
		Diag:       log.New(os.Stderr, "", 0),
		nextJobNum: 1,
	}
	sh.isInteractive = isatty.IsTerminal(uintptr(sh.terminalFd)) || isatty.IsCygwinTerminal(uintptr(sh.terminalFd))
	if pgid, err := unix.Getpgid(0); err == nil {
		sh.shellPgid = pgid
	}
	return sh, nil
}

func (sh *Shell) claimTerminal() error {
	pgid := unix.Getpgrp()
	for {
		fg, err := unix.IoctlGetInt(sh.terminalFd, unix.TIOCGPGRP)
		if err != nil {
			return fmt.Errorf("tcgetpgrp: %v", err)
		}
		if fg == pgid {
			break
		}
		_ = unix.Kill(-pgid, unix.SIGTTIN)
		pgid = unix.Getpgrp()
	}

	spawn.IgnoreShellSignals()

	pid := os.Getpid()
	if err := unix.Setpgid(pid, pid); err != nil {
		return fmt.Errorf("setpgid: %v", err)
	}
	sh.shellPgid = pid

	if err := unix.IoctlSetInt(sh.terminalFd, unix.TIOCSPGRP, pid); err != nil {
		return fmt.Errorf("tcsetpgrp: %v", err)
	}

	state, err := term.GetState(sh.terminalFd)
	if err != nil {
		return fmt.Errorf("tcgetattr: %v", err)
	}
	sh.savedModes = state

	fmt.Fprintf(os.Stderr, "testsh pid: %d\n", sh.shellPgid)
	return nil
}

// --- job.Terminal / spawn.Terminal ---

func (sh *Shell) Fd() int              { return sh.terminalFd }
func (sh *Shell) IsInteractive() bool  { return sh.isInteractive }
func (sh *Shell) ShellPgid() int       { return sh.shellPgid }

func (sh *Shell) SetForeground(pgid int) error {
	return unix.IoctlSetInt(sh.terminalFd, unix.TIOCSPGRP, pgid)
}

func (sh *Shell) SaveModes() (*term.State, error) {
	return term.GetState(sh.terminalFd)
}

func (sh *Shell) RestoreModes(state *term.State) error {
	return term.Restore(sh.terminalFd, state)
}

func (sh *Shell) RestoreShellModes() error {
	if sh.savedModes == nil {
		return nil
	}
	return term.Restore(sh.terminalFd, sh.savedModes)
}

// CurrentPrompt returns the prompt for the given state: continuation (a
// pending line continuation, "> " by default) or primary ("$ " by
// default), colored red when LastStatus != 0 and NoColor isn't set.
func (sh *Shell) CurrentPrompt(continuation bool) string {
	text := sh.Prompt
	if continuation {
		text = sh.ContPrompt
	}
	if sh.LastStatus == 0 || sh.NoColor {
		return text
	}
	const red, reset = "\x1b[31m", "\x1b[0m"
	return red + text + reset
}
