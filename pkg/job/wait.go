package job

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is the slice of shell state the Waiter needs: who owns the
// terminal and how to save/restore its modes across foreground/background
// transitions. Implemented by the shell package; kept as an interface here
// so this package never imports it back.
type Terminal interface {
	Fd() int
	IsInteractive() bool
	ShellPgid() int
	SetForeground(pgid int) error
	SaveModes() (*term.State, error)
	RestoreModes(*term.State) error
	RestoreShellModes() error
}

// Waiter reconciles child status changes via waitpid for a given Job.
type Waiter struct {
	Term   Terminal
	Stderr io.Writer
}

func NewWaiter(t Terminal, stderr io.Writer) *Waiter {
	return &Waiter{Term: t, Stderr: stderr}
}

func (w *Waiter) processWstatus(j *Job, pid int, ws unix.WaitStatus) {
	stats := j.Procs[pid]
	switch {
	case ws.Stopped():
		stats.Stopped = true
		sig := int(ws.StopSignal())
		fmt.Fprintf(w.Stderr, "%d: stopped by %s(%d)\n", pid, SignalName(sig), sig)
	case ws.Signaled():
		stats.Completed = true
		stats.ExitCode = 1
		stats.Signaled = true
		stats.Signal = int(ws.Signal())
		fmt.Fprintf(w.Stderr, "%d: Terminated by signal %s(%d)\n", pid, SignalName(stats.Signal), stats.Signal)
	case ws.Exited():
		stats.Completed = true
		stats.ExitCode = ws.ExitStatus()
	}
	j.Procs[pid] = stats
}

// WaitJob blocks until every process in j has completed or stopped.
func (w *Waiter) WaitJob(j *Job) error {
	for !j.Completed() && !j.Stopped() {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-j.Pgid, &ws, unix.WUNTRACED, nil)
		if err != nil {
			if err == unix.ECHILD {
				break
			}
			return fmt.Errorf("waitpid(pgid=%d): %v", j.Pgid, err)
		}
		w.processWstatus(j, pid, ws)
	}
	return nil
}

// WaitInsideAsync is WaitJob but ignores the Stopped condition: an async
// scope drains all of its children even if some were stopped, so its own
// exit status is always well defined.
func (w *Waiter) WaitInsideAsync(j *Job) error {
	for !j.Completed() {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-j.Pgid, &ws, unix.WUNTRACED, nil)
		if err != nil {
			if err == unix.ECHILD {
				break
			}
			return fmt.Errorf("waitpid(pgid=%d): %v", j.Pgid, err)
		}
		w.processWstatus(j, pid, ws)
	}
	return nil
}

// UpdateStatus is a non-blocking poll, used between prompts to surface
// background transitions.
func (w *Waiter) UpdateStatus(j *Job) error {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-j.Pgid, &ws, unix.WUNTRACED|unix.WNOHANG, nil)
		if err != nil {
			if err == unix.ECHILD {
				return nil
			}
			return fmt.Errorf("waitpid(pgid=%d): %v", j.Pgid, err)
		}
		if pid == 0 {
			return nil
		}
		w.processWstatus(j, pid, ws)
	}
}

// Wait is the synchronous foreground wait: after draining status, hand the
// terminal back to the shell and restore its saved modes.
func (w *Waiter) Wait(j *Job) error {
	if err := w.WaitJob(j); err != nil {
		return err
	}
	if !w.Term.IsInteractive() {
		return nil
	}
	if err := w.Term.SetForeground(w.Term.ShellPgid()); err != nil {
		return err
	}
	if state, err := w.Term.SaveModes(); err == nil {
		j.Tmodes = state
		j.TmodesInit = true
	}
	return w.Term.RestoreShellModes()
}

// Bg continues a stopped job in the background: SIGCONT, clear stopped
// flags, do not wait.
func (w *Waiter) Bg(j *Job) error {
	if err := unix.Kill(-j.Pgid, unix.SIGCONT); err != nil && err != unix.ESRCH {
		return err
	}
	clearStopped(j)
	return nil
}

// Fg transfers the terminal to j, restores its saved modes if any,
// continues it, and waits for it in the foreground.
func (w *Waiter) Fg(j *Job) error {
	if err := w.Term.SetForeground(j.Pgid); err != nil {
		return err
	}
	if j.TmodesInit && j.Tmodes != nil {
		w.Term.RestoreModes(j.Tmodes)
	}
	if err := unix.Kill(-j.Pgid, unix.SIGCONT); err != nil && err != unix.ESRCH {
		return err
	}
	clearStopped(j)
	return w.Wait(j)
}

func clearStopped(j *Job) {
	for pid, stats := range j.Procs {
		stats.Stopped = false
		j.Procs[pid] = stats
	}
}
