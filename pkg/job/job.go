// Package job models the outcome of spawning processes (ExecStats) and the
// set of processes sharing one process group (Job), plus the Waiter that
// reconciles their status via waitpid.
package job

import "golang.org/x/term"

// ExecStats is the outcome of launching one command.
type ExecStats struct {
	ExitCode     int
	ChildPid     int
	PipelinePgid int // -1 if not applicable
	Completed    bool
	Stopped      bool
	Signaled     bool
	Signal       int // terminating signal number, valid iff Signaled
}

// Error is the canonical stand-in ExecStats for a command that failed to
// start at all (fork/exec/open/dup2 failure): downstream evaluators treat
// it identically to a normally-exited failing command.
var Error = ExecStats{ExitCode: 1, ChildPid: -1, PipelinePgid: -1, Completed: true, Stopped: false}

// Job is a set of processes that share one pgid.
type Job struct {
	Pgid       int
	Procs      map[int]ExecStats
	JobMaster  int
	Num        int // 1-based job number for %N specs; reused after removal
	Command    string
	TmodesInit bool
	Tmodes     *term.State // saved termios, filled in by Waiter.Wait on foreground return
}

func New() *Job {
	return &Job{Procs: make(map[int]ExecStats)}
}

// Completed reports whether every process in the job has exited or been
// signaled.
func (j *Job) Completed() bool {
	for _, p := range j.Procs {
		if !p.Completed {
			return false
		}
	}
	return true
}

// Stopped reports whether every process has either completed or stopped;
// a job with at least one still-running process is not Stopped.
func (j *Job) Stopped() bool {
	for _, p := range j.Procs {
		if !p.Completed && !p.Stopped {
			return false
		}
	}
	return true
}

// Add records a freshly spawned process's stats. A process with
// PipelinePgid == -1 must already be Completed: that only happens when a
// builtin ran without forking or a spawn failed before a pgid existed.
func (j *Job) Add(stats ExecStats) {
	if j.Pgid == 0 && stats.PipelinePgid != -1 {
		j.Pgid = stats.PipelinePgid
	}
	j.Procs[stats.ChildPid] = stats
	j.JobMaster = stats.ChildPid
}

// ExecStats returns the master process's current stats, used as the job's
// own aggregate result.
func (j *Job) ExecStats() ExecStats { return j.Procs[j.JobMaster] }

// State classifies a Job for "jobs" listing purposes.
type State int

const (
	Running State = iota
	StoppedState
	Done
)

func (j *Job) State() State {
	switch {
	case j.Completed():
		return Done
	case j.Stopped():
		return StoppedState
	default:
		return Running
	}
}

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case StoppedState:
		return "Stopped"
	case Done:
		return "Done"
	default:
		return "?"
	}
}
