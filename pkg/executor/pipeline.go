package executor

import (
	"os"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

// ExecPipeline runs every stage of p, wiring N-1 pipes between them,
// collects every child into one Job, blocking-waits it, and returns the
// last stage's exit code (inverted if the pipeline is negated). A job
// that stopped rather than completed is moved to the background list.
func (e *Executor) ExecPipeline(p *syntax.Pipeline, st CommandState) job.ExecStats {
	n := len(p.Commands)

	pipes := make([][2]*os.File, n-1)
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			for j := 0; j < i; j++ {
				pipes[j][0].Close()
				pipes[j][1].Close()
			}
			// A failed pipe() is a class-4 fatal shell error (§7): the
			// shell aborts with a diagnostic rather than inventing a
			// status for a pipeline that never ran.
			e.Sh.Diag.Fatalf("testsh: unable to create pipe for pipeline: %v", err)
		}
		pipes[i][0], pipes[i][1] = r, w
	}

	j := job.New()
	pgid := -1
	var lastPid int

	for i, cmd := range p.Commands {
		stageSt := st
		stageSt.Inherited = make(map[int]*os.File, len(st.Inherited))
		for k, v := range st.Inherited {
			stageSt.Inherited[k] = v
		}
		if i > 0 {
			stageSt.Inherited[0] = pipes[i-1][0]
		}
		if i < n-1 {
			stageSt.Inherited[1] = pipes[i][1]
			stageSt.InsidePipeline = true
		} else {
			stageSt.InsidePipeline = false
		}
		stageSt.PipelinePgid = pgid

		stats := e.ExecCommand(cmd, stageSt)
		if i == 0 && stats.PipelinePgid > 0 {
			pgid = stats.PipelinePgid
		}
		if i > 0 {
			pipes[i-1][0].Close()
		}
		if i < n-1 {
			pipes[i][1].Close()
		}
		j.Add(stats)
		if i == n-1 {
			lastPid = stats.ChildPid
		}
	}

	if !j.Completed() {
		if err := e.Waiter.Wait(j); err != nil {
			e.diag("testsh: %v", err)
		}
	}
	if j.Stopped() && !j.Completed() {
		e.Sh.AddBgJob(j)
	}

	last := j.Procs[lastPid]
	if p.Negated {
		if last.ExitCode == 0 {
			last.ExitCode = 1
		} else {
			last.ExitCode = 0
		}
	}
	return last
}
