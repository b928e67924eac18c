package executor

import (
	"io"
	"os"
	"strings"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/spawn"
	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

// runCmdSub evaluates a CmdSub: a pipe, a subshell whose stdout is the
// write end evaluating body, the parent reading the whole of the read end
// after closing its own copy of the write end, trailing-newline-stripped,
// and reaping the child with a plain wait.
func (e *Executor) runCmdSub(body syntax.List, st CommandState) (string, int) {
	r, w, err := os.Pipe()
	if err != nil {
		e.diag("testsh: unable to create pipe for command substitution: %v", err)
		return "", 1
	}

	childSt := st
	childSt.Inherited = make(map[int]*os.File, len(st.Inherited))
	for k, v := range st.Inherited {
		childSt.Inherited[k] = v
	}
	childSt.Inherited[1] = w
	childSt.IsForeground = false
	childSt.PipelinePgid = -1

	stats, err := e.spawnWorker(spawn.KindSubshell, WorkerSubshellFlag, body, childSt, nil)
	w.Close()
	if err != nil {
		r.Close()
		e.diag("testsh: %v", err)
		return "", 1
	}

	data, _ := io.ReadAll(r)
	r.Close()

	j := job.New()
	j.Add(stats)
	if !j.Completed() {
		if err := e.Waiter.WaitJob(j); err != nil {
			e.diag("testsh: %v", err)
		}
	}

	return strings.TrimSuffix(string(data), "\n"), j.ExecStats().ExitCode
}
