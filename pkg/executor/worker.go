package executor

import (
	"encoding/gob"
	"fmt"
	"os"
	"os/exec"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/redirect"
	"github.com/Brendon-Mendicino/testsh/pkg/shell"
	"github.com/Brendon-Mendicino/testsh/pkg/shellvars"
	"github.com/Brendon-Mendicino/testsh/pkg/spawn"
	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

// WorkerPayload is everything a re-exec'd subshell/async-list worker
// needs that isn't already implied by its inherited fds: the body it
// must evaluate and the full variable table (a real fork would have
// copied every variable, not just the external=true ones envp carries).
type WorkerPayload struct {
	Body syntax.List
	Vars map[string]shellvars.Var
}

// spawnWorker re-execs the running binary with one of the worker flags,
// shipping body and the current variable table over a pipe (gob-encoded,
// written from a goroutine the way the teacher writes heredoc text), and
// starts it via the Spawner under the given kind.
func (e *Executor) spawnWorker(kind spawn.Kind, workerFlag string, body syntax.List, st CommandState, redirs []syntax.Redirect) (job.ExecStats, error) {
	ctrl := redirect.New(st.Inherited)
	if err := ctrl.AddRedirects(redirs); err != nil {
		e.diag("testsh: %v", err)
		return job.Error, nil
	}
	defer ctrl.Close()

	bodyR, bodyW, err := os.Pipe()
	if err != nil {
		return job.Error, fmt.Errorf("pipe: %v", err)
	}
	go func() {
		defer bodyW.Close()
		enc := gob.NewEncoder(bodyW)
		payload := WorkerPayload{Body: body, Vars: e.Sh.Vars.Snapshot()}
		if err := enc.Encode(&payload); err != nil {
			e.diag("testsh: worker payload encode: %v", err)
		}
	}()

	stdin, stdout, stderr, extra := ctrl.Resolve()
	bodyFd := 3 + len(extra)
	extra = append(extra, bodyR)

	cmd := exec.Command(e.ReexecPath, workerFlag, fmt.Sprintf("%s=%d", WorkerBodyFdFlag, bodyFd))
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr
	cmd.ExtraFiles = extra

	stats, err := e.Spawner.SpawnAsync(cmd, kind, st.PipelinePgid, st.IsForeground)
	bodyR.Close()
	return stats, err
}

// RunWorker is the worker-mode entry point cmd/testsh calls when re-exec'd
// as a subshell or async-list child: it decodes the payload from fd,
// evaluates the body, drains its own background jobs if it's an
// async-list scope, and returns the right exit code for os.Exit.
func RunWorker(kind spawn.Kind, bodyFd int) int {
	spawn.InstallWorkerDispositions(kind)

	f := os.NewFile(uintptr(bodyFd), "body")
	var payload WorkerPayload
	if err := gob.NewDecoder(f).Decode(&payload); err != nil {
		fmt.Fprintf(os.Stderr, "testsh: worker payload decode: %v\n", err)
		return 1
	}
	f.Close()

	sh, err := shell.NewWorker()
	if err != nil {
		fmt.Fprintf(os.Stderr, "testsh: %v\n", err)
		return 1
	}
	sh.Vars = shellvars.FromMap(payload.Vars)

	ex := New(sh, os.Args[0])
	st := rootState()
	if kind == spawn.KindAsyncList {
		st.PipelinePgid = -1
		st.IsForeground = false
		sh.BgJobs = nil
	}

	stats := ex.ExecList(payload.Body, st)

	if kind == spawn.KindAsyncList {
		for _, j := range sh.BgJobs {
			if err := ex.Waiter.WaitInsideAsync(j); err != nil {
				fmt.Fprintf(os.Stderr, "testsh: %v\n", err)
			}
		}
	}

	return stats.ExitCode
}
