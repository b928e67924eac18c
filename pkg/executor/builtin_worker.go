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

// BuiltinPayload carries a builtin invocation (or a bare no-op, for a
// simple assignment inside a pipeline) across the re-exec boundary, along
// with the variable table the builtin might consult (HOME, PATH, ...).
type BuiltinPayload struct {
	Name string
	Args []string
	Vars map[string]shellvars.Var
}

// spawnBuiltinWorker realizes "run the builtin in a forked child" for a
// builtin (or no-op assignment) that appears inside a pipeline: Go has no
// way to fork just the current goroutine, so the substitute is the same
// re-exec-with-payload mechanism subshells use, under ordinary command
// signal dispositions since a builtin isn't a subshell or async scope.
func (e *Executor) spawnBuiltinWorker(name string, args []string, st CommandState, redirs []syntax.Redirect) job.ExecStats {
	ctrl := redirect.New(st.Inherited)
	if err := ctrl.AddRedirects(redirs); err != nil {
		e.diag("testsh: %v", err)
		return job.Error
	}
	defer ctrl.Close()

	payloadR, payloadW, err := os.Pipe()
	if err != nil {
		e.diag("testsh: pipe: %v", err)
		return job.Error
	}
	go func() {
		defer payloadW.Close()
		payload := BuiltinPayload{Name: name, Args: args, Vars: e.Sh.Vars.Snapshot()}
		gob.NewEncoder(payloadW).Encode(&payload)
	}()

	stdin, stdout, stderr, extra := ctrl.Resolve()
	payloadFd := 3 + len(extra)
	extra = append(extra, payloadR)

	cmd := exec.Command(e.ReexecPath, WorkerBuiltinFlag, fmt.Sprintf("%s=%d", WorkerBodyFdFlag, payloadFd))
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr
	cmd.ExtraFiles = extra

	stats, err := e.Spawner.SpawnAsync(cmd, spawn.KindCommand, st.PipelinePgid, st.IsForeground)
	payloadR.Close()
	if err != nil {
		e.diag("testsh: %v", err)
		return job.Error
	}
	return stats
}

// RunBuiltinWorker is cmd/testsh's worker-mode entry point for a builtin
// (or no-op assignment) spawned inside a pipeline.
func RunBuiltinWorker(bodyFd int) int {
	f := os.NewFile(uintptr(bodyFd), "builtin")
	var payload BuiltinPayload
	if err := gob.NewDecoder(f).Decode(&payload); err != nil {
		fmt.Fprintf(os.Stderr, "testsh: builtin payload decode: %v\n", err)
		return 1
	}
	f.Close()

	if payload.Name == "" || payload.Name == "__assign__" {
		return 0
	}

	sh, err := shell.NewWorker()
	if err != nil {
		fmt.Fprintf(os.Stderr, "testsh: %v\n", err)
		return 1
	}
	sh.Vars = shellvars.FromMap(payload.Vars)
	ex := New(sh, "")
	return ex.runBuiltin(payload.Name, payload.Args).ExitCode
}
