package executor

import (
	"fmt"
	"os/exec"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/lookpath"
	"github.com/Brendon-Mendicino/testsh/pkg/redirect"
	"github.com/Brendon-Mendicino/testsh/pkg/spawn"
	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

var knownBuiltins = map[string]bool{
	"bg": true, "cd": true, "exec": true, "exit": true, "fg": true, "jobs": true,
}

// ExecCommand dispatches one Command node to its simple-command, simple-
// assignment, or subshell handling.
func (e *Executor) ExecCommand(c syntax.Command, st CommandState) job.ExecStats {
	switch n := c.(type) {
	case *syntax.UnsubCommand:
		return e.execSimple(n, st)
	case *syntax.SimpleAssignment:
		return e.execAssignment(n, st)
	case *syntax.Subshell:
		return e.execSubshell(n, st)
	default:
		panic(fmt.Sprintf("testsh: unknown command node %T", c))
	}
}

func (e *Executor) execSimple(c *syntax.UnsubCommand, st CommandState) job.ExecStats {
	program, progStatus := e.expandWord(c.Program, st)
	args, argStatus := e.expandWords(c.Arguments, st)
	if program == "" && len(args) == 0 {
		return job.ExecStats{ExitCode: progStatus, Completed: true, PipelinePgid: -1}
	}
	if progStatus == 0 {
		progStatus = argStatus
	}

	argv := append([]string{program}, args...)

	if knownBuiltins[program] {
		if st.InsidePipeline {
			return e.spawnBuiltinWorker(program, argv[1:], st, c.Redirects)
		}
		return e.runBuiltin(program, argv[1:])
	}

	return e.spawnExternal(argv, c.Envs, c.Redirects, st)
}

func (e *Executor) execAssignment(c *syntax.SimpleAssignment, st CommandState) job.ExecStats {
	if st.InsidePipeline {
		return e.spawnBuiltinWorker("__assign__", nil, st, c.Redirects)
	}
	for _, a := range c.Envs {
		e.Sh.Vars.Set(a.Key, a.Value)
	}
	return job.ExecStats{ExitCode: 0, Completed: true, PipelinePgid: -1}
}

// spawnExternal resolves program, builds argv/envp, and execs it as a
// fresh process under the inherited redirects.
func (e *Executor) spawnExternal(argv []string, envs []syntax.AssignmentWord, redirs []syntax.Redirect, st CommandState) job.ExecStats {
	ctrl := redirect.New(st.Inherited)
	if err := ctrl.AddRedirects(redirs); err != nil {
		e.diag("testsh: %v", err)
		return job.Error
	}
	defer ctrl.Close()

	wd, _ := e.Sh.Vars.Get("PWD")
	path, status := lookpath.Look(argv[0], wd, e.pathVar())
	if status != lookpath.Found {
		msg := "command not found"
		if status == lookpath.NotExecutable {
			msg = "permission denied"
		}
		e.diag("testsh: %s: %s", argv[0], msg)
		return job.ExecStats{ExitCode: int(status), Completed: true, PipelinePgid: -1}
	}

	stdin, stdout, stderr, extra := ctrl.Resolve()
	cmd := exec.Command(path)
	cmd.Args = argv
	cmd.Env = e.buildEnvp(envs)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr
	cmd.ExtraFiles = extra

	stats, err := e.Spawner.SpawnAsync(cmd, spawn.KindCommand, st.PipelinePgid, st.IsForeground)
	if err != nil {
		e.diag("testsh: %s: %v", argv[0], err)
		return job.Error
	}
	return stats
}

func (e *Executor) pathVar() string {
	if p, ok := e.Sh.Vars.Get("PATH"); ok {
		return p
	}
	return ""
}
