package executor

import (
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/lookpath"
)

// runBuiltin dispatches to one of the small job-control builtin set,
// running synchronously in the calling process (the shell itself, or a
// worker standing in for "inside a pipeline").
func (e *Executor) runBuiltin(name string, args []string) job.ExecStats {
	var code int
	switch name {
	case "cd":
		code = e.builtinCd(args)
	case "exec":
		code = e.builtinExec(args) // only returns on failure
	case "exit":
		e.builtinExit(args) // never returns on success
		code = 1
	case "bg":
		code = e.builtinBg(args)
	case "fg":
		code = e.builtinFg(args)
	case "jobs":
		code = e.builtinJobs(args)
	default:
		e.diag("testsh: %s: not a builtin", name)
		code = 127
	}
	return job.ExecStats{ExitCode: code, Completed: true, PipelinePgid: -1}
}

func (e *Executor) builtinCd(args []string) int {
	var target string
	switch {
	case len(args) == 0 || args[0] == "~":
		home, ok := e.Sh.Vars.Get("HOME")
		if !ok || home == "" {
			e.diag("cd: $HOME not set")
			return 1
		}
		target = home
	case len(args) == 1:
		target = args[0]
	default:
		e.diag("cd: too many arguments")
		return 1
	}

	if err := os.Chdir(target); err != nil {
		e.diag("cd: %s: %s", target, unwrapErrno(err))
		return 1
	}
	if wd, err := os.Getwd(); err == nil {
		e.Sh.Vars.SetExternal("PWD", wd)
	}
	return 0
}

func (e *Executor) builtinExec(args []string) int {
	if len(args) < 1 {
		return 0
	}
	wd, _ := e.Sh.Vars.Get("PWD")
	path, status := lookpath.Look(args[0], wd, e.pathVar())
	if status != lookpath.Found {
		e.diag("exec: %s: command not found", args[0])
		return int(status)
	}
	envp := e.buildEnvp(nil)
	err := syscall.Exec(path, args, envp)
	e.diag("exec: %s: %s", args[0], err)
	return 1
}

func (e *Executor) builtinExit(args []string) {
	code := 1
	switch {
	case len(args) > 1:
		e.diag("exit: too many arguments")
		return
	case len(args) == 1:
		n, err := strconv.Atoi(args[0])
		if err == nil {
			code = n
		}
	}
	e.Sh.RestoreShellModes()
	os.Exit(code)
}

func (e *Executor) builtinBg(args []string) int {
	j, err := e.resolveJobArg(args)
	if err != nil {
		e.diag("bg: %v", err)
		return 1
	}
	if err := e.Waiter.Bg(j); err != nil {
		e.diag("bg: %v", err)
		return 1
	}
	fmt.Fprintf(e.Stderr, "[%d]+ %d %s &\n", j.Num, j.Pgid, j.Command)
	return 0
}

func (e *Executor) builtinFg(args []string) int {
	j, err := e.resolveJobArg(args)
	if err != nil {
		e.diag("fg: %v", err)
		return 1
	}
	if err := e.Waiter.Fg(j); err != nil {
		e.diag("fg: %v", err)
		return 1
	}
	return j.ExecStats().ExitCode
}

func (e *Executor) resolveJobArg(args []string) (*job.Job, error) {
	if len(args) == 0 {
		return e.Sh.MostRecentJob()
	}
	return e.Sh.JobSpec(args[0])
}

func (e *Executor) builtinJobs(args []string) int {
	for _, j := range e.Sh.BgJobs {
		fmt.Fprintf(e.Stderr, "[%d]%s %d %-8s %s\n", j.Num, e.Sh.JobMarker(j.Num), j.Pgid, j.State(), j.Command)
	}
	return 0
}

func unwrapErrno(err error) error {
	if pe, ok := err.(*os.PathError); ok {
		return pe.Err
	}
	return err
}
