// Package executor walks a parsed syntax tree, composing the redirect
// controller, spawner and waiter packages to run commands, and keeps the
// shell's background-job list.
package executor

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/shell"
	"github.com/Brendon-Mendicino/testsh/pkg/spawn"
	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

// CommandState is the value propagated down the tree walk: the fds a
// command inherits before layering on its own redirects, whether it's the
// shell's foreground job, whether it's a non-last stage of a pipeline, and
// the pgid a pipeline's later stages should join.
type CommandState struct {
	Inherited      map[int]*os.File
	IsForeground   bool
	InsidePipeline bool
	PipelinePgid   int // -1 if no pipeline group exists yet
}

func rootState() CommandState {
	return CommandState{
		Inherited:    map[int]*os.File{0: os.Stdin, 1: os.Stdout, 2: os.Stderr},
		IsForeground: true,
		PipelinePgid: -1,
	}
}

// Worker-mode flags cmd/testsh recognizes to relaunch itself as a
// subshell or async-list child (see pkg/spawn's doc comment on why a
// re-exec is needed at all).
const (
	WorkerSubshellFlag  = "-testsh-worker-subshell"
	WorkerAsyncListFlag = "-testsh-worker-async-list"
	WorkerBuiltinFlag   = "-testsh-worker-builtin"
	WorkerBodyFdFlag    = "-testsh-worker-body-fd"
)

type Executor struct {
	Sh      *shell.Shell
	Spawner *spawn.Spawner
	Waiter  *job.Waiter

	// ReexecPath is argv[0] of the running binary, used to relaunch
	// itself for subshell/async-list children.
	ReexecPath string

	Stderr io.Writer
}

func New(sh *shell.Shell, reexecPath string) *Executor {
	return &Executor{
		Sh:         sh,
		Spawner:    spawn.New(sh),
		Waiter:     job.NewWaiter(sh, os.Stderr),
		ReexecPath: reexecPath,
		Stderr:     os.Stderr,
	}
}

func (e *Executor) diag(format string, args ...any) {
	fmt.Fprintf(e.Stderr, format+"\n", args...)
}

// RunProgram executes every complete command in p in turn, updating
// Sh.LastStatus after each, matching the prompt cycle's "parse, execute"
// step for one buffered line.
func (e *Executor) RunProgram(p *syntax.Program) {
	for _, l := range p.Lists {
		e.Sh.LastStatus = e.ExecList(l, rootState()).ExitCode
	}
}

// ExecList evaluates a SequentialList or AsyncList. Backgrounded jobs
// (from a stopped pipeline or an async spawn) are appended to e.Sh.BgJobs
// directly, matching the background-job list being mutated only by the
// shell's own task.
func (e *Executor) ExecList(n syntax.List, st CommandState) job.ExecStats {
	switch l := n.(type) {
	case *syntax.SequentialList:
		if l.Left != nil {
			e.ExecList(l.Left, st)
		}
		return e.ExecOpList(l.Right, st)
	case *syntax.AsyncList:
		if l.Left != nil {
			e.ExecList(l.Left, st)
		}
		stats, err := e.spawnAsyncListChild(l.Right, st)
		if err != nil {
			e.diag("testsh: %v", err)
			return job.Error
		}
		return stats
	default:
		panic(fmt.Sprintf("testsh: unknown list node %T", n))
	}
}

func (e *Executor) ExecOpList(n syntax.OpList, st CommandState) job.ExecStats {
	switch l := n.(type) {
	case *syntax.AndList:
		left := e.ExecOpList(l.Left, st)
		if left.Signaled && left.Signal == int(unix.SIGINT) {
			return left
		}
		if left.ExitCode != 0 {
			return left
		}
		return e.ExecOpList(l.Right, st)
	case *syntax.OrList:
		left := e.ExecOpList(l.Left, st)
		if left.Signaled && left.Signal == int(unix.SIGINT) {
			return left
		}
		if left.ExitCode == 0 {
			return left
		}
		return e.ExecOpList(l.Right, st)
	case *syntax.Pipeline:
		return e.ExecPipeline(l, st)
	default:
		panic(fmt.Sprintf("testsh: unknown op-list node %T", n))
	}
}
