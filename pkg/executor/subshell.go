package executor

import (
	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/spawn"
	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

// execSubshell is "treated like a simple command except the child's body
// evaluates an inner list, and the spawner uses subshell signal
// dispositions" (§4.5): it only spawns here, the caller (ExecPipeline)
// performs the blocking wait uniformly for every command kind.
func (e *Executor) execSubshell(n *syntax.Subshell, st CommandState) job.ExecStats {
	stats, err := e.spawnWorker(spawn.KindSubshell, WorkerSubshellFlag, n.Body, st, n.Redirects)
	if err != nil {
		e.diag("testsh: %v", err)
		return job.Error
	}
	return stats
}
