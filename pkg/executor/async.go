package executor

import (
	"fmt"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/spawn"
	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

// spawnAsyncListChild realizes the "Async list" rule of §4.5: spawn one
// worker evaluating right, record it as a background Job, and report it
// without waiting.
func (e *Executor) spawnAsyncListChild(right syntax.OpList, st CommandState) (job.ExecStats, error) {
	body := &syntax.SequentialList{Right: right}

	childSt := st
	childSt.IsForeground = false
	childSt.PipelinePgid = -1

	stats, err := e.spawnWorker(spawn.KindAsyncList, WorkerAsyncListFlag, body, childSt, nil)
	if err != nil {
		return job.Error, err
	}

	j := job.New()
	j.Add(stats)
	j.Command = "async list"
	e.Sh.AddBgJob(j)
	fmt.Fprintf(e.Stderr, "%d: Background\n", stats.PipelinePgid)
	return stats, nil
}
