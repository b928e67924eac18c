package job_test

import (
	"testing"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
)

func TestJobCompletedRequiresEveryProcess(t *testing.T) {
	j := job.New()
	j.Add(job.ExecStats{ChildPid: 1, PipelinePgid: 100, Completed: true})
	if !j.Completed() {
		t.Fatal("one completed process should make a one-process job Completed")
	}
	j.Add(job.ExecStats{ChildPid: 2, PipelinePgid: 100, Completed: false})
	if j.Completed() {
		t.Fatal("a still-running process should make Completed false")
	}
}

func TestJobStoppedToleratesAMixOfStoppedAndCompleted(t *testing.T) {
	j := job.New()
	j.Add(job.ExecStats{ChildPid: 1, PipelinePgid: 100, Completed: true})
	j.Add(job.ExecStats{ChildPid: 2, PipelinePgid: 100, Stopped: true})
	if !j.Stopped() {
		t.Fatal("completed+stopped processes should make Stopped true")
	}
	j.Add(job.ExecStats{ChildPid: 3, PipelinePgid: 100})
	if j.Stopped() {
		t.Fatal("a running (neither completed nor stopped) process should make Stopped false")
	}
}

func TestJobStateClassification(t *testing.T) {
	j := job.New()
	j.Add(job.ExecStats{ChildPid: 1, PipelinePgid: 100})
	if j.State() != job.Running {
		t.Errorf("State() = %v, want Running", j.State())
	}
	j.Procs[1] = job.ExecStats{ChildPid: 1, PipelinePgid: 100, Stopped: true}
	if j.State() != job.StoppedState {
		t.Errorf("State() = %v, want StoppedState", j.State())
	}
	j.Procs[1] = job.ExecStats{ChildPid: 1, PipelinePgid: 100, Completed: true}
	if j.State() != job.Done {
		t.Errorf("State() = %v, want Done", j.State())
	}
}

func TestJobAddSetsPgidFromFirstRealStats(t *testing.T) {
	j := job.New()
	j.Add(job.ExecStats{ChildPid: -1, PipelinePgid: -1, Completed: true})
	if j.Pgid != 0 {
		t.Fatalf("Pgid = %d, want 0 (a PipelinePgid of -1 must not set it)", j.Pgid)
	}
	j.Add(job.ExecStats{ChildPid: 42, PipelinePgid: 4242})
	if j.Pgid != 4242 {
		t.Fatalf("Pgid = %d, want 4242", j.Pgid)
	}
}

func TestJobExecStatsReturnsMasterProcess(t *testing.T) {
	j := job.New()
	j.Add(job.ExecStats{ChildPid: 1, PipelinePgid: 100, ExitCode: 1})
	j.Add(job.ExecStats{ChildPid: 2, PipelinePgid: 100, ExitCode: 7})
	if got := j.ExecStats().ExitCode; got != 7 {
		t.Errorf("ExecStats().ExitCode = %d, want 7 (the last-added/master process)", got)
	}
}

func TestSignalNameKnownAndUnknown(t *testing.T) {
	if got := job.SignalName(15); got != "TERM" {
		t.Errorf("SignalName(15) = %q, want TERM", got)
	}
	if got := job.SignalName(999); got != "?" {
		t.Errorf("SignalName(999) = %q, want ?", got)
	}
}
