package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Brendon-Mendicino/testsh/pkg/job"
)

// AddBgJob records a newly backgrounded job, assigning it the next job
// number. Numbers are reused only once the job table is compacted by
// RemoveDone.
func (sh *Shell) AddBgJob(j *job.Job) {
	j.Num = sh.nextJobNum
	sh.nextJobNum++
	sh.BgJobs = append(sh.BgJobs, j)
	sh.currentJob, sh.previousJob = j.Num, sh.currentJob
}

// RemoveDone drops every job whose processes have all exited, passing each
// dropped job to report (when non-nil) for interactive feedback between
// prompts. The next job number becomes one past the highest number still
// in the table, so numbers freed at the top are handed out again.
func (sh *Shell) RemoveDone(report func(j *job.Job)) {
	kept := sh.BgJobs[:0]
	for _, j := range sh.BgJobs {
		if j.Completed() {
			if report != nil {
				report(j)
			}
			continue
		}
		kept = append(kept, j)
	}
	sh.BgJobs = kept
	sh.nextJobNum = 1
	for _, j := range kept {
		if j.Num >= sh.nextJobNum {
			sh.nextJobNum = j.Num + 1
		}
	}
}

// JobSpec resolves a %-prefixed job-control argument (%N, %+, %-, or bare
// %) to the matching job. A bare numeral or job number with no % prefix is
// also accepted, matching common shell usage.
func (sh *Shell) JobSpec(arg string) (*job.Job, error) {
	spec := strings.TrimPrefix(arg, "%")
	switch spec {
	case "", "+", "%":
		return sh.findJobNum(sh.currentJob, arg)
	case "-":
		return sh.findJobNum(sh.previousJob, arg)
	}
	n, err := strconv.Atoi(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: no such job", arg)
	}
	return sh.findJobNum(n, arg)
}

func (sh *Shell) findJobNum(n int, arg string) (*job.Job, error) {
	for _, j := range sh.BgJobs {
		if j.Num == n {
			return j, nil
		}
	}
	return nil, fmt.Errorf("%s: no such job", arg)
}

// MostRecentJob is used when bg/fg is invoked with no argument.
func (sh *Shell) MostRecentJob() (*job.Job, error) {
	return sh.findJobNum(sh.currentJob, "current")
}

// JobMarker returns "+" for the current job, "-" for the previous job,
// and a single space otherwise, for the "jobs" builtin's listing.
func (sh *Shell) JobMarker(num int) string {
	switch {
	case num == sh.currentJob:
		return "+"
	case num == sh.previousJob:
		return "-"
	default:
		return " "
	}
}
