package reconcile

import (
	"context"

	"github.com/julianstephens/weekgrid/internal/models"
)

// commitFunc runs on the event loop once a job's remote work is done.
type commitFunc func(r *Reconciler)

// Job is remote work produced by a reconciler operation. Run may be called
// from any goroutine; it touches no reconciler state. The Result must be
// handed back to Apply on the goroutine that owns the reconciler.
type Job struct {
	Action Action
	Week   models.WeekKey

	keys     []models.SlotKey
	rollback *Mutation
	// quiet failures are logged but not reported to the listener.
	quiet bool
	call  func(ctx context.Context) Result
}

// Result is the outcome of Job.Run.
type Result struct {
	Job *Job
	Err error

	// Weeks is filled by CopyCandidates jobs.
	Weeks []models.WeekKey
	// Copied and Skipped are filled by CopyWeek jobs.
	Copied  int
	Skipped int

	commit commitFunc
}

// Run performs the job's remote calls.
func (j *Job) Run(ctx context.Context) Result {
	res := j.call(ctx)
	res.Job = j
	return res
}

// Run executes job synchronously and applies its result. It is the path
// used by one-shot CLI commands. A nil job is a no-op.
func (r *Reconciler) Run(ctx context.Context, job *Job) (Result, error) {
	if job == nil {
		return Result{}, nil
	}
	res := job.Run(ctx)
	r.Apply(res)
	return res, res.Err
}

func failed(err error) Result {
	return Result{Err: err}
}
