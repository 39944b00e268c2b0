package review

// JobStatus is the state of a background evaluation job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobStarted   JobStatus = "started"
	JobDeferred  JobStatus = "deferred"
	JobScheduled JobStatus = "scheduled"
	JobFinished  JobStatus = "finished"
	JobFailed    JobStatus = "failed"
	JobStopped   JobStatus = "stopped"
	JobCanceled  JobStatus = "canceled"
)

func ParseJobStatus(s string) (JobStatus, error) {
	switch st := JobStatus(s); st {
	case JobQueued, JobStarted, JobDeferred, JobScheduled,
		JobFinished, JobFailed, JobStopped, JobCanceled:
		return st, nil
	}
	return "", &UnknownValueError{Kind: "job status", Value: s}
}

// Job is a snapshot of an evaluation job.
type Job struct {
	ID     string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Result string    `json:"result,omitempty"`
}

// Terminal reports whether the job will not change state again.
func (j Job) Terminal() bool {
	switch j.Status {
	case JobFinished, JobFailed, JobStopped, JobCanceled:
		return true
	}
	return false
}

// Succeeded reports whether the job finished and its report is available.
func (j Job) Succeeded() bool {
	return j.Status == JobFinished
}
