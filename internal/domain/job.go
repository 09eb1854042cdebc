package domain

// JobState enumerates the lifecycle states a pending provider job reports.
type JobState string

const (
	JobPending    JobState = "pending"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
	JobError      JobState = "error"
)

// IsTerminal reports whether a poll loop should stop at this state.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobError:
		return true
	}
	return false
}

// JobStatus is one poll observation of an asynchronous provider job. It is
// produced by status responses and discarded once terminal; nothing is
// persisted across process restarts.
type JobStatus struct {
	JobID     string
	State     JobState
	RawState  string // provider's own status string, before normalization
	ResultURL string
	Title     string
	Genre     string // provider genre vocabulary, when reported
	CreatedAt string // ISO-8601, passed through from the provider
	UpdatedAt string
}
