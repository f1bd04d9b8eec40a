package hyp3

import "time"

// Job statuses reported by the HyP3 API.
const (
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// jobsResponse is one page of the HyP3 /jobs listing.
type jobsResponse struct {
	Jobs []Job  `json:"jobs"`
	Next string `json:"next,omitempty"`
}

// Job is one processing job in a HyP3 subscription.
type Job struct {
	JobID          string        `json:"job_id"`
	Name           string        `json:"name"`
	JobType        string        `json:"job_type"`
	StatusCode     string        `json:"status_code"`
	UserID         string        `json:"user_id"`
	RequestTime    time.Time     `json:"request_time"`
	ExpirationTime *time.Time    `json:"expiration_time"`
	Files          []JobFile     `json:"files,omitempty"`
	JobParameters  JobParameters `json:"job_parameters"`
}

// JobFile is one downloadable result archive of a finished job.
type JobFile struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

// JobParameters carries the processing request; for RTC jobs the granules
// list holds exactly one scene name.
type JobParameters struct {
	Granules []string `json:"granules,omitempty"`
}

// Granule returns the scene the job was processed from, or "" if the job
// carries no granule list.
func (j *Job) Granule() string {
	if len(j.JobParameters.Granules) == 0 {
		return ""
	}
	return j.JobParameters.Granules[0]
}

// Succeeded reports whether the job finished successfully.
func (j *Job) Succeeded() bool {
	return j.StatusCode == StatusSucceeded
}

// Expired reports whether the job's result files are past their expiration
// time as of now. Jobs without an expiration never expire.
func (j *Job) Expired(now time.Time) bool {
	return j.ExpirationTime != nil && now.After(*j.ExpirationTime)
}
