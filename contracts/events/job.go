package events

// JobAcceptedPayload is published when an operator accepts a print job.
type JobAcceptedPayload struct {
	JobID int `json:"job_id"`
}

// JobApprovedPayload is published when a job passes the pre-print review.
type JobApprovedPayload struct {
	JobID int `json:"job_id"`
}

// JobPaidPayload is published when payment for a job is confirmed.
type JobPaidPayload struct {
	JobID int `json:"job_id"`
}

// PrintStartedPayload is published when a job enters production.
type PrintStartedPayload struct {
	JobID int `json:"job_id"`
}

// PrintClearedPayload is published when a finished print is ready for pickup.
type PrintClearedPayload struct {
	JobID int `json:"job_id"`
}

// JobRejectedPayload is published when an operator rejects a print job.
type JobRejectedPayload struct {
	JobID  int    `json:"job_id"`
	Reason string `json:"reason,omitempty"`
}
