package model

import "time"

// Job is a print job owned by a user. The job lifecycle itself is managed
// elsewhere; the mail pipeline only reads jobs to validate references and
// to address notifications.
type Job struct {
	ID        int
	UserID    int
	Status    string
	CreatedAt time.Time
}

// ResponseDraft is a reply drafted by the knowledge service for a thread,
// waiting for operator review.
type ResponseDraft struct {
	ID        int
	ThreadID  int
	Content   string
	Status    string
	CreatedAt time.Time
}

const DraftPending = "pending"
