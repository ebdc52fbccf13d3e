package model

import "time"

type ThreadStatus string

const (
	ThreadActive   ThreadStatus = "active"
	ThreadArchived ThreadStatus = "archived"
	ThreadClosed   ThreadStatus = "closed"
)

// Thread is one conversation between a user and the shop, optionally
// scoped to a single job. At most one thread per (user, job) is active.
type Thread struct {
	ID        int
	UserID    int
	JobID     *int
	Status    ThreadStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
