package model

import "time"

type User struct {
	ID          int
	DisplayName string
	Verified    bool
	Suspended   bool
	CreatedAt   time.Time
}

// EmailAddress records ownership of an address by a user. A user may own
// several addresses; one of them is expected to be flagged primary.
type EmailAddress struct {
	UserID    int
	Address   string
	IsPrimary bool
}
