package mailbox

import (
	"context"
	"time"
)

// Inbound is one unread message pulled from the mail store.
type Inbound struct {
	UID     uint32
	From    string
	Subject string
	Date    time.Time
	Text    string
	HTML    string
}

// Disposition tells the poller what to do with the source message after
// processing.
type Disposition int

const (
	// Retry leaves the message unread so the next cycle sees it again.
	Retry Disposition = iota
	// Stored means the message was persisted and can be flagged read.
	Stored
	// Skipped means the message is unusable and can be flagged read
	// without being stored.
	Skipped
)

// Processor handles one inbound message.
type Processor interface {
	ProcessMessage(ctx context.Context, in Inbound) Disposition
}

// Session is one authenticated, folder-selected mail store connection.
type Session interface {
	FetchUnseen(ctx context.Context) ([]Inbound, error)
	MarkSeen(ctx context.Context, uid uint32) error
	Close() error
}

// Store opens sessions against the mail account.
type Store interface {
	Connect(ctx context.Context) (Session, error)
}
