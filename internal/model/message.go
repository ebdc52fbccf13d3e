package model

import "time"

type MessageType string

const (
	MessageTypeEmail  MessageType = "email"
	MessageTypeSystem MessageType = "system"
)

type MessageSender string

const (
	SenderUser   MessageSender = "user"
	SenderSystem MessageSender = "system"
)

type MessageStatus string

const (
	MessageUnseen    MessageStatus = "unseen"
	MessageSeen      MessageStatus = "seen"
	MessageProcessed MessageStatus = "processed"
)

// Message is one unit of conversation content inside a thread. Rows are
// immutable after insert except for the status column.
type Message struct {
	ID          int
	ThreadID    int
	Content     string
	Subject     string
	Type        MessageType
	Sender      MessageSender
	SenderEmail *string // nil for system messages
	Status      MessageStatus
	CreatedAt   time.Time
}
