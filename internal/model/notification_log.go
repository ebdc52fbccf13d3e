package model

import "time"

// NotificationLog records one despatched notification mail. Write-only
// from the service side, read by operators for audit.
type NotificationLog struct {
	ID        int
	Kind      string
	EntityID  int
	Recipient string
	Subject   string
	CreatedAt time.Time
}
