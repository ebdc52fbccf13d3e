package events

// Kind identifies an event type on the bus. The kind doubles as the
// AMQP routing key, so every kind owns exactly one durable queue.
type Kind string

const (
	KindJobAccepted   Kind = "EmailJobAccepted"
	KindJobApproved   Kind = "EmailJobApproved"
	KindJobPaid       Kind = "EmailJobPaid"
	KindPrintStarted  Kind = "EmailPrintStarted"
	KindPrintCleared  Kind = "EmailPrintCleared"
	KindJobRejected   Kind = "EmailJobRejected"
	KindOperatorReply Kind = "EmailOperatorReply"
)

// Queue returns the durable queue name bound to this kind.
func (k Kind) Queue() string {
	return string(k) + ".q"
}

// Kinds lists every event kind the platform publishes.
func Kinds() []Kind {
	return []Kind{
		KindJobAccepted,
		KindJobApproved,
		KindJobPaid,
		KindPrintStarted,
		KindPrintCleared,
		KindJobRejected,
		KindOperatorReply,
	}
}
