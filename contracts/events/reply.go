package events

// OperatorReplyPayload is published when an operator answers a customer
// thread from the dashboard. The mail service relays it by email.
type OperatorReplyPayload struct {
	ThreadID        int    `json:"thread_id"`
	MessageID       int    `json:"message_id"`
	CustomerAddress string `json:"customer_address"`
	Subject         string `json:"subject"`
	Body            string `json:"body"`
}
