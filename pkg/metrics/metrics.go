package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ consume latency in milliseconds
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Inbound email processing counter
	EmailProcessedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_processed_count",
			Help: "Total number of inbound emails processed",
		},
		[]string{"status"}, // status: stored, skipped, retry
	)

	// Mailbox poll cycle counter
	PollCycleCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_poll_cycle_count",
			Help: "Total number of mailbox poll cycles",
		},
		[]string{"status"}, // status: ok, error
	)

	// Automatic reply counter
	AutoReplySentCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auto_reply_sent_count",
			Help: "Total number of automatic replies sent",
		},
	)

	// Outbound notification counter
	NotificationSentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_sent_count",
			Help: "Total number of notification emails sent",
		},
		[]string{"kind"},
	)
)

// RecordMQConsumeLatency records MQ consumption latency
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementEmailProcessed increments the inbound processing counter
func IncrementEmailProcessed(status string) {
	EmailProcessedCount.WithLabelValues(status).Inc()
}

// IncrementPollCycle increments the poll cycle counter
func IncrementPollCycle(status string) {
	PollCycleCount.WithLabelValues(status).Inc()
}

// IncrementAutoReplySent increments the automatic reply counter
func IncrementAutoReplySent() {
	AutoReplySentCount.Inc()
}

// IncrementNotificationSent increments the notification counter
func IncrementNotificationSent(kind string) {
	NotificationSentCount.WithLabelValues(kind).Inc()
}
