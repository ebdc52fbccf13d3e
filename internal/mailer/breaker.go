package mailer

import (
	"context"

	"github.com/ObservantAbc123/OpenFarm3-D/pkg/circuitbreaker"
)

// BreakerMailer fails fast while the SMTP relay keeps erroring, so
// senders back off through their retry paths instead of hammering a
// struggling provider.
type BreakerMailer struct {
	next    Mailer
	breaker *circuitbreaker.CircuitBreaker
}

func NewBreakerMailer(next Mailer, cfg circuitbreaker.Config) *BreakerMailer {
	return &BreakerMailer{
		next:    next,
		breaker: circuitbreaker.NewCircuitBreaker(cfg),
	}
}

func (m *BreakerMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.breaker.Execute(func() error {
		return m.next.Send(ctx, to, subject, body)
	})
}
