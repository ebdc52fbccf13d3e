package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ObservantAbc123/OpenFarm3-D/pkg/circuitbreaker"
)

type stubMailer struct {
	calls int
	err   error
}

func (s *stubMailer) Send(ctx context.Context, to, subject, body string) error {
	s.calls++
	return s.err
}

func TestBreakerMailer_PassesThrough(t *testing.T) {
	stub := &stubMailer{}
	m := NewBreakerMailer(stub, circuitbreaker.DefaultConfig())

	if err := m.Send(context.Background(), "a@b.c", "s", "b"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("Expected 1 delegate call, got %d", stub.calls)
	}
}

func TestBreakerMailer_FailsFastWhenOpen(t *testing.T) {
	stub := &stubMailer{err: errors.New("smtp down")}
	m := NewBreakerMailer(stub, circuitbreaker.Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})
	ctx := context.Background()

	m.Send(ctx, "a@b.c", "s", "b")
	m.Send(ctx, "a@b.c", "s", "b")

	err := m.Send(ctx, "a@b.c", "s", "b")
	if !errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
		t.Fatalf("Expected open breaker, got %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("Open breaker must not reach the relay, got %d calls", stub.calls)
	}
}
