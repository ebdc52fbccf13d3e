package autoreply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/mailer"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
	"github.com/ObservantAbc123/OpenFarm3-D/pkg/metrics"
)

type ruleStore interface {
	ListEnabled(ctx context.Context) ([]model.AutoReplyRule, error)
}

type draftStore interface {
	FindPendingByThread(ctx context.Context, threadID int) (*model.ResponseDraft, error)
}

type messageStore interface {
	Create(ctx context.Context, m *model.Message) error
}

// Responder decides whether an inbound message earns an automatic reply
// and sends it. The decision never touches the stored inbound message;
// callers log responder errors and move on.
type Responder struct {
	rules    ruleStore
	drafts   draftStore
	messages messageStore
	mailer   mailer.Mailer
	self     []string
	loc      *time.Location
	logger   *zap.Logger

	// Now is the clock used for rule evaluation, swappable in tests.
	Now func() time.Time
}

func NewResponder(
	rules ruleStore,
	drafts draftStore,
	messages messageStore,
	m mailer.Mailer,
	selfAddresses []string,
	loc *time.Location,
	logger *zap.Logger,
) *Responder {
	return &Responder{
		rules:    rules,
		drafts:   drafts,
		messages: messages,
		mailer:   m,
		self:     selfAddresses,
		loc:      loc,
		logger:   logger,
		Now:      time.Now,
	}
}

// MaybeReply evaluates the rule set for the thread's newest inbound
// message and sends the matching template, if any. Returns whether a
// reply went out.
func (r *Responder) MaybeReply(ctx context.Context, th *model.Thread, senderAddress, originalSubject string) (bool, error) {
	if r.isSuppressed(senderAddress) {
		r.logger.Debug("Auto-reply suppressed for address", zap.String("address", senderAddress))
		return false, nil
	}

	rules, err := r.rules.ListEnabled(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load auto-reply rules: %w", err)
	}
	rule := FirstMatch(rules, r.Now(), r.loc)
	if rule == nil {
		return false, nil
	}

	draft, err := r.drafts.FindPendingByThread(ctx, th.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check pending drafts: %w", err)
	}
	if draft != nil {
		// An operator answer is already on its way, stay quiet.
		r.logger.Info("Auto-reply declined, operator draft pending",
			zap.Int("thread_id", th.ID),
			zap.Int("rule_id", rule.ID),
		)
		return false, nil
	}

	subject := strings.TrimSpace(rule.Subject)
	if subject == "" {
		subject = "Re: " + originalSubject
	}

	if err := r.mailer.Send(ctx, senderAddress, subject, rule.Body); err != nil {
		return false, fmt.Errorf("failed to send auto-reply: %w", err)
	}
	metrics.IncrementAutoReplySent()
	r.logger.Info("Auto-reply sent",
		zap.Int("thread_id", th.ID),
		zap.Int("rule_id", rule.ID),
		zap.String("to", senderAddress),
	)

	record := &model.Message{
		ThreadID: th.ID,
		Content:  rule.Body,
		Subject:  subject,
		Type:     model.MessageTypeSystem,
		Sender:   model.SenderSystem,
		Status:   model.MessageProcessed,
	}
	if err := r.messages.Create(ctx, record); err != nil {
		// The reply already left, so the thread record is best effort.
		r.logger.Warn("Failed to record auto-reply in thread",
			zap.Int("thread_id", th.ID),
			zap.Error(err),
		)
	}
	return true, nil
}

// isSuppressed stops replies to our own accounts and to obvious
// machine senders, which would otherwise loop.
func (r *Responder) isSuppressed(address string) bool {
	a := strings.ToLower(address)
	if strings.Contains(a, "no-reply") || strings.Contains(a, "noreply") {
		return true
	}
	for _, self := range r.self {
		if self != "" && a == strings.ToLower(self) {
			return true
		}
	}
	return false
}
