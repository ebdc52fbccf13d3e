package autoreply

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type fakeRules struct {
	rules []model.AutoReplyRule
	err   error
}

func (f *fakeRules) ListEnabled(ctx context.Context) ([]model.AutoReplyRule, error) {
	return f.rules, f.err
}

type fakeDrafts struct {
	draft *model.ResponseDraft
	err   error
}

func (f *fakeDrafts) FindPendingByThread(ctx context.Context, threadID int) (*model.ResponseDraft, error) {
	return f.draft, f.err
}

type fakeMessages struct {
	created []model.Message
	err     error
}

func (f *fakeMessages) Create(ctx context.Context, m *model.Message) error {
	if f.err != nil {
		return f.err
	}
	m.ID = len(f.created) + 1
	f.created = append(f.created, *m)
	return nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func alwaysRule() model.AutoReplyRule {
	return model.AutoReplyRule{
		ID:      1,
		Enabled: true,
		Type:    model.RuleOutOfOffice,
		Subject: "We are closed",
		Body:    "The farm reopens on Monday.",
	}
}

type responderFixture struct {
	rules    *fakeRules
	drafts   *fakeDrafts
	messages *fakeMessages
	mailer   *fakeMailer
	r        *Responder
}

func newFixture(rules ...model.AutoReplyRule) *responderFixture {
	f := &responderFixture{
		rules:    &fakeRules{rules: rules},
		drafts:   &fakeDrafts{},
		messages: &fakeMessages{},
		mailer:   &fakeMailer{},
	}
	f.r = NewResponder(
		f.rules, f.drafts, f.messages, f.mailer,
		[]string{"inbox@openfarm.example", "outbox@openfarm.example"},
		time.UTC, zap.NewNop(),
	)
	f.r.Now = func() time.Time { return time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func testThread() *model.Thread {
	return &model.Thread{ID: 42, UserID: 7, Status: model.ThreadActive}
}

func TestResponder_SendsMatchingRule(t *testing.T) {
	f := newFixture(alwaysRule())

	sent, err := f.r.MaybeReply(context.Background(), testThread(), "anna@example.com", "Hello")
	if err != nil {
		t.Fatalf("MaybeReply failed: %v", err)
	}
	if !sent {
		t.Fatal("Expected a reply to be sent")
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("Expected 1 mail, got %d", len(f.mailer.sent))
	}
	mail := f.mailer.sent[0]
	if mail.to != "anna@example.com" || mail.subject != "We are closed" || mail.body != "The farm reopens on Monday." {
		t.Errorf("Unexpected mail: %+v", mail)
	}

	if len(f.messages.created) != 1 {
		t.Fatalf("Expected the reply to be recorded, got %d messages", len(f.messages.created))
	}
	rec := f.messages.created[0]
	if rec.ThreadID != 42 || rec.Type != model.MessageTypeSystem || rec.Sender != model.SenderSystem {
		t.Errorf("Unexpected system message: %+v", rec)
	}
	if rec.Status != model.MessageProcessed {
		t.Errorf("Expected recorded reply to be processed, got %s", rec.Status)
	}
	if rec.SenderEmail != nil {
		t.Errorf("System messages carry no sender address, got %v", *rec.SenderEmail)
	}
}

func TestResponder_BlankRuleSubjectUsesReLine(t *testing.T) {
	rule := alwaysRule()
	rule.Subject = ""
	f := newFixture(rule)

	sent, err := f.r.MaybeReply(context.Background(), testThread(), "anna@example.com", "Where is my order?")
	if err != nil || !sent {
		t.Fatalf("MaybeReply = (%v, %v)", sent, err)
	}
	if got := f.mailer.sent[0].subject; got != "Re: Where is my order?" {
		t.Errorf("Expected Re: subject, got %q", got)
	}
}

func TestResponder_SuppressesOwnAddress(t *testing.T) {
	f := newFixture(alwaysRule())

	sent, err := f.r.MaybeReply(context.Background(), testThread(), "Inbox@OpenFarm.example", "loop")
	if err != nil {
		t.Fatalf("MaybeReply failed: %v", err)
	}
	if sent || len(f.mailer.sent) != 0 {
		t.Error("Expected no reply to our own account")
	}
}

func TestResponder_SuppressesNoReplySenders(t *testing.T) {
	f := newFixture(alwaysRule())

	for _, addr := range []string{"no-reply@shop.example", "noreply@bank.example", "NOREPLY@x.example"} {
		sent, err := f.r.MaybeReply(context.Background(), testThread(), addr, "automated")
		if err != nil {
			t.Fatalf("MaybeReply(%s) failed: %v", addr, err)
		}
		if sent {
			t.Errorf("Expected no reply to %s", addr)
		}
	}
	if len(f.mailer.sent) != 0 {
		t.Errorf("Expected no mails, got %d", len(f.mailer.sent))
	}
}

func TestResponder_DeclinesWhenDraftPending(t *testing.T) {
	f := newFixture(alwaysRule())
	f.drafts.draft = &model.ResponseDraft{ID: 5, ThreadID: 42, Status: model.DraftPending}

	sent, err := f.r.MaybeReply(context.Background(), testThread(), "anna@example.com", "ping")
	if err != nil {
		t.Fatalf("MaybeReply failed: %v", err)
	}
	if sent || len(f.mailer.sent) != 0 {
		t.Error("Expected no auto-reply while an operator draft is pending")
	}
}

func TestResponder_NoMatchingRule(t *testing.T) {
	f := newFixture() // empty rule set

	sent, err := f.r.MaybeReply(context.Background(), testThread(), "anna@example.com", "hi")
	if err != nil {
		t.Fatalf("MaybeReply failed: %v", err)
	}
	if sent {
		t.Error("Expected no reply without rules")
	}
}

func TestResponder_MailerFailure(t *testing.T) {
	f := newFixture(alwaysRule())
	f.mailer.err = errors.New("connection refused")

	sent, err := f.r.MaybeReply(context.Background(), testThread(), "anna@example.com", "hi")
	if err == nil {
		t.Fatal("Expected error from failed send")
	}
	if sent {
		t.Error("Expected sent=false on failure")
	}
	if len(f.messages.created) != 0 {
		t.Error("Nothing must be recorded when the send failed")
	}
}

func TestResponder_RecordFailureIsTolerated(t *testing.T) {
	f := newFixture(alwaysRule())
	f.messages.err = errors.New("insert failed")

	sent, err := f.r.MaybeReply(context.Background(), testThread(), "anna@example.com", "hi")
	if err != nil {
		t.Fatalf("Record failure must not surface: %v", err)
	}
	if !sent || len(f.mailer.sent) != 1 {
		t.Error("Expected the reply to still have gone out")
	}
}

func TestResponder_RuleListingFailure(t *testing.T) {
	f := newFixture(alwaysRule())
	f.rules.err = errors.New("db down")

	sent, err := f.r.MaybeReply(context.Background(), testThread(), "anna@example.com", "hi")
	if err == nil {
		t.Fatal("Expected error when rules cannot be loaded")
	}
	if sent || len(f.mailer.sent) != 0 {
		t.Error("Expected no reply when rules cannot be loaded")
	}
}
