package ingest

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/mailbox"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/textproc"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/thread"
	"github.com/ObservantAbc123/OpenFarm3-D/pkg/metrics"
)

// placeholderBody is stored when stripping leaves nothing usable.
const placeholderBody = "[no content]"

type threadResolver interface {
	Resolve(ctx context.Context, senderAddress string, jobID *int) (thread.Outcome, *model.Thread, error)
}

type messageStore interface {
	Create(ctx context.Context, m *model.Message) error
}

type autoResponder interface {
	MaybeReply(ctx context.Context, th *model.Thread, senderAddress, originalSubject string) (bool, error)
}

// Service turns one inbound mail into conversation state: clean the
// body, resolve the thread, persist the message, then consider an
// automatic reply. It reports per-message dispositions so the poller
// can flag the source mail accordingly.
type Service struct {
	resolver  threadResolver
	messages  messageStore
	responder autoResponder
	logger    *zap.Logger
}

func NewService(resolver threadResolver, messages messageStore, responder autoResponder, logger *zap.Logger) *Service {
	return &Service{
		resolver:  resolver,
		messages:  messages,
		responder: responder,
		logger:    logger,
	}
}

// ProcessMessage handles a single mail. Persistence failures return
// Retry so the mail stays unread for the next cycle; a mail without a
// sender is Skipped. Auto-reply trouble never affects the stored
// message.
func (s *Service) ProcessMessage(ctx context.Context, in mailbox.Inbound) mailbox.Disposition {
	log := s.logger.With(
		zap.String("ingest_id", uuid.NewString()),
		zap.Uint32("uid", in.UID),
	)

	if in.From == "" {
		log.Warn("Message has no sender address, skipping")
		metrics.IncrementEmailProcessed("skipped")
		return mailbox.Skipped
	}

	body := textproc.Strip(in.Text)
	if body == "" {
		body = textproc.StripHTML(in.HTML)
	}
	usedPlaceholder := false
	if body == "" {
		body = placeholderBody
		usedPlaceholder = true
	}

	var jobRef *int
	if id, ok := textproc.ExtractJobID(in.Subject); ok {
		jobRef = &id
	}

	outcome, th, err := s.resolver.Resolve(ctx, in.From, jobRef)
	if err != nil {
		log.Error("Thread resolution failed", zap.Error(err))
		metrics.IncrementEmailProcessed("retry")
		return mailbox.Retry
	}

	status := model.MessageUnseen
	if usedPlaceholder {
		// Nothing for an operator to read, file it directly.
		status = model.MessageProcessed
	}
	sender := in.From
	msg := &model.Message{
		ThreadID:    th.ID,
		Content:     body,
		Subject:     in.Subject,
		Type:        model.MessageTypeEmail,
		Sender:      model.SenderUser,
		SenderEmail: &sender,
		Status:      status,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		log.Error("Message persistence failed", zap.Error(err))
		metrics.IncrementEmailProcessed("retry")
		return mailbox.Retry
	}

	log.Info("Inbound message stored",
		zap.Int("thread_id", th.ID),
		zap.Int("message_id", msg.ID),
		zap.Bool("new_thread", outcome == thread.OutcomeCreated),
		zap.Intp("job_id", th.JobID),
		zap.Bool("placeholder", usedPlaceholder),
	)

	// Auto-reply trouble is isolated: the message stays stored and the
	// mail still counts as handled.
	if sent, err := s.responder.MaybeReply(ctx, th, in.From, in.Subject); err != nil {
		log.Warn("Auto-reply failed", zap.Error(err))
	} else if sent {
		log.Info("Auto-reply sent", zap.Int("thread_id", th.ID))
	}

	metrics.IncrementEmailProcessed("stored")
	return mailbox.Stored
}
