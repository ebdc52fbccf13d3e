package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type messageStatusWriter interface {
	UpdateStatus(ctx context.Context, id int, status model.MessageStatus) error
}

// OperatorReplyHandler relays an operator's reply to the customer and
// marks the originating message row processed. Unlike the job handlers
// the recipient rides in the payload itself.
type OperatorReplyHandler struct {
	notifier *Notifier
	messages messageStatusWriter
	logger   *zap.Logger
}

func NewOperatorReplyHandler(n *Notifier, messages messageStatusWriter, logger *zap.Logger) *OperatorReplyHandler {
	return &OperatorReplyHandler{notifier: n, messages: messages, logger: logger}
}

func (h *OperatorReplyHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer recoverPanic(h.logger)

	var p events.OperatorReplyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal OperatorReplyPayload", zap.Error(err))
		return nil
	}
	if p.CustomerAddress == "" {
		h.logger.Warn("Operator reply without customer address",
			zap.Int("thread_id", p.ThreadID),
			zap.Int("message_id", p.MessageID),
		)
		return nil
	}

	sent, err := h.notifier.despatch(ctx, events.KindOperatorReply, p.MessageID, raw, p.CustomerAddress, p.Subject, p.Body)
	if err != nil || !sent {
		return err
	}

	// Best effort: the reply already went out, a stale row state is
	// recoverable from the thread view.
	if err := h.messages.UpdateStatus(ctx, p.MessageID, model.MessageProcessed); err != nil {
		h.logger.Error("Reply sent but message not marked processed",
			zap.Int("message_id", p.MessageID),
			zap.Error(err),
		)
	}
	return nil
}
