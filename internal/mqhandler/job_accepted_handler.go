package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
)

const (
	jobAcceptedSubject = "Print job #%d accepted"
	jobAcceptedBody    = `Hi %s,

Your print job #%d has been accepted and is queued for review.
We will let you know as soon as an operator approves it.

The OpenFarm3-D team`
)

type JobAcceptedHandler struct {
	notifier *Notifier
	logger   *zap.Logger
}

func NewJobAcceptedHandler(n *Notifier, logger *zap.Logger) *JobAcceptedHandler {
	return &JobAcceptedHandler{notifier: n, logger: logger}
}

func (h *JobAcceptedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer recoverPanic(h.logger)

	var p events.JobAcceptedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal JobAcceptedPayload", zap.Error(err))
		return nil
	}

	to, err := h.notifier.recipient(ctx, events.KindJobAccepted, p.JobID)
	if err != nil || to == nil {
		return err
	}

	subject := fmt.Sprintf(jobAcceptedSubject, p.JobID)
	body := fmt.Sprintf(jobAcceptedBody, to.name, p.JobID)
	_, err = h.notifier.despatch(ctx, events.KindJobAccepted, p.JobID, raw, to.address, subject, body)
	return err
}
