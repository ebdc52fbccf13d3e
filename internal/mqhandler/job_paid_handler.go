package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
)

const (
	jobPaidSubject = "Payment received for print job #%d"
	jobPaidBody    = `Hi %s,

We received your payment for print job #%d. The job is cleared
for the printer queue and you will hear from us when it starts.

The OpenFarm3-D team`
)

type JobPaidHandler struct {
	notifier *Notifier
	logger   *zap.Logger
}

func NewJobPaidHandler(n *Notifier, logger *zap.Logger) *JobPaidHandler {
	return &JobPaidHandler{notifier: n, logger: logger}
}

func (h *JobPaidHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer recoverPanic(h.logger)

	var p events.JobPaidPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal JobPaidPayload", zap.Error(err))
		return nil
	}

	to, err := h.notifier.recipient(ctx, events.KindJobPaid, p.JobID)
	if err != nil || to == nil {
		return err
	}

	subject := fmt.Sprintf(jobPaidSubject, p.JobID)
	body := fmt.Sprintf(jobPaidBody, to.name, p.JobID)
	_, err = h.notifier.despatch(ctx, events.KindJobPaid, p.JobID, raw, to.address, subject, body)
	return err
}
