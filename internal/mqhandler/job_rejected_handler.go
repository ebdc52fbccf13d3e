package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
)

const (
	jobRejectedSubject = "Print job #%d rejected"
	jobRejectedBody    = `Hi %s,

Unfortunately we cannot take print job #%d: %s.

Reply to this mail if you want to discuss the job or submit a
revised model.

The OpenFarm3-D team`
)

type JobRejectedHandler struct {
	notifier *Notifier
	logger   *zap.Logger
}

func NewJobRejectedHandler(n *Notifier, logger *zap.Logger) *JobRejectedHandler {
	return &JobRejectedHandler{notifier: n, logger: logger}
}

func (h *JobRejectedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer recoverPanic(h.logger)

	var p events.JobRejectedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal JobRejectedPayload", zap.Error(err))
		return nil
	}

	to, err := h.notifier.recipient(ctx, events.KindJobRejected, p.JobID)
	if err != nil || to == nil {
		return err
	}

	reason := p.Reason
	if reason == "" {
		reason = "no reason was given"
	}

	subject := fmt.Sprintf(jobRejectedSubject, p.JobID)
	body := fmt.Sprintf(jobRejectedBody, to.name, p.JobID, reason)
	_, err = h.notifier.despatch(ctx, events.KindJobRejected, p.JobID, raw, to.address, subject, body)
	return err
}
