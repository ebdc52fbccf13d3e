package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
)

const (
	jobApprovedSubject = "Print job #%d approved"
	jobApprovedBody    = `Hi %s,

An operator approved print job #%d. It is now scheduled for
printing; payment clears the job for the printer queue.

The OpenFarm3-D team`
)

type JobApprovedHandler struct {
	notifier *Notifier
	logger   *zap.Logger
}

func NewJobApprovedHandler(n *Notifier, logger *zap.Logger) *JobApprovedHandler {
	return &JobApprovedHandler{notifier: n, logger: logger}
}

func (h *JobApprovedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer recoverPanic(h.logger)

	var p events.JobApprovedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal JobApprovedPayload", zap.Error(err))
		return nil
	}

	to, err := h.notifier.recipient(ctx, events.KindJobApproved, p.JobID)
	if err != nil || to == nil {
		return err
	}

	subject := fmt.Sprintf(jobApprovedSubject, p.JobID)
	body := fmt.Sprintf(jobApprovedBody, to.name, p.JobID)
	_, err = h.notifier.despatch(ctx, events.KindJobApproved, p.JobID, raw, to.address, subject, body)
	return err
}
