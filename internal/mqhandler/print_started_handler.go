package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
)

const (
	printStartedSubject = "Print job #%d is on the printer"
	printStartedBody    = `Hi %s,

Print job #%d just started printing. We will send another mail
the moment it comes off the bed.

The OpenFarm3-D team`
)

type PrintStartedHandler struct {
	notifier *Notifier
	logger   *zap.Logger
}

func NewPrintStartedHandler(n *Notifier, logger *zap.Logger) *PrintStartedHandler {
	return &PrintStartedHandler{notifier: n, logger: logger}
}

func (h *PrintStartedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer recoverPanic(h.logger)

	var p events.PrintStartedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal PrintStartedPayload", zap.Error(err))
		return nil
	}

	to, err := h.notifier.recipient(ctx, events.KindPrintStarted, p.JobID)
	if err != nil || to == nil {
		return err
	}

	subject := fmt.Sprintf(printStartedSubject, p.JobID)
	body := fmt.Sprintf(printStartedBody, to.name, p.JobID)
	_, err = h.notifier.despatch(ctx, events.KindPrintStarted, p.JobID, raw, to.address, subject, body)
	return err
}
