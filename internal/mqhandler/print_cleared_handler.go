package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
)

const (
	printClearedSubject = "Print job #%d is done"
	printClearedBody    = `Hi %s,

Print job #%d has finished printing and passed the post-print
check. It is ready for pickup or dispatch, whichever you chose.

The OpenFarm3-D team`
)

type PrintClearedHandler struct {
	notifier *Notifier
	logger   *zap.Logger
}

func NewPrintClearedHandler(n *Notifier, logger *zap.Logger) *PrintClearedHandler {
	return &PrintClearedHandler{notifier: n, logger: logger}
}

func (h *PrintClearedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer recoverPanic(h.logger)

	var p events.PrintClearedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal PrintClearedPayload", zap.Error(err))
		return nil
	}

	to, err := h.notifier.recipient(ctx, events.KindPrintCleared, p.JobID)
	if err != nil || to == nil {
		return err
	}

	subject := fmt.Sprintf(printClearedSubject, p.JobID)
	body := fmt.Sprintf(printClearedBody, to.name, p.JobID)
	_, err = h.notifier.despatch(ctx, events.KindPrintCleared, p.JobID, raw, to.address, subject, body)
	return err
}
