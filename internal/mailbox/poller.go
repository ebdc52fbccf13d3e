package mailbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/pkg/metrics"
)

// Poller drives ingestion: one blocking cycle at startup, then one per
// interval. Cycles never overlap because the next tick is not consumed
// until the current cycle finishes.
type Poller struct {
	store     Store
	processor Processor
	interval  time.Duration
	logger    *zap.Logger
}

func NewPoller(store Store, processor Processor, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		store:     store,
		processor: processor,
		interval:  interval,
		logger:    logger,
	}
}

// Run blocks until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("Mail poller started", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.cycle(ctx)
		select {
		case <-ctx.Done():
			p.logger.Info("Mail poller stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	sess, err := p.store.Connect(ctx)
	if err != nil {
		p.logger.Warn("Mail store connection failed", zap.Error(err))
		metrics.IncrementPollCycle("error")
		return
	}
	defer sess.Close()

	inbound, err := sess.FetchUnseen(ctx)
	if err != nil {
		p.logger.Warn("Unseen search failed", zap.Error(err))
		metrics.IncrementPollCycle("error")
		return
	}
	if len(inbound) > 0 {
		p.logger.Info("Processing unread messages", zap.Int("count", len(inbound)))
	}

	for i := range inbound {
		if ctx.Err() != nil {
			return
		}
		p.processOne(ctx, sess, inbound[i])
	}

	metrics.IncrementPollCycle("ok")
}

// processOne shields the batch from a single message's panic and flags
// the source read only after its side effects are finished.
func (p *Poller) processOne(ctx context.Context, sess Session, in Inbound) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Message processing panic recovered",
				zap.Uint32("uid", in.UID),
				zap.Any("panic", r),
			)
		}
	}()

	switch p.processor.ProcessMessage(ctx, in) {
	case Stored, Skipped:
		if err := sess.MarkSeen(ctx, in.UID); err != nil {
			p.logger.Warn("Failed to flag message seen",
				zap.Uint32("uid", in.UID), zap.Error(err))
		}
	case Retry:
		// Left unread for the next cycle.
	}
}
