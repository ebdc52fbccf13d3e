package mqhandler

import (
	"context"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/mailer"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
	"github.com/ObservantAbc123/OpenFarm3-D/pkg/metrics"
	"github.com/ObservantAbc123/OpenFarm3-D/pkg/util"
)

const maxSendRetries = 5

type jobReader interface {
	FindByID(ctx context.Context, id int) (*model.Job, error)
}

type userReader interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type addressReader interface {
	FindPrimaryByUser(ctx context.Context, userID int) (*model.EmailAddress, error)
}

type deduper interface {
	AcquireOnce(ctx context.Context, handler string, id int) bool
	Release(ctx context.Context, handler string, id int)
}

type retryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type dlqPublisher interface {
	PublishToDLQ(kind events.Kind, payload []byte, originalError string) error
}

type notificationLogWriter interface {
	Insert(ctx context.Context, l *model.NotificationLog) error
}

// target is a deliverable recipient for a job event.
type target struct {
	name    string
	address string
}

// Notifier carries the delivery plumbing every event handler shares:
// recipient lookup, redis dedup, bounded send retry and dead-letter
// parking. The handlers themselves only differ in payload and copy.
type Notifier struct {
	jobs      jobReader
	users     userReader
	addresses addressReader

	mailer  mailer.Mailer
	dedup   deduper
	retries retryCounter
	dlq     dlqPublisher
	logs    notificationLogWriter
	logger  *zap.Logger
}

func NewNotifier(
	jobs jobReader,
	users userReader,
	addresses addressReader,
	m mailer.Mailer,
	dedup deduper,
	retries retryCounter,
	dlq dlqPublisher,
	logs notificationLogWriter,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		jobs:      jobs,
		users:     users,
		addresses: addresses,
		mailer:    m,
		dedup:     dedup,
		retries:   retries,
		dlq:       dlq,
		logs:      logs,
		logger:    logger,
	}
}

// recipient resolves the job owner's primary address. nil target with
// nil error means the event has nobody to deliver to and must be acked
// without mail.
func (n *Notifier) recipient(ctx context.Context, kind events.Kind, jobID int) (*target, error) {
	job, err := n.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, n.repoError(kind, "FindJob", err)
	}
	if job == nil {
		n.logger.Warn("Event references unknown job",
			zap.String("kind", string(kind)),
			zap.Int("job_id", jobID),
		)
		return nil, nil
	}

	owner, err := n.users.FindByID(ctx, job.UserID)
	if err != nil {
		return nil, n.repoError(kind, "FindOwner", err)
	}
	if owner.Suspended {
		n.logger.Info("Job owner is suspended, no mail",
			zap.String("kind", string(kind)),
			zap.Int("job_id", jobID),
			zap.Int("user_id", owner.ID),
		)
		return nil, nil
	}

	addr, err := n.addresses.FindPrimaryByUser(ctx, job.UserID)
	if err != nil {
		return nil, n.repoError(kind, "FindPrimaryAddress", err)
	}
	if addr == nil {
		n.logger.Warn("Job owner has no address on file",
			zap.String("kind", string(kind)),
			zap.Int("job_id", jobID),
			zap.Int("user_id", owner.ID),
		)
		return nil, nil
	}

	return &target{name: owner.DisplayName, address: addr.Address}, nil
}

// despatch sends one mail at most once per (kind, id). Returns whether
// the mail actually went out; duplicate events and exhausted retries
// come back (false, nil) so the consumer acks them.
func (n *Notifier) despatch(ctx context.Context, kind events.Kind, id int, raw []byte, to, subject, body string) (bool, error) {
	name := string(kind)
	if !n.dedup.AcquireOnce(ctx, name, id) {
		n.logger.Info("Duplicate event skipped",
			zap.String("kind", name),
			zap.Int("id", id),
		)
		return false, nil
	}

	retryKey := util.FormatRetryKey(name, id)
	attempt, _ := n.retries.IncrementAndGet(ctx, retryKey)

	if err := n.mailer.Send(ctx, to, subject, body); err != nil {
		// Free the slot so the redelivered event is not mistaken
		// for a duplicate.
		n.dedup.Release(ctx, name, id)

		isRetryable, errType := util.IsRetryableError(err)
		n.logger.Error("Notification send failed",
			zap.String("kind", name),
			zap.Int("id", id),
			zap.String("to", to),
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Int64("attempt", attempt),
			zap.Error(err),
		)

		if !isRetryable || attempt >= maxSendRetries {
			if dlqErr := n.dlq.PublishToDLQ(kind, raw, err.Error()); dlqErr != nil {
				n.logger.Error("Failed to park event on DLQ",
					zap.String("kind", name),
					zap.Error(dlqErr),
				)
			}
			n.retries.Reset(ctx, retryKey)
			return false, nil
		}
		return false, err
	}

	n.retries.Reset(ctx, retryKey)
	metrics.IncrementNotificationSent(name)

	entry := &model.NotificationLog{Kind: name, EntityID: id, Recipient: to, Subject: subject}
	if err := n.logs.Insert(ctx, entry); err != nil {
		n.logger.Warn("Notification despatched but not logged",
			zap.String("kind", name),
			zap.Int("id", id),
			zap.Error(err),
		)
	}

	n.logger.Info("Notification sent",
		zap.String("kind", name),
		zap.Int("id", id),
		zap.String("to", to),
	)
	return true, nil
}

// repoError keeps retryable errors on the requeue path and swallows the
// rest.
func (n *Notifier) repoError(kind events.Kind, op string, err error) error {
	isRetryable, errType := util.IsRetryableError(err)
	n.logger.Error("Repo error",
		zap.String("kind", string(kind)),
		zap.String("op", op),
		zap.String("error_type", errType),
		zap.Bool("retryable", isRetryable),
		zap.Error(err),
	)
	if isRetryable {
		return err
	}
	return nil
}

func recoverPanic(logger *zap.Logger) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered in handler", zap.Any("panic", r))
	}
}
