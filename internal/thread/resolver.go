package thread

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/repository"
)

// Outcome says whether Resolve reused an existing thread or made one.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeExisting
	OutcomeCreated
)

type userStore interface {
	CreateWithEmail(ctx context.Context, u *model.User, address string) error
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type emailStore interface {
	FindByAddress(ctx context.Context, address string) ([]model.EmailAddress, error)
}

type threadStore interface {
	FindActive(ctx context.Context, userID int, jobID *int) (*model.Thread, error)
	Create(ctx context.Context, t *model.Thread) error
}

type jobStore interface {
	FindByID(ctx context.Context, id int) (*model.Job, error)
}

// Resolver maps a sender address and an optional job reference onto the
// single active thread that conversation belongs to, creating user and
// thread rows on first contact. Running it twice for the same input
// lands on the same thread.
type Resolver struct {
	users   userStore
	emails  emailStore
	threads threadStore
	jobs    jobStore
	logger  *zap.Logger
}

func NewResolver(users userStore, emails emailStore, threads threadStore, jobs jobStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		users:   users,
		emails:  emails,
		threads: threads,
		jobs:    jobs,
		logger:  logger,
	}
}

// Resolve finds or creates the active thread for a sender. An unknown
// job reference downgrades to the sender's general thread instead of
// failing. Persistence errors return OutcomeFailed so the caller can
// leave the mail unread for the next cycle.
func (r *Resolver) Resolve(ctx context.Context, senderAddress string, jobID *int) (Outcome, *model.Thread, error) {
	user, err := r.findOrCreateUser(ctx, senderAddress)
	if err != nil {
		return OutcomeFailed, nil, err
	}

	linkID, err := r.validateJobLink(ctx, user, jobID)
	if err != nil {
		return OutcomeFailed, nil, err
	}

	existing, err := r.threads.FindActive(ctx, user.ID, linkID)
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("failed to look up thread: %w", err)
	}
	if existing != nil {
		return OutcomeExisting, existing, nil
	}

	t := &model.Thread{
		UserID: user.ID,
		JobID:  linkID,
		Status: model.ThreadActive,
	}
	if err := r.threads.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent cycle created the thread first; use theirs.
			winner, ferr := r.threads.FindActive(ctx, user.ID, linkID)
			if ferr == nil && winner != nil {
				return OutcomeExisting, winner, nil
			}
		}
		return OutcomeFailed, nil, fmt.Errorf("failed to create thread: %w", err)
	}

	r.logger.Info("Created thread",
		zap.Int("thread_id", t.ID),
		zap.Int("user_id", user.ID),
		zap.Intp("job_id", linkID),
	)
	return OutcomeCreated, t, nil
}

func (r *Resolver) findOrCreateUser(ctx context.Context, address string) (*model.User, error) {
	matches, err := r.emails.FindByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to look up address: %w", err)
	}
	if len(matches) > 0 {
		// First match wins when the address is registered twice.
		if len(matches) > 1 {
			r.logger.Warn("Address registered for multiple users",
				zap.String("address", address),
				zap.Int("matches", len(matches)),
			)
		}
		user, err := r.users.FindByID(ctx, matches[0].UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		return user, nil
	}

	user := &model.User{DisplayName: displayNameFor(address)}
	if err := r.users.CreateWithEmail(ctx, user, address); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Someone registered the address between lookup and insert.
			again, ferr := r.emails.FindByAddress(ctx, address)
			if ferr == nil && len(again) > 0 {
				return r.users.FindByID(ctx, again[0].UserID)
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("Created user from sender address",
		zap.Int("user_id", user.ID),
		zap.String("display_name", user.DisplayName),
	)
	return user, nil
}

// validateJobLink keeps the job reference only when the job exists and
// belongs to the sender. Anything else falls back to the general thread.
func (r *Resolver) validateJobLink(ctx context.Context, user *model.User, jobID *int) (*int, error) {
	if jobID == nil {
		return nil, nil
	}
	job, err := r.jobs.FindByID(ctx, *jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job: %w", err)
	}
	if job == nil {
		r.logger.Info("Unknown job reference, using general thread",
			zap.Int("job_id", *jobID),
			zap.Int("user_id", user.ID),
		)
		return nil, nil
	}
	if job.UserID != user.ID {
		r.logger.Warn("Job reference belongs to another user, using general thread",
			zap.Int("job_id", *jobID),
			zap.Int("user_id", user.ID),
			zap.Int("owner_id", job.UserID),
		)
		return nil, nil
	}
	return jobID, nil
}

// displayNameFor derives a provisional display name from the local part
// of the address, capitalized.
func displayNameFor(address string) string {
	local := address
	if i := strings.Index(address, "@"); i > 0 {
		local = address[:i]
	}
	if local == "" {
		return address
	}
	runes := []rune(local)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
