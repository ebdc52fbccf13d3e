package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type ThreadRepository struct {
	db *pgxpool.Pool
}

func NewThreadRepository(db *pgxpool.Pool) *ThreadRepository {
	return &ThreadRepository{db: db}
}

// FindActive returns the user's active thread for the given job link.
// A nil jobID matches the general thread only. Returns nil when no such
// thread exists.
func (r *ThreadRepository) FindActive(ctx context.Context, userID int, jobID *int) (*model.Thread, error) {
	query := `
        SELECT id, user_id, job_id, status, created_at, updated_at
        FROM threads
        WHERE user_id = $1
          AND job_id IS NOT DISTINCT FROM $2
          AND status = 'active'
    `
	var t model.Thread
	err := r.db.QueryRow(ctx, query, userID, jobID).Scan(
		&t.ID, &t.UserID, &t.JobID, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts an active thread. A concurrent insert for the same
// user and job surfaces as ErrDuplicate.
func (r *ThreadRepository) Create(ctx context.Context, t *model.Thread) error {
	query := `
        INSERT INTO threads (user_id, job_id, status, created_at, updated_at)
        VALUES ($1, $2, 'active', NOW(), NOW())
        RETURNING id, status, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, t.UserID, t.JobID).Scan(
		&t.ID, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	return wrapDuplicate(err)
}

// UpdateStatus moves a thread to another lifecycle state.
func (r *ThreadRepository) UpdateStatus(ctx context.Context, id int, status model.ThreadStatus) error {
	query := `
        UPDATE threads
        SET status = $1, updated_at = NOW()
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}
