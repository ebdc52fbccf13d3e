package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type DraftRepository struct {
	db *pgxpool.Pool
}

func NewDraftRepository(db *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{db: db}
}

// FindPendingByThread returns the oldest pending operator draft for a
// thread, or nil when the thread has none.
func (r *DraftRepository) FindPendingByThread(ctx context.Context, threadID int) (*model.ResponseDraft, error) {
	query := `
        SELECT id, thread_id, content, status, created_at
        FROM response_drafts
        WHERE thread_id = $1 AND status = 'pending'
        ORDER BY created_at, id
        LIMIT 1
    `
	var d model.ResponseDraft
	err := r.db.QueryRow(ctx, query, threadID).Scan(
		&d.ID, &d.ThreadID, &d.Content, &d.Status, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
