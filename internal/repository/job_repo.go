package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type JobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

// FindByID returns a job by id, or nil when no such job exists.
func (r *JobRepository) FindByID(ctx context.Context, id int) (*model.Job, error) {
	query := `
        SELECT id, user_id, status, created_at
        FROM jobs
        WHERE id = $1
    `
	var j model.Job
	err := r.db.QueryRow(ctx, query, id).Scan(&j.ID, &j.UserID, &j.Status, &j.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}
