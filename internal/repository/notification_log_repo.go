package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type NotificationLogRepository struct {
	db *pgxpool.Pool
}

func NewNotificationLogRepository(db *pgxpool.Pool) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) Insert(ctx context.Context, l *model.NotificationLog) error {
	query := `
        INSERT INTO notification_logs (kind, entity_id, recipient, subject, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		l.Kind, l.EntityID, l.Recipient, l.Subject,
	).Scan(&l.ID, &l.CreatedAt)
}
