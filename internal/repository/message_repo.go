package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message and bumps the owning thread's updated_at in
// the same transaction.
func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO messages (thread_id, content, subject, type, sender, sender_email, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING id, created_at
    `
	err = tx.QueryRow(ctx, query,
		m.ThreadID, m.Content, m.Subject, m.Type, m.Sender, m.SenderEmail, m.Status,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return err
	}

	query = `
        UPDATE threads
        SET updated_at = NOW()
        WHERE id = $1
    `
	if _, err := tx.Exec(ctx, query, m.ThreadID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListByThread returns a thread's messages oldest first.
func (r *MessageRepository) ListByThread(ctx context.Context, threadID int) ([]model.Message, error) {
	query := `
        SELECT id, thread_id, content, subject, type, sender, sender_email, status, created_at
        FROM messages
        WHERE thread_id = $1
        ORDER BY created_at, id
    `
	rows, err := r.db.Query(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		err := rows.Scan(
			&m.ID, &m.ThreadID, &m.Content, &m.Subject,
			&m.Type, &m.Sender, &m.SenderEmail, &m.Status, &m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UpdateStatus sets a message's handling status.
func (r *MessageRepository) UpdateStatus(ctx context.Context, id int, status model.MessageStatus) error {
	query := `
        UPDATE messages
        SET status = $1
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}
