package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type EmailRepository struct {
	db *pgxpool.Pool
}

func NewEmailRepository(db *pgxpool.Pool) *EmailRepository {
	return &EmailRepository{db: db}
}

// FindByAddress returns every stored address matching the given one,
// case-insensitively, ordered by owner id. Sender resolution takes the
// first entry when an address is registered more than once.
func (r *EmailRepository) FindByAddress(ctx context.Context, address string) ([]model.EmailAddress, error) {
	query := `
        SELECT user_id, address, is_primary
        FROM emails
        WHERE lower(address) = lower($1)
        ORDER BY user_id
    `
	rows, err := r.db.Query(ctx, query, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []model.EmailAddress{}
	for rows.Next() {
		var e model.EmailAddress
		if err := rows.Scan(&e.UserID, &e.Address, &e.IsPrimary); err != nil {
			return nil, err
		}
		matches = append(matches, e)
	}
	return matches, rows.Err()
}

// FindPrimaryByUser returns the user's primary address, falling back to
// any address when no primary is flagged. Returns nil when the user has
// no addresses at all.
func (r *EmailRepository) FindPrimaryByUser(ctx context.Context, userID int) (*model.EmailAddress, error) {
	query := `
        SELECT user_id, address, is_primary
        FROM emails
        WHERE user_id = $1
        ORDER BY is_primary DESC, address
        LIMIT 1
    `
	var e model.EmailAddress
	err := r.db.QueryRow(ctx, query, userID).Scan(&e.UserID, &e.Address, &e.IsPrimary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
