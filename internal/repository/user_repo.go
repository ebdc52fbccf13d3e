package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithEmail inserts a user together with their first address in
// one transaction, so a failed run never leaves an address-less user.
func (r *UserRepository) CreateWithEmail(ctx context.Context, u *model.User, address string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO users (display_name, verified, suspended, created_at)
        VALUES ($1, FALSE, FALSE, NOW())
        RETURNING id, created_at
    `
	if err := tx.QueryRow(ctx, query, u.DisplayName).Scan(&u.ID, &u.CreatedAt); err != nil {
		return err
	}

	query = `
        INSERT INTO emails (user_id, address, is_primary)
        VALUES ($1, $2, TRUE)
    `
	if _, err := tx.Exec(ctx, query, u.ID, address); err != nil {
		return wrapDuplicate(err)
	}

	return tx.Commit(ctx)
}

// FindByID returns a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
        SELECT id, display_name, verified, suspended, created_at
        FROM users
        WHERE id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.DisplayName, &u.Verified, &u.Suspended, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
