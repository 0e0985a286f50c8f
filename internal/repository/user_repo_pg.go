package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krylovda/pitchbook/internal/domain"
)

type UserRepository interface {
	FindActive(ctx context.Context, id int64) (*domain.User, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) FindActive(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, role, is_active FROM users WHERE id=$1 AND is_active`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Role, &u.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, &domain.StorageError{Op: "find active user", Err: err}
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
