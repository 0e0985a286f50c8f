package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krylovda/pitchbook/internal/domain"
)

type PitchRepository interface {
	List(ctx context.Context) ([]domain.Pitch, error)
	// FindActiveWithFacility returns the pitch only when both the pitch and
	// its facility are active.
	FindActiveWithFacility(ctx context.Context, id int64) (*domain.Pitch, error)
}

type PGPitchRepository struct {
	db *pgxpool.Pool
}

func NewPitchRepository(db *pgxpool.Pool) PitchRepository {
	return &PGPitchRepository{db: db}
}

func (r *PGPitchRepository) List(ctx context.Context) ([]domain.Pitch, error) {
	rows, err := r.db.Query(ctx, `SELECT p.id, p.facility_id, p.name, p.sport, p.hourly_rate, p.is_active, p.created_at, p.updated_at
		FROM pitches p JOIN facilities f ON f.id = p.facility_id
		WHERE p.is_active AND f.is_active ORDER BY p.id`)
	if err != nil {
		return nil, &domain.StorageError{Op: "list pitches", Err: err}
	}
	defer rows.Close()

	pitches := make([]domain.Pitch, 0)
	for rows.Next() {
		var p domain.Pitch
		if err := rows.Scan(&p.ID, &p.FacilityID, &p.Name, &p.Sport, &p.HourlyRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, &domain.StorageError{Op: "scan pitch", Err: err}
		}
		pitches = append(pitches, p)
	}
	return pitches, rows.Err()
}

func (r *PGPitchRepository) FindActiveWithFacility(ctx context.Context, id int64) (*domain.Pitch, error) {
	row := r.db.QueryRow(ctx, `SELECT p.id, p.facility_id, p.name, p.sport, p.hourly_rate, p.is_active, p.created_at, p.updated_at
		FROM pitches p JOIN facilities f ON f.id = p.facility_id
		WHERE p.id=$1 AND p.is_active AND f.is_active`, id)
	var p domain.Pitch
	if err := row.Scan(&p.ID, &p.FacilityID, &p.Name, &p.Sport, &p.HourlyRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPitchNotFound
		}
		return nil, &domain.StorageError{Op: "find active pitch", Err: err}
	}
	return &p, nil
}

var _ PitchRepository = (*PGPitchRepository)(nil)
