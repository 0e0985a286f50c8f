package pitches

import (
	"context"
	"time"

	"github.com/krylovda/pitchbook/internal/domain"
	"github.com/krylovda/pitchbook/internal/repository"
)

type PitchUseCase interface {
	List(ctx context.Context) ([]domain.Pitch, error)
	GetByID(ctx context.Context, id int64) (*domain.Pitch, error)
	ConfirmedBookings(ctx context.Context, pitchID int64, date time.Time) ([]domain.Booking, error)
}

type Cache interface {
	GetPitches(ctx context.Context) ([]domain.Pitch, error)
	SetPitches(ctx context.Context, pitches []domain.Pitch) error
}

type PitchService struct {
	repo     repository.PitchRepository
	bookings repository.BookingRepository
	cache    Cache
}

func NewPitchService(repo repository.PitchRepository, bookings repository.BookingRepository, cache Cache) *PitchService {
	return &PitchService{repo: repo, bookings: bookings, cache: cache}
}

func (s *PitchService) List(ctx context.Context) ([]domain.Pitch, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPitches(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	pitches, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetPitches(ctx, pitches)
	}
	return pitches, nil
}

func (s *PitchService) GetByID(ctx context.Context, id int64) (*domain.Pitch, error) {
	return s.repo.FindActiveWithFacility(ctx, id)
}

// ConfirmedBookings lists the occupied windows for a pitch on a date, so
// clients can render availability before submitting a request.
func (s *PitchService) ConfirmedBookings(ctx context.Context, pitchID int64, date time.Time) ([]domain.Booking, error) {
	return s.bookings.FindConfirmed(ctx, pitchID, date)
}

var _ PitchUseCase = (*PitchService)(nil)
