package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/krylovda/pitchbook/internal/domain"
	"github.com/krylovda/pitchbook/internal/kafka"
	"github.com/krylovda/pitchbook/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error)
	RejectBooking(ctx context.Context, token string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, token string) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

type Cache interface {
	AcquireSlotLock(ctx context.Context, pitchID int64, date time.Time, start, end domain.TimeOfDay, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, pitchID int64, date time.Time, start, end domain.TimeOfDay) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings     repository.BookingRepository
	pitches      repository.PitchRepository
	users        repository.UserRepository
	cache        Cache
	producer     Producer
	bookingTopic string
	holdTTL      time.Duration
	pendingTTL   time.Duration
	now          func() time.Time
}

type CreateBookingInput struct {
	PlayerID    int64  `json:"player_id"`
	PitchID     int64  `json:"pitch_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Notes       string `json:"notes"`
}

type BookingServiceOption func(*BookingService)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	pitches repository.PitchRepository,
	users repository.UserRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	holdTTL, pendingTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		pitches:      pitches,
		users:        users,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		holdTTL:      holdTTL,
		pendingTTL:   pendingTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	date, err := time.Parse("2006-01-02", input.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad booking date %q", domain.ErrInvalidTimeRange, input.BookingDate)
	}

	if _, err := s.users.FindActive(ctx, input.PlayerID); err != nil {
		return nil, err
	}

	pitch, err := s.pitches.FindActiveWithFacility(ctx, input.PitchID)
	if err != nil {
		return nil, err
	}

	start, err := domain.ParseTimeOfDay(input.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTimeRange, err)
	}
	end, err := domain.ParseTimeOfDay(input.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTimeRange, err)
	}
	if !start.Before(end) {
		return nil, domain.ErrInvalidTimeRange
	}

	// Short-lived hold so two identical in-flight requests don't both reach
	// the database. Released as soon as the insert settles; a pending booking
	// must never block later requests on its own.
	if s.cache != nil {
		ok, err := s.cache.AcquireSlotLock(ctx, pitch.ID, date, start, end, s.holdTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.SlotConflictError{
				PitchID:       pitch.ID,
				BookingDate:   date,
				Start:         start,
				End:           end,
				BlockingStart: start,
				BlockingEnd:   end,
			}
		}
		defer func() { _ = s.cache.ReleaseSlotLock(ctx, pitch.ID, date, start, end) }()
	}

	booking := &domain.Booking{
		Token:       uuid.NewString(),
		PlayerID:    input.PlayerID,
		PitchID:     pitch.ID,
		FacilityID:  pitch.FacilityID,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		Status:      domain.BookingStatusPending,
		TotalAmount: domain.PriceFor(pitch.HourlyRate, start, end),
		Notes:       input.Notes,
	}

	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.publish(ctx, "booking_created", booking); err != nil {
		log.Printf("WARNING: failed to publish booking_created for %s: %v", booking.Token, err)
	}
	return booking, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error) {
	updated, err := s.bookings.ConfirmPending(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_confirmed", updated); err != nil {
		log.Printf("WARNING: failed to publish booking_confirmed for %s: %v", updated.Token, err)
	}
	return updated, nil
}

func (s *BookingService) RejectBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, domain.ErrInvalidStatus
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusRejected)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_rejected", updated); err != nil {
		log.Printf("WARNING: failed to publish booking_rejected for %s: %v", updated.Token, err)
	}
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled || current.Status == domain.BookingStatusRejected {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_cancelled", updated); err != nil {
		log.Printf("WARNING: failed to publish booking_cancelled for %s: %v", updated.Token, err)
	}
	return updated, nil
}

// ExpirePendingBookings cancels pending bookings older than the pending TTL.
// Run periodically by the worker.
func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	deadline := s.now().Add(-s.pendingTTL)
	expired, err := s.bookings.ExpirePendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		b := &expired[i]
		if err := s.publish(ctx, "booking_expired", b); err != nil {
			log.Printf("WARNING: failed to publish booking_expired for %s: %v", b.Token, err)
		}
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		Token:       b.Token,
		PlayerID:    b.PlayerID,
		PitchID:     b.PitchID,
		BookingDate: b.BookingDate.Format("2006-01-02"),
		StartTime:   b.StartTime.String(),
		EndTime:     b.EndTime.String(),
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount.StringFixed(2),
		OccurredAt:  s.now(),
	}
	return s.producer.Publish(ctx, s.bookingTopic, b.Token, event)
}

var _ BookingUseCase = (*BookingService)(nil)
