package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krylovda/pitchbook/internal/domain"
)

type BookingRepository interface {
	// CreatePending checks the requested slot against confirmed bookings and
	// inserts the row in one transaction, serialized per (pitch, date).
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	FindConfirmed(ctx context.Context, pitchID int64, date time.Time) ([]domain.Booking, error)
	// ConfirmPending re-runs the conflict check before flipping the status,
	// so two pending bookings for the same slot can never both confirm.
	ConfirmPending(ctx context.Context, token string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, token, player_id, pitch_id, facility_id, booking_date, start_time, end_time, status, total_amount, notes, created_at, updated_at`

func scanBooking(row pgx.Row, b *domain.Booking) error {
	var start, end string
	if err := row.Scan(&b.ID, &b.Token, &b.PlayerID, &b.PitchID, &b.FacilityID, &b.BookingDate, &start, &end, &b.Status, &b.TotalAmount, &b.Notes, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	var err error
	if b.StartTime, err = domain.ParseTimeOfDay(start); err != nil {
		return err
	}
	b.EndTime, err = domain.ParseTimeOfDay(end)
	return err
}

// slotLockKey serializes concurrent booking creation for one pitch and date.
func slotLockKey(pitchID int64, date time.Time) string {
	return fmt.Sprintf("pitch:%d:%s", pitchID, date.Format("2006-01-02"))
}

func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &domain.StorageError{Op: "begin create booking", Err: err}
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, slotLockKey(booking.PitchID, booking.BookingDate)); err != nil {
		return &domain.StorageError{Op: "acquire slot lock", Err: err}
	}

	if err := checkSlotFree(ctx, tx, booking); err != nil {
		return err
	}

	booking.Status = domain.BookingStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (token, player_id, pitch_id, facility_id, booking_date, start_time, end_time, status, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		booking.Token, booking.PlayerID, booking.PitchID, booking.FacilityID, booking.BookingDate,
		booking.StartTime.String(), booking.EndTime.String(), booking.Status, booking.TotalAmount, booking.Notes).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return &domain.StorageError{Op: "insert booking", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &domain.StorageError{Op: "commit create booking", Err: err}
	}
	return nil
}

// checkSlotFree loads the bookings for the pitch and date inside the
// caller's transaction and asks the domain which of them block the window.
func checkSlotFree(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	rows, err := tx.Query(ctx, `SELECT start_time, end_time, status FROM bookings
		WHERE pitch_id=$1 AND booking_date=$2`,
		booking.PitchID, booking.BookingDate)
	if err != nil {
		return &domain.StorageError{Op: "load bookings for slot", Err: err}
	}
	defer rows.Close()

	existing := make([]domain.Booking, 0)
	for rows.Next() {
		var startStr, endStr string
		var b domain.Booking
		if err := rows.Scan(&startStr, &endStr, &b.Status); err != nil {
			return &domain.StorageError{Op: "scan booking for slot", Err: err}
		}
		if b.StartTime, err = domain.ParseTimeOfDay(startStr); err != nil {
			return err
		}
		if b.EndTime, err = domain.ParseTimeOfDay(endStr); err != nil {
			return err
		}
		existing = append(existing, b)
	}
	if err := rows.Err(); err != nil {
		return &domain.StorageError{Op: "load bookings for slot", Err: err}
	}

	if blocking := domain.FirstConflict(booking.StartTime, booking.EndTime, existing); blocking != nil {
		return &domain.SlotConflictError{
			PitchID:       booking.PitchID,
			BookingDate:   booking.BookingDate,
			Start:         booking.StartTime,
			End:           booking.EndTime,
			BlockingStart: blocking.StartTime,
			BlockingEnd:   blocking.EndTime,
		}
	}
	return nil
}

func (r *PGBookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE token=$1`, token)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, &domain.StorageError{Op: "get booking", Err: err}
	}
	return &b, nil
}

func (r *PGBookingRepository) FindConfirmed(ctx context.Context, pitchID int64, date time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE pitch_id=$1 AND booking_date=$2 AND status=$3 ORDER BY start_time`,
		pitchID, date, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, &domain.StorageError{Op: "find confirmed bookings", Err: err}
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, &domain.StorageError{Op: "scan booking", Err: err}
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) ConfirmPending(ctx context.Context, token string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, &domain.StorageError{Op: "begin confirm booking", Err: err}
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE token=$1 FOR UPDATE`, token)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, &domain.StorageError{Op: "get booking", Err: err}
	}
	if b.Status != domain.BookingStatusPending {
		return nil, domain.ErrInvalidStatus
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, slotLockKey(b.PitchID, b.BookingDate)); err != nil {
		return nil, &domain.StorageError{Op: "acquire slot lock", Err: err}
	}
	if err := checkSlotFree(ctx, tx, &b); err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE token=$2 RETURNING status, updated_at`,
		domain.BookingStatusConfirmed, token).Scan(&b.Status, &b.UpdatedAt); err != nil {
		return nil, &domain.StorageError{Op: "confirm booking", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &domain.StorageError{Op: "commit confirm booking", Err: err}
	}
	return &b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE token=$2 RETURNING `+bookingColumns, status, token)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, &domain.StorageError{Op: "update booking status", Err: err}
	}
	return &b, nil
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND created_at <= $3 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, &domain.StorageError{Op: "expire pending bookings", Err: err}
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, &domain.StorageError{Op: "scan booking", Err: err}
		}
		expired = append(expired, b)
	}
	return expired, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
