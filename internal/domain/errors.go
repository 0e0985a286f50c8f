package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for the booking and wallet engines. Use with errors.Is.
var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPitchNotFound       = errors.New("pitch not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrInvalidTimeRange    = errors.New("end time must be after start time")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidStatus       = errors.New("invalid booking status transition")
	ErrInvalidTxType       = errors.New("transaction type not allowed for this operation")
	ErrSlotConflict        = errors.New("slot conflicts with a confirmed booking")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// SlotConflictError carries the confirmed booking that blocked the request.
type SlotConflictError struct {
	PitchID       int64
	BookingDate   time.Time
	Start, End    TimeOfDay
	BlockingStart TimeOfDay
	BlockingEnd   TimeOfDay
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("pitch %d on %s: slot %s-%s conflicts with confirmed booking %s-%s",
		e.PitchID, e.BookingDate.Format("2006-01-02"), e.Start, e.End, e.BlockingStart, e.BlockingEnd)
}

func (e *SlotConflictError) Unwrap() error {
	return ErrSlotConflict
}

// InsufficientBalanceError carries the shortfall details for a refused debit.
type InsufficientBalanceError struct {
	UserID    int64
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("wallet of user %d: available %s, requested %s",
		e.UserID, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// StorageError marks a transient store failure; the caller may retry the
// whole operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is one of the not-found conditions.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrPitchNotFound) ||
		errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidTxType)
}
