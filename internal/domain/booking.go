package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID          int64
	Token       string
	PlayerID    int64
	PitchID     int64
	FacilityID  int64
	BookingDate time.Time // date only, time component ignored
	StartTime   TimeOfDay
	EndTime     TimeOfDay
	Status      BookingStatus
	TotalAmount decimal.Decimal
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DurationHours returns the booked duration in fractional hours,
// e.g. 90 minutes -> 1.5.
func (b *Booking) DurationHours() decimal.Decimal {
	minutes := b.EndTime.Minutes() - b.StartTime.Minutes()
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}

// PriceFor computes the total amount for a slot at the given hourly rate,
// rounded to currency precision.
func PriceFor(hourlyRate decimal.Decimal, start, end TimeOfDay) decimal.Decimal {
	minutes := int64(end.Minutes() - start.Minutes())
	hours := decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60))
	return hourlyRate.Mul(hours).Round(2)
}

// FirstConflict returns the confirmed booking in existing whose window
// overlaps [start, end), or nil when the slot is free. Pending, rejected and
// cancelled bookings never block.
func FirstConflict(start, end TimeOfDay, existing []Booking) *Booking {
	for i := range existing {
		b := &existing[i]
		if b.Status != BookingStatusConfirmed {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return b
		}
	}
	return nil
}
