package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Facility struct {
	ID        int64
	Name      string
	OwnerID   int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Pitch struct {
	ID         int64
	FacilityID int64
	Name       string
	Sport      string
	HourlyRate decimal.Decimal
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
