package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeTopUp           TransactionType = "topup"
	TransactionTypeBookingPayment  TransactionType = "booking_payment"
	TransactionTypeTournamentFee   TransactionType = "tournament_fee"
	TransactionTypeFacilityPayout  TransactionType = "facility_payout"
	TransactionTypeAdminAdjustment TransactionType = "admin_adjustment"
)

// DebitType reports whether t is a type that may be used to take money out
// of a wallet.
func (t TransactionType) DebitType() bool {
	return t == TransactionTypeBookingPayment || t == TransactionTypeTournamentFee
}

// CreditType reports whether t is a type that may be used to add money to a
// wallet outside of a top-up.
func (t TransactionType) CreditType() bool {
	return t == TransactionTypeFacilityPayout || t == TransactionTypeAdminAdjustment
}

type Wallet struct {
	ID                 int64
	UserID             int64
	Balance            decimal.Decimal
	MaxNegativeBalance decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Available is how much the wallet can still be debited: the balance plus
// the credit allowance below zero.
func (w *Wallet) Available() decimal.Decimal {
	return w.Balance.Add(w.MaxNegativeBalance)
}

// CanDebit reports whether taking amount out of the wallet keeps the balance
// at or above -MaxNegativeBalance. Spending down to the floor exactly is
// allowed.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Available().GreaterThanOrEqual(amount)
}

// WalletTransaction is an immutable ledger entry. Amount is positive for
// credits and top-ups, negative for debits. The sum of a wallet's
// transaction amounts always equals its balance.
type WalletTransaction struct {
	ID            int64
	WalletID      int64
	Type          TransactionType
	Amount        decimal.Decimal
	Description   string
	ReferenceID   string
	PaymentMethod string
	CreatedAt     time.Time
}

// OwnerWallet is a facility owner's wallet joined with their booking-payment
// aggregate, as loaded for the settlement reports. BookingPayments is the raw
// sum of booking_payment amounts and is therefore zero or negative.
type OwnerWallet struct {
	UserID             int64
	Name               string
	Balance            decimal.Decimal
	MaxNegativeBalance decimal.Decimal
	BookingPayments    decimal.Decimal
}

// FacilityWalletSummary is one row of the facility-owner revenue report.
// Collected is the absolute sum of booking_payment amounts; Owed applies the
// platform revenue share to it.
type FacilityWalletSummary struct {
	UserID    int64
	Name      string
	Balance   decimal.Decimal
	Collected decimal.Decimal
	Owed      decimal.Decimal
}

type SettlementType string

const (
	SettlementPayout     SettlementType = "payout"
	SettlementCollection SettlementType = "collection"
)

type Settlement struct {
	OwnerID            int64
	Name               string
	Balance            decimal.Decimal
	MaxNegativeBalance decimal.Decimal
	Amount             decimal.Decimal
	Type               SettlementType
}
