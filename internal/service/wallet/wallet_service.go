package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/krylovda/pitchbook/internal/domain"
	"github.com/krylovda/pitchbook/internal/kafka"
	"github.com/krylovda/pitchbook/internal/repository"
	"github.com/shopspring/decimal"
)

type WalletUseCase interface {
	GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	TopUp(ctx context.Context, userID int64, amount decimal.Decimal, paymentMethod, referenceID string) (*domain.WalletTransaction, error)
	Debit(ctx context.Context, userID int64, amount decimal.Decimal, txType domain.TransactionType, description, referenceID string) (*domain.WalletTransaction, error)
	Credit(ctx context.Context, userID int64, amount decimal.Decimal, txType domain.TransactionType, description, referenceID string) (*domain.WalletTransaction, error)
	CheckBalance(ctx context.Context, userID int64, required decimal.Decimal) (bool, error)
	ListTransactions(ctx context.Context, userID int64, limit int32) ([]domain.WalletTransaction, error)
	FacilityWalletSummary(ctx context.Context) ([]domain.FacilityWalletSummary, error)
	FinancialSettlements(ctx context.Context) ([]domain.Settlement, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

const defaultTransactionLimit = 50

type WalletService struct {
	wallets      repository.WalletRepository
	producer     Producer
	walletTopic  string
	revenueShare decimal.Decimal
	now          func() time.Time
}

type WalletServiceOption func(*WalletService)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) WalletServiceOption {
	return func(s *WalletService) {
		s.now = now
	}
}

func NewWalletService(
	wallets repository.WalletRepository,
	producer Producer,
	walletTopic string,
	revenueShare float64,
	opts ...WalletServiceOption,
) *WalletService {
	service := &WalletService{
		wallets:      wallets,
		producer:     producer,
		walletTopic:  walletTopic,
		revenueShare: decimal.NewFromFloat(revenueShare),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *WalletService) GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return s.wallets.GetByUserID(ctx, userID)
}

func (s *WalletService) TopUp(ctx context.Context, userID int64, amount decimal.Decimal, paymentMethod, referenceID string) (*domain.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	wtx := &domain.WalletTransaction{
		Type:          domain.TransactionTypeTopUp,
		Amount:        amount.Round(2),
		PaymentMethod: paymentMethod,
		ReferenceID:   referenceID,
	}
	if err := s.wallets.Apply(ctx, userID, wtx, true); err != nil {
		return nil, err
	}

	s.publish(ctx, "wallet_topup", userID, wtx)
	return wtx, nil
}

func (s *WalletService) Debit(ctx context.Context, userID int64, amount decimal.Decimal, txType domain.TransactionType, description, referenceID string) (*domain.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if !txType.DebitType() {
		return nil, fmt.Errorf("%w: %s is not a debit type", domain.ErrInvalidTxType, txType)
	}

	wtx := &domain.WalletTransaction{
		Type:        txType,
		Amount:      amount.Round(2).Neg(),
		Description: description,
		ReferenceID: referenceID,
	}
	if err := s.wallets.Apply(ctx, userID, wtx, false); err != nil {
		return nil, err
	}

	s.publish(ctx, "wallet_debit", userID, wtx)
	return wtx, nil
}

func (s *WalletService) Credit(ctx context.Context, userID int64, amount decimal.Decimal, txType domain.TransactionType, description, referenceID string) (*domain.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if !txType.CreditType() {
		return nil, fmt.Errorf("%w: %s is not a credit type", domain.ErrInvalidTxType, txType)
	}

	wtx := &domain.WalletTransaction{
		Type:        txType,
		Amount:      amount.Round(2),
		Description: description,
		ReferenceID: referenceID,
	}
	if err := s.wallets.Apply(ctx, userID, wtx, true); err != nil {
		return nil, err
	}

	s.publish(ctx, "wallet_credit", userID, wtx)
	return wtx, nil
}

func (s *WalletService) CheckBalance(ctx context.Context, userID int64, required decimal.Decimal) (bool, error) {
	w, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return false, nil
		}
		return false, err
	}
	return w.Available().GreaterThanOrEqual(required), nil
}

func (s *WalletService) ListTransactions(ctx context.Context, userID int64, limit int32) ([]domain.WalletTransaction, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	return s.wallets.ListTransactions(ctx, userID, limit)
}

// FacilityWalletSummary reports, per facility owner, the booking payments
// collected on the platform's behalf and the share owed back to the owner.
func (s *WalletService) FacilityWalletSummary(ctx context.Context) ([]domain.FacilityWalletSummary, error) {
	owners, err := s.wallets.ListFacilityOwnerWallets(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.FacilityWalletSummary, 0, len(owners))
	for _, o := range owners {
		collected := o.BookingPayments.Abs()
		summaries = append(summaries, domain.FacilityWalletSummary{
			UserID:    o.UserID,
			Name:      o.Name,
			Balance:   o.Balance,
			Collected: collected,
			Owed:      collected.Mul(s.revenueShare).Round(2),
		})
	}
	return summaries, nil
}

// FinancialSettlements classifies each owner wallet: positive balances are
// owed out as payouts, balances below the allowed negative floor must be
// collected, everything in between settles to nothing.
func (s *WalletService) FinancialSettlements(ctx context.Context) ([]domain.Settlement, error) {
	owners, err := s.wallets.ListFacilityOwnerWallets(ctx)
	if err != nil {
		return nil, err
	}

	settlements := make([]domain.Settlement, 0)
	for _, o := range owners {
		floor := o.MaxNegativeBalance.Neg()
		switch {
		case o.Balance.IsPositive():
			settlements = append(settlements, domain.Settlement{
				OwnerID:            o.UserID,
				Name:               o.Name,
				Balance:            o.Balance,
				MaxNegativeBalance: o.MaxNegativeBalance,
				Amount:             o.Balance,
				Type:               domain.SettlementPayout,
			})
		case o.Balance.LessThan(floor):
			settlements = append(settlements, domain.Settlement{
				OwnerID:            o.UserID,
				Name:               o.Name,
				Balance:            o.Balance,
				MaxNegativeBalance: o.MaxNegativeBalance,
				Amount:             o.Balance.Sub(floor).Abs(),
				Type:               domain.SettlementCollection,
			})
		}
	}
	return settlements, nil
}

func (s *WalletService) publish(ctx context.Context, eventType string, userID int64, wtx *domain.WalletTransaction) {
	if s.producer == nil || s.walletTopic == "" {
		return
	}
	event := kafka.WalletEvent{
		Type:        eventType,
		UserID:      userID,
		TxType:      string(wtx.Type),
		Amount:      wtx.Amount.StringFixed(2),
		ReferenceID: wtx.ReferenceID,
		OccurredAt:  s.now(),
	}
	if err := s.producer.Publish(ctx, s.walletTopic, fmt.Sprintf("wallet:%d", userID), event); err != nil {
		log.Printf("WARNING: failed to publish %s for user %d: %v", eventType, userID, err)
	}
}

var _ WalletUseCase = (*WalletService)(nil)
