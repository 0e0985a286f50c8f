package wallet

import (
	"context"
	"testing"

	"github.com/krylovda/pitchbook/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Apply(ctx context.Context, userID int64, wtx *domain.WalletTransaction, createIfMissing bool) error {
	args := m.Called(ctx, userID, wtx, createIfMissing)
	return args.Error(0)
}

func (m *MockWalletRepository) ListTransactions(ctx context.Context, userID int64, limit int32) ([]domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletRepository) ListFacilityOwnerWallets(ctx context.Context) ([]domain.OwnerWallet, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.OwnerWallet), args.Error(1)
}

func newTestService(repo *MockWalletRepository) *WalletService {
	return NewWalletService(repo, nil, "", 0.85)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWalletService_TopUp_Success(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Apply", ctx, int64(7), mock.AnythingOfType("*domain.WalletTransaction"), true).Return(nil).Once()

	wtx, err := service.TopUp(ctx, 7, dec("25.00"), "card", "pay-123")

	assert.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeTopUp, wtx.Type)
	assert.True(t, dec("25.00").Equal(wtx.Amount))
	assert.Equal(t, "card", wtx.PaymentMethod)
	mockRepo.AssertExpectations(t)
}

func TestWalletService_TopUp_InvalidAmount(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	for _, amount := range []string{"0", "-5.00"} {
		wtx, err := service.TopUp(ctx, 7, dec(amount), "card", "")
		assert.Nil(t, wtx)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
	mockRepo.AssertNotCalled(t, "Apply")
}

func TestWalletService_Debit_StoresNegativeAmount(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Apply", ctx, int64(7), mock.AnythingOfType("*domain.WalletTransaction"), false).Return(nil).Once()

	wtx, err := service.Debit(ctx, 7, dec("30.00"), domain.TransactionTypeBookingPayment, "booking", "tok-1")

	assert.NoError(t, err)
	assert.True(t, dec("-30.00").Equal(wtx.Amount), "got %s", wtx.Amount)
	mockRepo.AssertExpectations(t)
}

func TestWalletService_Debit_WrongType(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	wtx, err := service.Debit(ctx, 7, dec("30.00"), domain.TransactionTypeFacilityPayout, "", "")

	assert.Nil(t, wtx)
	assert.ErrorIs(t, err, domain.ErrInvalidTxType)
	mockRepo.AssertNotCalled(t, "Apply")
}

func TestWalletService_Debit_Insufficient(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	shortfall := &domain.InsufficientBalanceError{
		UserID:    7,
		Available: dec("0.00"),
		Requested: dec("0.01"),
	}
	mockRepo.On("Apply", ctx, int64(7), mock.Anything, false).Return(shortfall).Once()

	wtx, err := service.Debit(ctx, 7, dec("0.01"), domain.TransactionTypeBookingPayment, "", "")

	assert.Nil(t, wtx)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestWalletService_Credit_WrongType(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	wtx, err := service.Credit(ctx, 7, dec("10.00"), domain.TransactionTypeBookingPayment, "", "")

	assert.Nil(t, wtx)
	assert.ErrorIs(t, err, domain.ErrInvalidTxType)
	mockRepo.AssertNotCalled(t, "Apply")
}

func TestWalletService_Credit_LazyCreates(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Apply", ctx, int64(9), mock.Anything, true).Return(nil).Once()

	wtx, err := service.Credit(ctx, 9, dec("12.50"), domain.TransactionTypeAdminAdjustment, "correction", "")

	assert.NoError(t, err)
	assert.True(t, dec("12.50").Equal(wtx.Amount))
	mockRepo.AssertExpectations(t)
}

func TestWalletService_CheckBalance(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	wallet := &domain.Wallet{
		UserID:             7,
		Balance:            dec("100.00"),
		MaxNegativeBalance: dec("50.00"),
	}
	mockRepo.On("GetByUserID", ctx, int64(7)).Return(wallet, nil)
	mockRepo.On("GetByUserID", ctx, int64(8)).Return(nil, domain.ErrWalletNotFound)

	ok, err := service.CheckBalance(ctx, 7, dec("150.00"))
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CheckBalance(ctx, 7, dec("150.01"))
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = service.CheckBalance(ctx, 8, dec("0.01"))
	assert.NoError(t, err)
	assert.False(t, ok, "absent wallet covers nothing")
}

func TestWalletService_ListTransactions_DefaultLimit(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("ListTransactions", ctx, int64(7), int32(defaultTransactionLimit)).Return([]domain.WalletTransaction{}, nil).Once()

	txs, err := service.ListTransactions(ctx, 7, 0)

	assert.NoError(t, err)
	assert.Empty(t, txs)
	mockRepo.AssertExpectations(t)
}

func TestWalletService_FacilityWalletSummary(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	owners := []domain.OwnerWallet{
		{UserID: 1, Name: "Arena One", Balance: dec("40.00"), BookingPayments: dec("-200.00")},
		{UserID: 2, Name: "Arena Two", Balance: dec("0.00"), BookingPayments: dec("0")},
		// an owner who never received a payment has no wallet row yet and
		// comes back from the repository as all zeros
		{UserID: 3, Name: "New Arena", Balance: dec("0"), MaxNegativeBalance: dec("0"), BookingPayments: dec("0")},
	}
	mockRepo.On("ListFacilityOwnerWallets", ctx).Return(owners, nil).Once()

	summaries, err := service.FacilityWalletSummary(ctx)

	assert.NoError(t, err)
	assert.Len(t, summaries, 3)
	assert.True(t, dec("200.00").Equal(summaries[0].Collected))
	assert.True(t, dec("170.00").Equal(summaries[0].Owed), "85%% of 200, got %s", summaries[0].Owed)
	assert.True(t, summaries[1].Owed.IsZero())
	assert.Equal(t, int64(3), summaries[2].UserID)
	assert.True(t, summaries[2].Collected.IsZero())
	assert.True(t, summaries[2].Owed.IsZero())
}

func TestWalletService_FinancialSettlements(t *testing.T) {
	mockRepo := &MockWalletRepository{}
	service := newTestService(mockRepo)
	ctx := context.Background()

	owners := []domain.OwnerWallet{
		{UserID: 1, Name: "Payout", Balance: dec("120.00"), MaxNegativeBalance: dec("50.00")},
		{UserID: 2, Name: "Within limit", Balance: dec("-50.00"), MaxNegativeBalance: dec("50.00")},
		{UserID: 3, Name: "Overdrawn", Balance: dec("-80.00"), MaxNegativeBalance: dec("50.00")},
		{UserID: 4, Name: "Zero", Balance: dec("0.00"), MaxNegativeBalance: dec("0.00")},
	}
	mockRepo.On("ListFacilityOwnerWallets", ctx).Return(owners, nil).Once()

	settlements, err := service.FinancialSettlements(ctx)

	assert.NoError(t, err)
	assert.Len(t, settlements, 2)

	assert.Equal(t, int64(1), settlements[0].OwnerID)
	assert.Equal(t, domain.SettlementPayout, settlements[0].Type)
	assert.True(t, dec("120.00").Equal(settlements[0].Amount))

	assert.Equal(t, int64(3), settlements[1].OwnerID)
	assert.Equal(t, domain.SettlementCollection, settlements[1].Type)
	assert.True(t, dec("30.00").Equal(settlements[1].Amount), "excess beyond the floor, got %s", settlements[1].Amount)
}
