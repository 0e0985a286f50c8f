package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krylovda/pitchbook/internal/domain"
	"github.com/krylovda/pitchbook/internal/service/wallet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockWalletUseCase struct {
	mock.Mock
}

func (m *MockWalletUseCase) GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletUseCase) TopUp(ctx context.Context, userID int64, amount decimal.Decimal, paymentMethod, referenceID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, paymentMethod, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletUseCase) Debit(ctx context.Context, userID int64, amount decimal.Decimal, txType domain.TransactionType, description, referenceID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, txType, description, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletUseCase) Credit(ctx context.Context, userID int64, amount decimal.Decimal, txType domain.TransactionType, description, referenceID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, txType, description, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletUseCase) CheckBalance(ctx context.Context, userID int64, required decimal.Decimal) (bool, error) {
	args := m.Called(ctx, userID, required)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletUseCase) ListTransactions(ctx context.Context, userID int64, limit int32) ([]domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletUseCase) FacilityWalletSummary(ctx context.Context) ([]domain.FacilityWalletSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.FacilityWalletSummary), args.Error(1)
}

func (m *MockWalletUseCase) FinancialSettlements(ctx context.Context) ([]domain.Settlement, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Settlement), args.Error(1)
}

func newWalletRouter(svc wallet.WalletUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewWalletHandler(svc).Register(router.Group("/wallets"))
	return router
}

func TestWalletHandler_Get_Success(t *testing.T) {
	mockSvc := &MockWalletUseCase{}
	router := newWalletRouter(mockSvc)

	w := &domain.Wallet{
		UserID:             7,
		Balance:            decimal.RequireFromString("-20.00"),
		MaxNegativeBalance: decimal.RequireFromString("50.00"),
	}
	mockSvc.On("GetWallet", mock.Anything, int64(7)).Return(w, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/wallets/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp walletResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "-20.00", resp.Balance)
	assert.Equal(t, "30.00", resp.Available)
	mockSvc.AssertExpectations(t)
}

func TestWalletHandler_Get_NotFound(t *testing.T) {
	mockSvc := &MockWalletUseCase{}
	router := newWalletRouter(mockSvc)

	mockSvc.On("GetWallet", mock.Anything, int64(99)).Return(nil, domain.ErrWalletNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/wallets/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWalletHandler_Get_BadUserID(t *testing.T) {
	mockSvc := &MockWalletUseCase{}
	router := newWalletRouter(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/wallets/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "GetWallet")
}

func TestWalletHandler_TopUp_Success(t *testing.T) {
	mockSvc := &MockWalletUseCase{}
	router := newWalletRouter(mockSvc)

	wtx := &domain.WalletTransaction{
		ID:            11,
		Type:          domain.TransactionTypeTopUp,
		Amount:        decimal.RequireFromString("25.00"),
		PaymentMethod: "card",
		CreatedAt:     time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	mockSvc.On("TopUp", mock.Anything, int64(7), mock.Anything, "card", "pay-123").Return(wtx, nil).Once()

	body, _ := json.Marshal(topUpRequest{Amount: "25.00", PaymentMethod: "card", ReferenceID: "pay-123"})
	req := httptest.NewRequest(http.MethodPost, "/wallets/7/topup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp transactionResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "topup", resp.Type)
	assert.Equal(t, "25.00", resp.Amount)
	mockSvc.AssertExpectations(t)
}

func TestWalletHandler_TopUp_BadAmount(t *testing.T) {
	mockSvc := &MockWalletUseCase{}
	router := newWalletRouter(mockSvc)

	body, _ := json.Marshal(topUpRequest{Amount: "not-a-number"})
	req := httptest.NewRequest(http.MethodPost, "/wallets/7/topup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "TopUp")
}

func TestWalletHandler_Debit_Insufficient(t *testing.T) {
	mockSvc := &MockWalletUseCase{}
	router := newWalletRouter(mockSvc)

	shortfall := &domain.InsufficientBalanceError{
		UserID:    7,
		Available: decimal.RequireFromString("10.00"),
		Requested: decimal.RequireFromString("30.00"),
	}
	mockSvc.On("Debit", mock.Anything, int64(7), mock.Anything, domain.TransactionTypeBookingPayment, "", "tok-1").Return(nil, shortfall).Once()

	body, _ := json.Marshal(walletMutationRequest{Amount: "30.00", Type: "booking_payment", ReferenceID: "tok-1"})
	req := httptest.NewRequest(http.MethodPost, "/wallets/7/debit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestWalletHandler_Credit_WrongType(t *testing.T) {
	mockSvc := &MockWalletUseCase{}
	router := newWalletRouter(mockSvc)

	mockSvc.On("Credit", mock.Anything, int64(7), mock.Anything, domain.TransactionTypeBookingPayment, "", "").Return(nil, domain.ErrInvalidTxType).Once()

	body, _ := json.Marshal(walletMutationRequest{Amount: "10.00", Type: "booking_payment"})
	req := httptest.NewRequest(http.MethodPost, "/wallets/7/credit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalletHandler_BalanceCheck(t *testing.T) {
	mockSvc := &MockWalletUseCase{}
	router := newWalletRouter(mockSvc)

	mockSvc.On("CheckBalance", mock.Anything, int64(7), mock.Anything).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/wallets/7/balance-check?amount=150.01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp["sufficient"])
}

func TestWalletHandler_Transactions(t *testing.T) {
	mockSvc := &MockWalletUseCase{}
	router := newWalletRouter(mockSvc)

	txs := []domain.WalletTransaction{
		{ID: 2, Type: domain.TransactionTypeBookingPayment, Amount: decimal.RequireFromString("-30.00"), CreatedAt: time.Now()},
		{ID: 1, Type: domain.TransactionTypeTopUp, Amount: decimal.RequireFromString("50.00"), CreatedAt: time.Now()},
	}
	mockSvc.On("ListTransactions", mock.Anything, int64(7), int32(10)).Return(txs, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/wallets/7/transactions?limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Transactions, 2)
	assert.Equal(t, "-30.00", resp.Transactions[0].Amount)
	mockSvc.AssertExpectations(t)
}
