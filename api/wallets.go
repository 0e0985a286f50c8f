package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krylovda/pitchbook/internal/domain"
	"github.com/krylovda/pitchbook/internal/service/wallet"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	service wallet.WalletUseCase
}

type topUpRequest struct {
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	ReferenceID   string `json:"reference_id"`
}

type walletMutationRequest struct {
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	ReferenceID string `json:"reference_id"`
}

type walletResponse struct {
	UserID             int64  `json:"user_id"`
	Balance            string `json:"balance"`
	MaxNegativeBalance string `json:"max_negative_balance"`
	Available          string `json:"available"`
}

type transactionResponse struct {
	ID            int64  `json:"id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Description   string `json:"description,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toTransactionResponse(t *domain.WalletTransaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		Type:          string(t.Type),
		Amount:        t.Amount.StringFixed(2),
		Description:   t.Description,
		ReferenceID:   t.ReferenceID,
		PaymentMethod: t.PaymentMethod,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
}

func NewWalletHandler(service wallet.WalletUseCase) *WalletHandler {
	return &WalletHandler{service: service}
}

func (h *WalletHandler) Register(router *gin.RouterGroup) {
	router.GET("/:userID", h.get)
	router.POST("/:userID/topup", h.topUp)
	router.POST("/:userID/debit", h.debit)
	router.POST("/:userID/credit", h.credit)
	router.GET("/:userID/transactions", h.transactions)
	router.GET("/:userID/balance-check", h.balanceCheck)
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}

func parseAmount(c *gin.Context, raw string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return decimal.Zero, false
	}
	return amount, true
}

func (h *WalletHandler) get(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	w, err := h.service.GetWallet(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, walletResponse{
		UserID:             w.UserID,
		Balance:            w.Balance.StringFixed(2),
		MaxNegativeBalance: w.MaxNegativeBalance.StringFixed(2),
		Available:          w.Available().StringFixed(2),
	})
}

func (h *WalletHandler) topUp(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	wtx, err := h.service.TopUp(c.Request.Context(), userID, amount, req.PaymentMethod, req.ReferenceID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(wtx))
}

func (h *WalletHandler) debit(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req walletMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	wtx, err := h.service.Debit(c.Request.Context(), userID, amount, domain.TransactionType(req.Type), req.Description, req.ReferenceID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(wtx))
}

func (h *WalletHandler) credit(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req walletMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	wtx, err := h.service.Credit(c.Request.Context(), userID, amount, domain.TransactionType(req.Type), req.Description, req.ReferenceID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(wtx))
}

func (h *WalletHandler) transactions(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	limit := int64(0)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	txs, err := h.service.ListTransactions(c.Request.Context(), userID, int32(limit))
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, toTransactionResponse(&txs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

func (h *WalletHandler) balanceCheck(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	required, ok := parseAmount(c, c.Query("amount"))
	if !ok {
		return
	}

	sufficient, err := h.service.CheckBalance(c.Request.Context(), userID, required)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sufficient": sufficient})
}
