package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krylovda/pitchbook/internal/service/wallet"
)

type SettlementHandler struct {
	service wallet.WalletUseCase
}

type facilitySummaryResponse struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
	Collected string `json:"collected"`
	Owed      string `json:"owed"`
}

type settlementResponse struct {
	OwnerID int64  `json:"owner_id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
	Amount  string `json:"settlement_amount"`
	Type    string `json:"settlement_type"`
}

func NewSettlementHandler(service wallet.WalletUseCase) *SettlementHandler {
	return &SettlementHandler{service: service}
}

func (h *SettlementHandler) Register(router *gin.RouterGroup) {
	router.GET("/facility-summary", h.facilitySummary)
	router.GET("/financial", h.financial)
}

func (h *SettlementHandler) facilitySummary(c *gin.Context) {
	summaries, err := h.service.FacilityWalletSummary(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]facilitySummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, facilitySummaryResponse{
			UserID:    s.UserID,
			Name:      s.Name,
			Balance:   s.Balance.StringFixed(2),
			Collected: s.Collected.StringFixed(2),
			Owed:      s.Owed.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, gin.H{"summaries": out})
}

func (h *SettlementHandler) financial(c *gin.Context) {
	settlements, err := h.service.FinancialSettlements(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]settlementResponse, 0, len(settlements))
	for _, s := range settlements {
		out = append(out, settlementResponse{
			OwnerID: s.OwnerID,
			Name:    s.Name,
			Balance: s.Balance.StringFixed(2),
			Amount:  s.Amount.StringFixed(2),
			Type:    string(s.Type),
		})
	}
	c.JSON(http.StatusOK, gin.H{"settlements": out})
}
