package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krylovda/pitchbook/internal/domain"
	"github.com/krylovda/pitchbook/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	PlayerID    int64  `json:"player_id"`
	PitchID     int64  `json:"pitch_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Notes       string `json:"notes"`
}

type bookingResponse struct {
	Token       string `json:"token"`
	Status      string `json:"status"`
	PlayerID    int64  `json:"player_id"`
	PitchID     int64  `json:"pitch_id"`
	FacilityID  int64  `json:"facility_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TotalAmount string `json:"total_amount"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Token:       b.Token,
		Status:      string(b.Status),
		PlayerID:    b.PlayerID,
		PitchID:     b.PitchID,
		FacilityID:  b.FacilityID,
		BookingDate: b.BookingDate.Format("2006-01-02"),
		StartTime:   b.StartTime.String(),
		EndTime:     b.EndTime.String(),
		TotalAmount: b.TotalAmount.StringFixed(2),
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.PUT("/:token/confirm", h.confirm)
	router.PUT("/:token/reject", h.reject)
	router.DELETE("/:token", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		PlayerID:    req.PlayerID,
		PitchID:     req.PitchID,
		BookingDate: req.BookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Notes:       req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	b, err := h.service.ConfirmBooking(c.Request.Context(), c.Param("token"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) reject(c *gin.Context) {
	b, err := h.service.RejectBooking(c.Request.Context(), c.Param("token"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("token"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}
