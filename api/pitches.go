package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krylovda/pitchbook/internal/domain"
	"github.com/krylovda/pitchbook/internal/service/pitches"
)

type PitchHandler struct {
	service pitches.PitchUseCase
}

type pitchResponse struct {
	ID         int64  `json:"id"`
	FacilityID int64  `json:"facility_id"`
	Name       string `json:"name"`
	Sport      string `json:"sport"`
	HourlyRate string `json:"hourly_rate"`
}

type occupiedSlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toPitchResponse(p *domain.Pitch) pitchResponse {
	return pitchResponse{
		ID:         p.ID,
		FacilityID: p.FacilityID,
		Name:       p.Name,
		Sport:      p.Sport,
		HourlyRate: p.HourlyRate.StringFixed(2),
	}
}

func NewPitchHandler(service pitches.PitchUseCase) *PitchHandler {
	return &PitchHandler{service: service}
}

func (h *PitchHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/bookings", h.occupiedSlots)
}

func (h *PitchHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]pitchResponse, 0, len(list))
	for i := range list {
		out = append(out, toPitchResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"pitches": out})
}

func (h *PitchHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pitch id"})
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPitchResponse(p))
}

func (h *PitchHandler) occupiedSlots(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pitch id"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	bookings, err := h.service.ConfirmedBookings(c.Request.Context(), id, date)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]occupiedSlotResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, occupiedSlotResponse{StartTime: b.StartTime.String(), EndTime: b.EndTime.String()})
	}
	c.JSON(http.StatusOK, gin.H{"date": c.Query("date"), "slots": out})
}
