package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the shop's booking page. The tenant is resolved
// from :slug by middleware.PublicTenant.
type PublicHandler struct {
	create       *ucBooking.CreateBooking
	availability *ucBooking.GetAvailability
}

func NewPublicHandler(
	create *ucBooking.CreateBooking,
	availability *ucBooking.GetAvailability,
) *PublicHandler {
	return &PublicHandler{
		create:       create,
		availability: availability,
	}
}

type PublicCreateBookingRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	BarberID    uint   `json:"barber_id" binding:"required"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time" binding:"required"` // HH:mm
	Notes       string `json:"notes"`
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	barberID, err1 := strconv.ParseUint(c.Query("barber_id"), 10, 64)
	productID, err2 := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err1 != nil || err2 != nil {
		httperr.BadRequest(c, "invalid_query", "Barbeiro e serviço são obrigatórios.")
		return
	}

	date, err := time.Parse(timezone.DateLayout, c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		BarberID:  uint(barberID),
		ProductID: uint(productID),
		Date:      date,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, slots)
}

////////////////////////////////////////////////////////
// CREATE
////////////////////////////////////////////////////////

// CreateBooking always opens an online hold: the client pays the deposit
// before the slot is confirmed.
func (h *PublicHandler) CreateBooking(c *gin.Context) {
	var req PublicCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	b, err := h.create.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		BarberID:      req.BarberID,
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		Time:          req.Time,
		PaymentMethod: string(domain.PaymentOnline),
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         b.ID,
		"start_time": b.StartTime,
		"end_time":   b.EndTime,
		"status":     b.Status,
		"expires_at": b.ExpiresAt,
	})
}
