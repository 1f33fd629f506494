package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create      *ucBooking.CreateBooking
	update      *ucBooking.UpdateBooking
	transitions *ucBooking.TransitionBooking
	listByDate  *ucBooking.ListBookingsByDate
	listByMonth *ucBooking.ListBookingsByMonth
	conflicts   *ucBooking.ListConflicts
}

func NewBookingHandler(
	create *ucBooking.CreateBooking,
	update *ucBooking.UpdateBooking,
	transitions *ucBooking.TransitionBooking,
	listByDate *ucBooking.ListBookingsByDate,
	listByMonth *ucBooking.ListBookingsByMonth,
	conflicts *ucBooking.ListConflicts,
) *BookingHandler {
	return &BookingHandler{
		create:      create,
		update:      update,
		transitions: transitions,
		listByDate:  listByDate,
		listByMonth: listByMonth,
		conflicts:   conflicts,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ClientID    uint   `json:"client_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email"`

	// defaults to the authenticated barber
	BarberID  uint `json:"barber_id"`
	ServiceID uint `json:"service_id" binding:"required"`

	Date          string `json:"date" binding:"required"`
	Time          string `json:"time" binding:"required"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

type RescheduleBookingRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	barberID := req.BarberID
	if barberID == 0 {
		barberID = c.MustGet(middleware.ContextUserID).(uint)
	}

	b, err := h.create.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		ClientID:      req.ClientID,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		BarberID:      barberID,
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		Time:          req.Time,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, b)
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *BookingHandler) Reschedule(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	b, err := h.update.Execute(c.Request.Context(), ucBooking.UpdateBookingInput{
		BookingID: id,
		Date:      req.Date,
		Time:      req.Time,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, b)
}

// ======================================================
// STATUS TRANSITIONS
// ======================================================

func (h *BookingHandler) Confirm(c *gin.Context)    { h.transition(c, h.transitions.Confirm) }
func (h *BookingHandler) Complete(c *gin.Context)   { h.transition(c, h.transitions.Complete) }
func (h *BookingHandler) MarkPaid(c *gin.Context)   { h.transition(c, h.transitions.MarkPaid) }
func (h *BookingHandler) MarkNoShow(c *gin.Context) { h.transition(c, h.transitions.MarkNoShow) }
func (h *BookingHandler) Cancel(c *gin.Context)     { h.transition(c, h.transitions.Cancel) }

func (h *BookingHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, id uint) (*models.Booking, error),
) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := fn(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, b)
}

// ======================================================
// LIST
// ======================================================

// ListByDate lists the authenticated barber's day, or the whole shop with
// ?barber_id=all.
func (h *BookingHandler) ListByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	barberID, ok := barberFilter(c)
	if !ok {
		return
	}

	bookings, err := h.listByDate.Execute(c.Request.Context(), barberID, date)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, bookings)
}

// ListByMonth lists ?year=&month= with the same barber filter as the day.
func (h *BookingHandler) ListByMonth(c *gin.Context) {
	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil {
		httperr.BadRequest(c, "invalid_month", "Ano e mês obrigatórios.")
		return
	}

	barberID, ok := barberFilter(c)
	if !ok {
		return
	}

	bookings, err := h.listByMonth.Execute(c.Request.Context(), barberID, year, month)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, bookings)
}

// barberFilter defaults to the authenticated barber; "all" (0) lists the
// whole shop.
func barberFilter(c *gin.Context) (uint, bool) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	switch raw := c.Query("barber_id"); raw {
	case "":
	case "all":
		barberID = 0
	default:
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_barber_id", "Barbeiro inválido.")
			return 0, false
		}
		barberID = uint(id)
	}
	return barberID, true
}

// Conflicts lists what keeps ?date=&start=&end= busy for a barber.
func (h *BookingHandler) Conflicts(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	if raw := c.Query("barber_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_barber_id", "Barbeiro inválido.")
			return
		}
		barberID = uint(id)
	}

	bookings, err := h.conflicts.Execute(c.Request.Context(), ucBooking.ListConflictsInput{
		BarberID:  barberID,
		Date:      c.Query("date"),
		StartTime: c.Query("start"),
		EndTime:   c.Query("end"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out := make([]dto.BusySlotDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.NewBusySlotDTO(b))
	}
	httpresp.List(c, out)
}

func bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_booking_id", "Agendamento inválido.")
		return 0, false
	}
	return uint(id), true
}
