package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type BookingListDTO struct {
	ID                 uint            `json:"id"`
	BarberID           uint            `json:"barber_id"`
	StartTime          time.Time       `json:"start_time"`
	EndTime            time.Time       `json:"end_time"`
	Status             string          `json:"status"`
	PaymentStatus      string          `json:"payment_status"`
	PaymentMethod      string          `json:"payment_method"`
	ClientName         string          `json:"client_name"`
	ProductName        string          `json:"product_name"`
	DepositAmount      decimal.Decimal `json:"deposit_amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	ExpiresAt          *time.Time      `json:"expires_at,omitempty"`
}

func NewBookingListDTO(b models.Booking) BookingListDTO {
	return BookingListDTO{
		ID:                 b.ID,
		BarberID:           b.BarberID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             b.Status,
		PaymentStatus:      b.PaymentStatus,
		PaymentMethod:      b.PaymentMethod,
		ClientName:         b.Client.Name,
		ProductName:        b.BarberProduct.Name,
		DepositAmount:      b.DepositAmount,
		OutstandingBalance: b.OutstandingBalance,
		ExpiresAt:          b.ExpiresAt,
	}
}

// BusySlotDTO is what the conflict listing exposes: no client data.
type BusySlotDTO struct {
	ID        uint      `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

func NewBusySlotDTO(b models.Booking) BusySlotDTO {
	return BusySlotDTO{
		ID:        b.ID,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    b.Status,
	}
}
