package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BarbershopID uint       `gorm:"not null;index" json:"barbershop_id"`
	Barbershop   Barbershop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	ClientID uint   `gorm:"not null" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client,omitempty"`

	BarberID uint `gorm:"not null;index:idx_bookings_barber_day,priority:1" json:"barber_id"`
	Barber   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	BarberProductID uint          `gorm:"not null" json:"barber_product_id"`
	BarberProduct   BarberProduct `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"barber_product,omitempty"`

	Date      time.Time `gorm:"type:date;not null;index:idx_bookings_barber_day,priority:2" json:"date"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Status        string `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus string `gorm:"size:20;not null" json:"payment_status"`
	PaymentMethod string `gorm:"size:20" json:"payment_method"`

	DepositAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"deposit_amount"`
	OutstandingBalance decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"outstanding_balance"`

	ExpiresAt  *time.Time `gorm:"index" json:"expires_at"`
	CheckoutID string     `gorm:"size:100" json:"checkout_id,omitempty"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
