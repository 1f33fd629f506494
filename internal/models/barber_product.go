package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BarberProduct is a bookable service.
type BarberProduct struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"not null;index" json:"barbershop_id"`

	Name           string          `gorm:"size:100;not null" json:"name"`
	Description    string          `gorm:"size:255" json:"description"`
	DurationMin    int             `gorm:"not null" json:"duration_min"`
	Price          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	DepositPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"deposit_percent"`
	Active         bool            `gorm:"default:true" json:"active"`

	Category string `gorm:"size:50" json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
