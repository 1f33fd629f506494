package models

import "time"

const (
	RoleOwner  = "owner"
	RoleBarber = "barber"
)

// User is a barber account. Owners also cut hair, so both roles can be
// booked.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	BarbershopID uint       `gorm:"not null;index" json:"barbershop_id"`
	Barbershop   Barbershop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Name   string `gorm:"size:100;not null" json:"name"`
	Email  string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone  string `gorm:"size:20" json:"phone"`
	Role   string `gorm:"size:20;default:'owner'" json:"role"`
	Active bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
