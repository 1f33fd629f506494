package models

import "time"

// Client books without an account. The phone, digits only, identifies
// the client inside a shop.
type Client struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"not null;index:idx_clients_shop_phone,priority:1" json:"barbershop_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20;index:idx_clients_shop_phone,priority:2" json:"phone"`
	Email string `gorm:"size:100" json:"email,omitempty"`

	// blacklisted clients cannot book
	Blacklisted     bool   `gorm:"not null;default:false" json:"blacklisted"`
	BlacklistReason string `gorm:"size:255" json:"blacklist_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
