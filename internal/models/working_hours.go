package models

import "time"

// WorkingHours is one weekday of a barber. Times are "HH:MM" in the
// shop's timezone; an empty lunch means no break.
type WorkingHours struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"not null;index" json:"barbershop_id"`
	BarberID     uint `gorm:"not null;uniqueIndex:idx_working_hours_barber_day,priority:1" json:"barber_id"`
	Weekday      int  `gorm:"not null;uniqueIndex:idx_working_hours_barber_day,priority:2" json:"weekday"`
	Active       bool `gorm:"not null;default:false" json:"active"`

	StartTime  string `gorm:"size:5" json:"start_time"`
	EndTime    string `gorm:"size:5" json:"end_time"`
	LunchStart string `gorm:"size:5" json:"lunch_start,omitempty"`
	LunchEnd   string `gorm:"size:5" json:"lunch_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
