package models

import "time"

// AuditLog is append-only. Metadata holds the JSON the event was
// dispatched with.
type AuditLog struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	BarbershopID uint  `gorm:"not null;index:idx_audit_shop_created,priority:1" json:"barbershop_id"`
	UserID       *uint `json:"user_id,omitempty"`

	Action   string `gorm:"size:50;not null;index" json:"action"`
	Entity   string `gorm:"size:50;index:idx_audit_entity,priority:1" json:"entity"`
	EntityID *uint  `gorm:"index:idx_audit_entity,priority:2" json:"entity_id,omitempty"`
	Metadata string `gorm:"type:text" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_audit_shop_created,priority:2" json:"created_at"`
}
