package audit

import (
	"context"
	"encoding/json"
	"sync"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func toModel(ev Event) models.AuditLog {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	return models.AuditLog{
		BarbershopID: ev.BarbershopID,
		UserID:       ev.UserID,
		Action:       ev.Action,
		Entity:       ev.Entity,
		EntityID:     ev.EntityID,
		Metadata:     metaJSON,
	}
}

// GormSink stores events in the audit_logs table.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

func (s *GormSink) Record(ctx context.Context, ev Event) error {
	row := toModel(ev)
	return s.db.WithContext(ctx).Create(&row).Error
}

// MemorySink keeps events in process.
type MemorySink struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (s *MemorySink) Record(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := toModel(ev)
	row.ID = uint(len(s.logs) + 1)
	s.logs = append(s.logs, row)
	return nil
}

func (s *MemorySink) Logs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.logs...)
}
