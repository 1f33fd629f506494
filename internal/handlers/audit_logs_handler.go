package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

// List pages through the shop's audit trail, newest first. Filters:
// action, entity, entity_id, from and to (YYYY-MM-DD, inclusive).
func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	offset := (page - 1) * limit

	var (
		total int64
		logs  []models.AuditLog
	)

	err := infraRepo.Scoped(c.Request.Context(), h.db, func(tx *gorm.DB) error {
		q := tx.Model(&models.AuditLog{})

		if action := c.Query("action"); action != "" {
			q = q.Where("action = ?", action)
		}
		if entity := c.Query("entity"); entity != "" {
			q = q.Where("entity = ?", entity)
		}
		if id, err := strconv.ParseUint(c.Query("entity_id"), 10, 64); err == nil {
			q = q.Where("entity_id = ?", id)
		}
		if from, err := time.Parse(timezone.DateLayout, c.Query("from")); err == nil {
			q = q.Where("created_at >= ?", from)
		}
		if to, err := time.Parse(timezone.DateLayout, c.Query("to")); err == nil {
			q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
		}

		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	})
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "Erro ao listar logs.")
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}
