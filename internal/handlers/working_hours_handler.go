package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type WorkingHoursHandler struct {
	db *gorm.DB
}

func NewWorkingHoursHandler(db *gorm.DB) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db}
}

type WorkingDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required,dive"`
}

func parseHM(s string) (time.Time, bool) {
	t, err := time.Parse(timezone.TimeLayout, s)
	return t, err == nil
}

// valid checks an active day: opening before closing, and lunch, when
// set, inside the day.
func (d WorkingDayConfig) valid() bool {
	if !d.Active {
		return true
	}
	start, ok1 := parseHM(d.StartTime)
	end, ok2 := parseHM(d.EndTime)
	if !ok1 || !ok2 || !start.Before(end) {
		return false
	}
	if d.LunchStart == "" && d.LunchEnd == "" {
		return true
	}
	ls, ok1 := parseHM(d.LunchStart)
	le, ok2 := parseHM(d.LunchEnd)
	return ok1 && ok2 && ls.Before(le) && !ls.Before(start) && !le.After(end)
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var hours []models.WorkingHours
	err := infraRepo.Scoped(c.Request.Context(), h.db, func(tx *gorm.DB) error {
		return tx.Where("barber_id = ?", barberID).Order("weekday ASC").Find(&hours).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_get_working_hours", "Erro ao buscar horários.")
		return
	}

	httpresp.List(c, hours)
}

// Update replaces the whole week of the authenticated barber.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	shopID, err := tenant.FromContext(ctx)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	seen := map[int]bool{}
	toCreate := make([]models.WorkingHours, 0, len(req.Days))
	for _, d := range req.Days {
		if seen[d.Weekday] || !d.valid() {
			httperr.BadRequest(c, "invalid_working_hours", "Horário inválido.")
			return
		}
		seen[d.Weekday] = true

		toCreate = append(toCreate, models.WorkingHours{
			BarbershopID: shopID,
			BarberID:     barberID,
			Weekday:      d.Weekday,
			Active:       d.Active,
			StartTime:    d.StartTime,
			EndTime:      d.EndTime,
			LunchStart:   d.LunchStart,
			LunchEnd:     d.LunchEnd,
		})
	}

	err = infraRepo.Scoped(ctx, h.db, func(tx *gorm.DB) error {
		if err := tx.Where("barber_id = ?", barberID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_working_hours", "Erro ao salvar horários.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
