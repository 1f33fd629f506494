package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
)

// MeHandler reads through the booking repository so it answers on both
// storages, always scoped to the token's barbershop.
type MeHandler struct {
	repo domain.Repository
}

func NewMeHandler(repo domain.Repository) *MeHandler {
	return &MeHandler{repo: repo}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.repo.GetBarber(ctx, c.MustGet(middleware.ContextUserID).(uint))
	if errors.Is(err, domain.ErrRecordNotFound) {
		httperr.NotFound(c, "user_not_found", "Usuário não encontrado.")
		return
	}
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	shop, err := h.repo.GetBarbershop(ctx)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"name":          user.Name,
			"email":         user.Email,
			"phone":         user.Phone,
			"role":          user.Role,
			"barbershop_id": user.BarbershopID,
		},
		"barbershop": gin.H{
			"id":       shop.ID,
			"name":     shop.Name,
			"slug":     shop.Slug,
			"phone":    shop.Phone,
			"address":  shop.Address,
			"timezone": shop.Timezone,
		},
	})
}
