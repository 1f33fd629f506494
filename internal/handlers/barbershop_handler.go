package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type BarbershopHandler struct {
	db *gorm.DB
}

func NewBarbershopHandler(db *gorm.DB) *BarbershopHandler {
	return &BarbershopHandler{db: db}
}

type UpdateBarbershopRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Timezone *string `json:"timezone"`
}

func (h *BarbershopHandler) load(c *gin.Context) (*models.Barbershop, bool) {
	id, err := tenant.FromContext(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return nil, false
	}

	var shop models.Barbershop
	if err := h.db.WithContext(c.Request.Context()).First(&shop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_barbershop", "Erro ao buscar dados da barbearia.")
		return nil, false
	}
	return &shop, true
}

func (h *BarbershopHandler) GetMeBarbershop(c *gin.Context) {
	shop, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, shop)
}

// UpdateMeBarbershop edits the shop profile. The timezone drives every
// date the shop's bookings are parsed and listed in.
func (h *BarbershopHandler) UpdateMeBarbershop(c *gin.Context) {
	shop, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateBarbershopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.BadRequest(c, "invalid_name", "Nome obrigatório.")
			return
		}
		shop.Name = name
	}
	if req.Phone != nil {
		shop.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		shop.Address = strings.TrimSpace(*req.Address)
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Fuso horário inválido.")
			return
		}
		shop.Timezone = *req.Timezone
	}

	if err := h.db.WithContext(c.Request.Context()).Save(shop).Error; err != nil {
		httperr.Internal(c, "failed_to_update_barbershop", "Erro ao salvar barbearia.")
		return
	}

	c.JSON(http.StatusOK, shop)
}
