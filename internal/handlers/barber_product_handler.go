package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

type BarberProductHandler struct {
	db *gorm.DB
}

func NewBarberProductHandler(db *gorm.DB) *BarberProductHandler {
	return &BarberProductHandler{db: db}
}

// --------- Requests ---------

type CreateBarberProductRequest struct {
	Name           string           `json:"name" binding:"required"`
	Description    string           `json:"description"`
	DurationMin    int              `json:"duration_min" binding:"required,min=1"`
	Price          decimal.Decimal  `json:"price"`
	DepositPercent *decimal.Decimal `json:"deposit_percent"`
	Category       string           `json:"category"`
}

type UpdateBarberProductRequest struct {
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	DurationMin    *int             `json:"duration_min,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	DepositPercent *decimal.Decimal `json:"deposit_percent,omitempty"`
	Active         *bool            `json:"active,omitempty"`
}

var hundred = decimal.NewFromInt(100)

func validPrice(p decimal.Decimal) bool {
	return p.IsPositive()
}

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// --------- Handlers ---------

func (h *BarberProductHandler) List(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	var products []models.BarberProduct
	err := infraRepo.Scoped(c.Request.Context(), h.db, func(tx *gorm.DB) error {
		if category != "" {
			tx = tx.Where("LOWER(category) = ?", category)
		}
		switch activeStr {
		case "true":
			tx = tx.Where("active = ?", true)
		case "false":
			tx = tx.Where("active = ?", false)
		}
		if query != "" {
			like := "%" + query + "%"
			tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		return tx.Order("id ASC").Find(&products).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_list_products", "Erro ao listar serviços.")
		return
	}

	httpresp.List(c, products)
}

func (h *BarberProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	shopID, err := tenant.FromContext(ctx)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var req CreateBarberProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}
	if !validPrice(req.Price) {
		httperr.BadRequest(c, "invalid_price", "Preço inválido.")
		return
	}

	deposit := decimal.Zero
	if req.DepositPercent != nil {
		deposit = *req.DepositPercent
	}
	if !validPercent(deposit) {
		httperr.BadRequest(c, "invalid_deposit_percent", "Percentual de sinal inválido.")
		return
	}

	product := models.BarberProduct{
		BarbershopID:   shopID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		DurationMin:    req.DurationMin,
		Price:          req.Price.Round(2),
		DepositPercent: deposit,
		Active:         true,
		Category:       strings.ToLower(req.Category),
	}

	err = infraRepo.Scoped(ctx, h.db, func(tx *gorm.DB) error {
		return tx.Create(&product).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_create_product", "Erro ao criar serviço.")
		return
	}

	httpresp.Created(c, product)
}

func (h *BarberProductHandler) Update(c *gin.Context) {
	var req UpdateBarberProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}
	if req.Price != nil && !validPrice(*req.Price) {
		httperr.BadRequest(c, "invalid_price", "Preço inválido.")
		return
	}
	if req.DepositPercent != nil && !validPercent(*req.DepositPercent) {
		httperr.BadRequest(c, "invalid_deposit_percent", "Percentual de sinal inválido.")
		return
	}
	if req.DurationMin != nil && *req.DurationMin <= 0 {
		httperr.BadRequest(c, "invalid_service_duration", "Duração inválida.")
		return
	}

	var product models.BarberProduct
	err := infraRepo.Scoped(c.Request.Context(), h.db, func(tx *gorm.DB) error {
		if err := tx.First(&product, c.Param("id")).Error; err != nil {
			return err
		}

		if req.Name != nil {
			product.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.DurationMin != nil {
			product.DurationMin = *req.DurationMin
		}
		if req.Price != nil {
			product.Price = req.Price.Round(2)
		}
		if req.DepositPercent != nil {
			product.DepositPercent = *req.DepositPercent
		}
		if req.Active != nil {
			product.Active = *req.Active
		}

		return tx.Save(&product).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "product_not_found", "Serviço não encontrado.")
		return
	}
	if err != nil {
		httperr.Internal(c, "failed_to_update_product", "Erro ao atualizar serviço.")
		return
	}

	c.JSON(http.StatusOK, product)
}
