package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

type ClientHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewClientHandler(db *gorm.DB, audit *audit.Dispatcher) *ClientHandler {
	return &ClientHandler{db: db, audit: audit}
}

type BlacklistRequest struct {
	Blacklisted bool   `json:"blacklisted"`
	Reason      string `json:"reason"`
}

// ======================================================
// LIST CLIENTS
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	var clients []models.Client
	err := infraRepo.Scoped(c.Request.Context(), h.db, func(tx *gorm.DB) error {
		if query != "" {
			like := "%" + query + "%"
			tx = tx.Where(
				"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
				like, like, like,
			)
		}
		if c.Query("blacklisted") == "true" {
			tx = tx.Where("blacklisted = ?", true)
		}
		return tx.Order("created_at DESC").Find(&clients).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_list_clients", "Erro ao listar clientes.")
		return
	}

	httpresp.List(c, clients)
}

// ======================================================
// BLACKLIST
// ======================================================

// SetBlacklist blocks or unblocks a client. Blocked clients cannot book;
// existing bookings are left alone.
func (h *ClientHandler) SetBlacklist(c *gin.Context) {
	ctx := c.Request.Context()

	var req BlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var client models.Client
	err := infraRepo.Scoped(ctx, h.db, func(tx *gorm.DB) error {
		if err := tx.First(&client, c.Param("id")).Error; err != nil {
			return err
		}
		client.Blacklisted = req.Blacklisted
		client.BlacklistReason = ""
		if req.Blacklisted {
			client.BlacklistReason = strings.TrimSpace(req.Reason)
		}
		return tx.Save(&client).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "client_not_found", "Cliente não encontrado.")
		return
	}
	if err != nil {
		httperr.Internal(c, "failed_to_update_client", "Erro ao atualizar cliente.")
		return
	}

	action := "client_unblacklisted"
	if client.Blacklisted {
		action = "client_blacklisted"
	}
	shopID, _ := tenant.FromContext(ctx)
	h.audit.Dispatch(audit.Event{
		BarbershopID: shopID,
		UserID:       audit.ActorFrom(ctx),
		Action:       action,
		Entity:       "client",
		EntityID:     &client.ID,
		Metadata:     map[string]any{"reason": client.BlacklistReason},
	})

	c.JSON(http.StatusOK, client)
}
