package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

type TenantResolver interface {
	FindBarbershopBySlug(ctx context.Context, slug string) (*models.Barbershop, error)
}

// PublicTenant scopes the public booking page to the shop named by :slug.
func PublicTenant(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if slug == "" {
			httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
			return
		}

		shop, err := resolver.FindBarbershopBySlug(c.Request.Context(), slug)
		if errors.Is(err, domain.ErrRecordNotFound) {
			httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
			return
		}
		if err != nil {
			httperr.FromError(c, err)
			return
		}

		c.Set(ContextBarbershopID, shop.ID)

		ctx := tenant.WithID(c.Request.Context(), shop.ID)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.Uint("barbershop_id", shop.ID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
