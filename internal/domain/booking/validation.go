package booking

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// AssertSameTenant guards against ids from another shop slipping through
// individual lookups.
func AssertSameTenant(tenantID uint, client *models.Client, barber *models.User, product *models.BarberProduct) error {
	if client.BarbershopID != tenantID ||
		barber.BarbershopID != tenantID ||
		product.BarbershopID != tenantID {
		return httperr.BadRequestErr("tenant_mismatch", "Cliente, barbeiro e serviço devem pertencer à mesma barbearia.")
	}
	return nil
}

// AssertFutureOrNow accepts start == now.
func AssertFutureOrNow(start, now time.Time) error {
	if start.Before(now) {
		return httperr.BadRequestErr("date_in_past", "Data ou hora no passado.")
	}
	return nil
}

func AssertNotBlacklisted(client *models.Client) error {
	if client.Blacklisted {
		reason := client.BlacklistReason
		if reason == "" {
			reason = "Cliente bloqueado."
		}
		return httperr.ForbiddenErr("client_blacklisted", reason)
	}
	return nil
}

func AssertBookable(product *models.BarberProduct) error {
	if !product.Active {
		return httperr.BadRequestErr("service_inactive", "Serviço indisponível.")
	}
	if product.DurationMin <= 0 {
		return httperr.BadRequestErr("invalid_service_duration", "Serviço sem duração.")
	}
	return nil
}
