package booking

import (
	"context"
	"errors"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

// EntityValidator resolves the parties of a booking through the tenant
// scope of ctx and applies the domain guards to them.
type EntityValidator struct {
	repo domain.Repository
}

func NewEntityValidator(repo domain.Repository) *EntityValidator {
	return &EntityValidator{repo: repo}
}

func (v *EntityValidator) ResolveClient(ctx context.Context, id uint) (*models.Client, error) {
	c, err := v.repo.GetClient(ctx, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("client_not_found", "Cliente não encontrado.")
	}
	return c, err
}

func (v *EntityValidator) ResolveBarber(ctx context.Context, id uint) (*models.User, error) {
	u, err := v.repo.GetBarber(ctx, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("barber_not_found", "Barbeiro não encontrado.")
	}
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, httperr.NotFoundErr("barber_not_found", "Barbeiro não encontrado.")
	}
	return u, nil
}

func (v *EntityValidator) ResolveService(ctx context.Context, id uint) (*models.BarberProduct, error) {
	p, err := v.repo.GetProduct(ctx, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("product_not_found", "Serviço não encontrado.")
	}
	return p, err
}

type Parties struct {
	Client  *models.Client
	Barber  *models.User
	Product *models.BarberProduct
}

// Validate resolves client, barber and service and checks that the
// booking at start may be taken by this client.
func (v *EntityValidator) Validate(
	ctx context.Context,
	client *models.Client,
	barberID uint,
	serviceID uint,
	start time.Time,
	now time.Time,
) (*Parties, error) {

	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	barber, err := v.ResolveBarber(ctx, barberID)
	if err != nil {
		return nil, err
	}
	product, err := v.ResolveService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if err := domain.AssertSameTenant(tenantID, client, barber, product); err != nil {
		return nil, err
	}
	if err := domain.AssertNotBlacklisted(client); err != nil {
		return nil, err
	}
	if err := domain.AssertFutureOrNow(start, now); err != nil {
		return nil, err
	}
	if err := domain.AssertBookable(product); err != nil {
		return nil, err
	}

	return &Parties{Client: client, Barber: barber, Product: product}, nil
}

// assertWorkingHours accepts any time for a barber without a schedule on
// that weekday.
func assertWorkingHours(ctx context.Context, repo domain.Repository, barberID uint, start, end time.Time) error {
	wh, err := repo.GetWorkingHours(ctx, barberID, int(start.Weekday()))
	if errors.Is(err, domain.ErrRecordNotFound) {
		wh, err = nil, nil
	}
	if err != nil {
		return err
	}
	if !domain.IsWithinWorkingHours(wh, start, end) {
		return httperr.BadRequestErr("outside_working_hours", "Fora do horário de atendimento.")
	}
	return nil
}
