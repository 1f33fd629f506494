package booking

import (
	"context"
	"strings"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

// CreateBookingInput identifies the client by ClientID, or, on the public
// page, by phone: an unknown phone creates the client.
type CreateBookingInput struct {
	ClientID uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	BarberID  uint
	ServiceID uint

	Date          string
	Time          string
	PaymentMethod string
	Notes         string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	clock   clock.Clock
	holdTTL time.Duration
}

func NewCreateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clk clock.Clock,
	holdTTL time.Duration,
) *CreateBooking {
	return &CreateBooking{
		repo:    repo,
		audit:   audit,
		clock:   clk,
		holdTTL: holdTTL,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 1️⃣ Barbearia + data/hora no timezone dela
	// --------------------------------------------------
	shop, err := uc.repo.GetBarbershop(ctx)
	if err != nil {
		return nil, err
	}

	start, err := timezone.ParseDateTime(shop.Timezone, in.Date, in.Time)
	if err != nil {
		return nil, httperr.BadRequestErr("invalid_date_or_time", "Data ou hora inválida.")
	}

	method, err := parsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if in.ClientID == 0 && strings.TrimSpace(in.ClientPhone) == "" {
		return nil, httperr.BadRequestErr("client_required", "Informe o cliente.")
	}

	var created *models.Booking

	// --------------------------------------------------
	// 2️⃣ Validação + conflito + gravação numa única tx
	// --------------------------------------------------
	err = withRetry(ctx, func() error {
		return uc.repo.Transaction(ctx, domain.Serializable, func(tx domain.Repository) error {
			now := timezone.In(uc.clock.Now(), shop.Timezone)
			v := NewEntityValidator(tx)

			client, err := uc.resolveClient(ctx, tx, v, in)
			if err != nil {
				return err
			}

			parties, err := v.Validate(ctx, client, in.BarberID, in.ServiceID, start, now)
			if err != nil {
				return err
			}

			end := domain.EndFor(start, parties.Product.DurationMin)

			if err := assertWorkingHours(ctx, tx, parties.Barber.ID, start, end); err != nil {
				return err
			}

			if err := NewConflictDetector(tx).CheckAvailable(ctx, parties.Barber.ID, start, end, 0, now); err != nil {
				return err
			}

			b := domain.NewPending(domain.NewPendingParams{
				BarbershopID:  tenantID,
				Client:        parties.Client,
				BarberID:      parties.Barber.ID,
				Product:       parties.Product,
				Start:         start,
				PaymentMethod: method,
				Notes:         in.Notes,
				Now:           now,
				HoldTTL:       uc.holdTTL,
			})

			if err := tx.CreateBooking(ctx, b); err != nil {
				return err
			}

			created = b
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3️⃣ Métricas + auditoria
	// --------------------------------------------------
	metrics.BookingsCreated.Inc()

	uc.audit.Dispatch(audit.Event{
		BarbershopID: tenantID,
		UserID:       audit.ActorFrom(ctx),
		Action:       "booking_created",
		Entity:       "booking",
		EntityID:     &created.ID,
		Metadata: map[string]any{
			"barber_id":  created.BarberID,
			"start_time": created.StartTime,
			"expires_at": created.ExpiresAt,
		},
	})

	return created, nil
}

func (uc *CreateBooking) resolveClient(
	ctx context.Context,
	tx domain.Repository,
	v *EntityValidator,
	in CreateBookingInput,
) (*models.Client, error) {

	if in.ClientID != 0 {
		return v.ResolveClient(ctx, in.ClientID)
	}

	phone, ok := validators.NormalizePhone(in.ClientPhone)
	if !ok {
		return nil, httperr.BadRequestErr("invalid_phone", "Telefone inválido.")
	}
	email := strings.TrimSpace(in.ClientEmail)
	if email != "" && !validators.IsEmail(email) {
		return nil, httperr.BadRequestErr("invalid_email", "E-mail inválido.")
	}

	return tx.GetOrCreateClient(ctx, strings.TrimSpace(in.ClientName), phone, email)
}

func parsePaymentMethod(raw string) (domain.PaymentMethod, error) {
	if raw == "" {
		return domain.PaymentOnline, nil
	}
	m := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", httperr.BadRequestErr("invalid_payment_method", "Forma de pagamento inválida.")
	}
	return m, nil
}
