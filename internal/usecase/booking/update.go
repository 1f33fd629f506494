package booking

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type UpdateBookingInput struct {
	BookingID uint
	Date      string
	Time      string
}

// UpdateBooking reschedules a booking. Barber and service stay the same.
type UpdateBooking struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	clock   clock.Clock
	holdTTL time.Duration
}

func NewUpdateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clk clock.Clock,
	holdTTL time.Duration,
) *UpdateBooking {
	return &UpdateBooking{
		repo:    repo,
		audit:   audit,
		clock:   clk,
		holdTTL: holdTTL,
	}
}

func (uc *UpdateBooking) Execute(
	ctx context.Context,
	in UpdateBookingInput,
) (*models.Booking, error) {

	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	shop, err := uc.repo.GetBarbershop(ctx)
	if err != nil {
		return nil, err
	}

	start, err := timezone.ParseDateTime(shop.Timezone, in.Date, in.Time)
	if err != nil {
		return nil, httperr.BadRequestErr("invalid_date_or_time", "Data ou hora inválida.")
	}

	var (
		updated  *models.Booking
		previous time.Time
	)

	err = withRetry(ctx, func() error {
		return uc.repo.Transaction(ctx, domain.Serializable, func(tx domain.Repository) error {
			now := timezone.In(uc.clock.Now(), shop.Timezone)

			b, err := tx.GetBookingForUpdate(ctx, in.BookingID)
			if errors.Is(err, domain.ErrRecordNotFound) {
				return httperr.NotFoundErr("booking_not_found", "Agendamento não encontrado.")
			}
			if err != nil {
				return err
			}

			if domain.Status(b.Status).IsTerminal() {
				return httperr.BadRequestErr("booking_closed", "Agendamento "+b.Status+" não pode ser alterado.")
			}

			if err := domain.AssertFutureOrNow(start, now); err != nil {
				return err
			}

			product, err := NewEntityValidator(tx).ResolveService(ctx, b.BarberProductID)
			if err != nil {
				return err
			}
			end := domain.EndFor(start, product.DurationMin)

			if err := assertWorkingHours(ctx, tx, b.BarberID, start, end); err != nil {
				return err
			}

			if err := NewConflictDetector(tx).CheckAvailable(ctx, b.BarberID, start, end, b.ID, now); err != nil {
				return err
			}

			previous = b.StartTime
			if err := domain.Reschedule(b, start, product.DurationMin, now, uc.holdTTL); err != nil {
				return err
			}

			if err := tx.UpdateBooking(ctx, b); err != nil {
				return err
			}

			updated = b
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: tenantID,
		UserID:       audit.ActorFrom(ctx),
		Action:       "booking_rescheduled",
		Entity:       "booking",
		EntityID:     &updated.ID,
		Metadata: map[string]any{
			"from": previous,
			"to":   updated.StartTime,
		},
	})

	return updated, nil
}
