package booking

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

// TransitionBooking moves a booking through its lifecycle. Each call
// reads the row FOR UPDATE so two staff members acting at once are
// applied one after the other.
type TransitionBooking struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	notify *notify.Dispatcher
	clock  clock.Clock
}

func NewTransitionBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Dispatcher,
	clk clock.Clock,
) *TransitionBooking {
	return &TransitionBooking{
		repo:   repo,
		audit:  audit,
		notify: notifier,
		clock:  clk,
	}
}

type transitionFn func(b *models.Booking, price decimal.Decimal, now time.Time) error

func (uc *TransitionBooking) Confirm(ctx context.Context, id uint) (*models.Booking, error) {
	b, err := uc.apply(ctx, id, domain.ActionConfirm, func(b *models.Booking, _ decimal.Decimal, _ time.Time) error {
		return domain.Confirm(b)
	})
	if err != nil {
		return nil, err
	}

	uc.notify.Publish(notify.BookingConfirmed(b, uc.clock.Now()))
	return b, nil
}

func (uc *TransitionBooking) Complete(ctx context.Context, id uint) (*models.Booking, error) {
	return uc.apply(ctx, id, domain.ActionComplete, domain.Complete)
}

func (uc *TransitionBooking) MarkPaid(ctx context.Context, id uint) (*models.Booking, error) {
	return uc.apply(ctx, id, domain.ActionMarkPaid, func(b *models.Booking, price decimal.Decimal, _ time.Time) error {
		return domain.MarkPaid(b, price)
	})
}

func (uc *TransitionBooking) MarkNoShow(ctx context.Context, id uint) (*models.Booking, error) {
	return uc.apply(ctx, id, domain.ActionMarkNoShow, func(b *models.Booking, _ decimal.Decimal, _ time.Time) error {
		return domain.MarkNoShow(b)
	})
}

func (uc *TransitionBooking) Cancel(ctx context.Context, id uint) (*models.Booking, error) {
	return uc.apply(ctx, id, domain.ActionCancel, func(b *models.Booking, _ decimal.Decimal, now time.Time) error {
		return domain.Cancel(b, now)
	})
}

func errHoldExpired() error {
	return httperr.BusinessError{
		Kind:    httperr.KindStateConflict,
		Code:    "hold_expired",
		Message: "A reserva expirou e o horário já foi ocupado.",
	}
}

func (uc *TransitionBooking) apply(
	ctx context.Context,
	id uint,
	action domain.Action,
	fn transitionFn,
) (*models.Booking, error) {

	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		b    *models.Booking
		from string
	)

	err = withRetry(ctx, func() error {
		return uc.repo.Transaction(ctx, domain.Serializable, func(tx domain.Repository) error {
			var err error
			b, err = tx.GetBookingForUpdate(ctx, id)
			if errors.Is(err, domain.ErrRecordNotFound) {
				return httperr.NotFoundErr("booking_not_found", "Agendamento não encontrado.")
			}
			if err != nil {
				return err
			}
			from = b.Status

			price := b.DepositAmount.Add(b.OutstandingBalance)
			if action == domain.ActionComplete || action == domain.ActionMarkPaid {
				product, err := tx.GetProduct(ctx, b.BarberProductID)
				if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
					return err
				}
				if product != nil {
					price = product.Price
				}
			}

			now := uc.clock.Now()
			lapsed := !domain.IsBlocking(b, now)
			if err := fn(b, price, now); err != nil {
				return err
			}

			// A lapsed hold that comes back to life must win its slot again:
			// someone may have booked it after the expiry.
			if lapsed && domain.IsBlocking(b, now) {
				err := NewConflictDetector(tx).CheckAvailable(ctx, b.BarberID, b.StartTime, b.EndTime, b.ID, now)
				if httperr.IsBusiness(err, "time_conflict") {
					return errHoldExpired()
				}
				if err != nil {
					return err
				}
			}
			return tx.UpdateBooking(ctx, b)
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(action)).Inc()

	uc.audit.Dispatch(audit.Event{
		BarbershopID: tenantID,
		UserID:       audit.ActorFrom(ctx),
		Action:       "booking_" + string(action),
		Entity:       "booking",
		EntityID:     &b.ID,
		Metadata: map[string]string{
			"from":           from,
			"to":             b.Status,
			"payment_status": b.PaymentStatus,
		},
	})

	return b, nil
}
