package booking

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/payment"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

type CheckoutResult struct {
	Booking  *models.Booking   `json:"booking"`
	Checkout *payment.Checkout `json:"checkout"`
}

// DepositCheckout prices the deposit of a pending hold and opens a
// checkout for it with the payment provider.
type DepositCheckout struct {
	repo    domain.Repository
	gateway payment.Gateway
	audit   *audit.Dispatcher
	clock   clock.Clock
}

func NewDepositCheckout(
	repo domain.Repository,
	gateway payment.Gateway,
	audit *audit.Dispatcher,
	clk clock.Clock,
) *DepositCheckout {
	return &DepositCheckout{
		repo:    repo,
		gateway: gateway,
		audit:   audit,
		clock:   clk,
	}
}

func (uc *DepositCheckout) Execute(ctx context.Context, bookingID uint) (*CheckoutResult, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 1️⃣ Agendamento ainda segurando o horário
	// --------------------------------------------------
	b, err := uc.repo.GetBooking(ctx, bookingID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("booking_not_found", "Agendamento não encontrado.")
	}
	if err != nil {
		return nil, err
	}
	if err := uc.assertPayable(b); err != nil {
		return nil, err
	}

	product, err := NewEntityValidator(uc.repo).ResolveService(ctx, b.BarberProductID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Sinal + checkout no provedor (fora da tx)
	// --------------------------------------------------
	deposit, _ := domain.CalculateDeposit(product.Price, product.DepositPercent)

	co, err := uc.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		Title:     "Sinal - " + product.Name,
		Amount:    deposit,
		Reference: payment.Reference(tenantID, b.ID),
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3️⃣ Grava valores e checkout
	// --------------------------------------------------
	err = uc.repo.Transaction(ctx, domain.TxOptions{}, func(tx domain.Repository) error {
		cur, err := tx.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := uc.assertPayable(cur); err != nil {
			return err
		}

		domain.ApplyDeposit(cur, product.Price, product.DepositPercent)
		cur.CheckoutID = co.ID

		if err := tx.UpdateBooking(ctx, cur); err != nil {
			return err
		}
		b = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: tenantID,
		UserID:       audit.ActorFrom(ctx),
		Action:       "booking_checkout_opened",
		Entity:       "booking",
		EntityID:     &b.ID,
		Metadata: map[string]string{
			"checkout_id": co.ID,
			"deposit":     b.DepositAmount.StringFixed(2),
			"balance":     b.OutstandingBalance.StringFixed(2),
		},
	})

	return &CheckoutResult{Booking: b, Checkout: co}, nil
}

func (uc *DepositCheckout) assertPayable(b *models.Booking) error {
	if domain.PaymentMethod(b.PaymentMethod) == domain.PaymentInPerson {
		return httperr.BadRequestErr("payment_in_person", "Pagamento será feito na barbearia.")
	}
	if domain.Status(b.Status) != domain.StatusPending ||
		domain.PaymentStatus(b.PaymentStatus) != domain.PaymentDepositPending {
		return httperr.StateConflictErr("checkout", b.Status)
	}
	if !domain.IsBlocking(b, uc.clock.Now()) {
		return httperr.ConflictErr("hold_expired", "A reserva expirou. Escolha o horário novamente.")
	}
	return nil
}
