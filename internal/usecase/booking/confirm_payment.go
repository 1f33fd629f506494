package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/infra/cache"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/payment"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

const paymentDedupeTTL = 48 * time.Hour

type PaymentOutcome string

const (
	OutcomeConfirmed PaymentOutcome = "confirmed"
	OutcomeIgnored   PaymentOutcome = "ignored"
	OutcomeDuplicate PaymentOutcome = "duplicate"
	OutcomeRejected  PaymentOutcome = "rejected"
)

// ConfirmDepositPayment handles the provider's payment notification. It
// runs without a request tenant: the tenant comes from the payment's
// external reference.
type ConfirmDepositPayment struct {
	gateway     payment.Gateway
	transitions *TransitionBooking
	dedupe      cache.Store
}

func NewConfirmDepositPayment(
	gateway payment.Gateway,
	transitions *TransitionBooking,
	dedupe cache.Store,
) *ConfirmDepositPayment {
	return &ConfirmDepositPayment{
		gateway:     gateway,
		transitions: transitions,
		dedupe:      dedupe,
	}
}

func (uc *ConfirmDepositPayment) Execute(ctx context.Context, paymentID string) (PaymentOutcome, error) {
	log := logger.FromContext(ctx).With(zap.String("payment_id", paymentID))

	p, err := uc.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if p.Status != payment.StatusApproved {
		log.Info("payment not approved yet", zap.String("status", p.Status))
		return OutcomeIgnored, nil
	}

	shopID, bookingID, err := payment.ParseReference(p.Reference)
	if err != nil {
		return "", httperr.BadRequestErr("invalid_reference", "Referência de pagamento inválida.")
	}

	key := "payment:processed:" + paymentID
	if uc.dedupe != nil {
		fresh, err := uc.dedupe.SetNX(ctx, key, paymentID, paymentDedupeTTL)
		if err != nil {
			return "", err
		}
		if !fresh {
			return OutcomeDuplicate, nil
		}
	}

	var outcome PaymentOutcome
	err = tenant.Run(ctx, shopID, func(ctx context.Context) error {
		_, err := uc.transitions.Confirm(ctx, bookingID)
		switch {
		case err == nil:
			outcome = OutcomeConfirmed
			return nil
		case httperr.IsKind(err, httperr.KindStateConflict):
			// already confirmed, or the hold was swept before the money
			// arrived; refunds are handled by the provider.
			log.Warn("payment for booking that cannot be confirmed",
				zap.Uint("barbershop_id", shopID),
				zap.Uint("booking_id", bookingID),
				zap.Error(err),
			)
			outcome = OutcomeRejected
			return nil
		default:
			return err
		}
	})
	if err != nil {
		if uc.dedupe != nil {
			_ = uc.dedupe.Release(ctx, key, paymentID)
		}
		return "", err
	}

	return outcome, nil
}
