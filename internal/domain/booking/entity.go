package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const DefaultHoldTTL = 10 * time.Minute

type NewPendingParams struct {
	BarbershopID  uint
	Client        *models.Client
	BarberID      uint
	Product       *models.BarberProduct
	Start         time.Time
	PaymentMethod PaymentMethod
	Notes         string
	Now           time.Time
	HoldTTL       time.Duration
}

// NewPending builds a hold: nothing paid yet, the whole price outstanding,
// expiring HoldTTL from now.
func NewPending(p NewPendingParams) *models.Booking {
	ttl := p.HoldTTL
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	expires := p.Now.Add(ttl)

	return &models.Booking{
		BarbershopID:       p.BarbershopID,
		ClientID:           p.Client.ID,
		BarberID:           p.BarberID,
		BarberProductID:    p.Product.ID,
		Date:               dayOf(p.Start),
		StartTime:          p.Start,
		EndTime:            EndFor(p.Start, p.Product.DurationMin),
		Status:             string(StatusPending),
		PaymentStatus:      string(PaymentDepositPending),
		PaymentMethod:      string(p.PaymentMethod),
		DepositAmount:      decimal.Zero,
		OutstandingBalance: p.Product.Price,
		ExpiresAt:          &expires,
		Notes:              p.Notes,
	}
}

func EndFor(start time.Time, durationMin int) time.Time {
	return start.Add(time.Duration(durationMin) * time.Minute)
}

// dayOf is the shop-local calendar day of t, pinned at UTC midnight so a
// DATE column stores that same day whatever the session timezone.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ===============================
// Domain Actions
// ===============================

// Reschedule moves b to a new start keeping its duration. A pending hold
// that is still alive gets a fresh expiry.
func Reschedule(b *models.Booking, start time.Time, durationMin int, now time.Time, holdTTL time.Duration) error {
	if Status(b.Status).IsTerminal() {
		return httperr.BadRequestErr("booking_closed", "Agendamento "+b.Status+" não pode ser alterado.")
	}

	b.Date = dayOf(start)
	b.StartTime = start
	b.EndTime = EndFor(start, durationMin)

	if Status(b.Status) == StatusPending && b.ExpiresAt != nil && now.Before(*b.ExpiresAt) {
		if holdTTL <= 0 {
			holdTTL = DefaultHoldTTL
		}
		expires := now.Add(holdTTL)
		b.ExpiresAt = &expires
	}
	return nil
}

func Confirm(b *models.Booking) error {
	if err := Guard(ActionConfirm, b); err != nil {
		return err
	}

	b.Status = string(StatusConfirmed)
	b.PaymentStatus = string(PaymentDepositPaid)
	b.ExpiresAt = nil
	return nil
}

func Complete(b *models.Booking, price decimal.Decimal, now time.Time) error {
	if err := Guard(ActionComplete, b); err != nil {
		return err
	}

	b.Status = string(StatusCompleted)
	b.CompletedAt = &now
	b.ExpiresAt = nil
	settle(b, price)
	return nil
}

// MarkPaid settles the balance at the chair without touching the status.
func MarkPaid(b *models.Booking, price decimal.Decimal) error {
	if err := Guard(ActionMarkPaid, b); err != nil {
		return err
	}

	settle(b, price)
	b.ExpiresAt = nil
	return nil
}

func MarkNoShow(b *models.Booking) error {
	if err := Guard(ActionMarkNoShow, b); err != nil {
		return err
	}

	b.Status = string(StatusNoShow)
	b.ExpiresAt = nil
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	if err := Guard(ActionCancel, b); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	b.ExpiresAt = nil
	if PaymentStatus(b.PaymentStatus) == PaymentDepositPending {
		b.PaymentStatus = string(PaymentCancelled)
	}
	return nil
}

// Expire releases an abandoned hold. The expiry timestamp is kept as a
// record of when the hold lapsed.
func Expire(b *models.Booking, now time.Time) error {
	if err := Guard(ActionExpire, b); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.PaymentStatus = string(PaymentCancelled)
	b.CancelledAt = &now
	return nil
}

func settle(b *models.Booking, price decimal.Decimal) {
	b.PaymentStatus = string(PaymentFullyPaid)
	b.DepositAmount = price
	b.OutstandingBalance = decimal.Zero
}

// ApplyDeposit stores the split computed for the online payment step.
func ApplyDeposit(b *models.Booking, price, depositPercent decimal.Decimal) {
	b.DepositAmount, b.OutstandingBalance = CalculateDeposit(price, depositPercent)
}
