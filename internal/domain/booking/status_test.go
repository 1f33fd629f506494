package booking

import (
	"testing"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func booking(status Status, payment PaymentStatus) *models.Booking {
	exp := time.Now().Add(time.Hour)
	return &models.Booking{
		Status:             string(status),
		PaymentStatus:      string(payment),
		ExpiresAt:          &exp,
		DepositAmount:      d("0"),
		OutstandingBalance: d("25"),
	}
}

func TestTransitionGuards(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	price := d("25")

	actions := map[Action]func(*models.Booking) error{
		ActionConfirm:    Confirm,
		ActionComplete:   func(b *models.Booking) error { return Complete(b, price, now) },
		ActionMarkPaid:   func(b *models.Booking) error { return MarkPaid(b, price) },
		ActionMarkNoShow: MarkNoShow,
		ActionCancel:     func(b *models.Booking) error { return Cancel(b, now) },
		ActionExpire:     func(b *models.Booking) error { return Expire(b, now) },
	}

	tests := []struct {
		action  Action
		status  Status
		payment PaymentStatus
		ok      bool
	}{
		{ActionConfirm, StatusPending, PaymentDepositPending, true},
		{ActionConfirm, StatusConfirmed, PaymentDepositPaid, false},
		{ActionConfirm, StatusCancelled, PaymentCancelled, false},

		{ActionComplete, StatusPending, PaymentDepositPending, true},
		{ActionComplete, StatusConfirmed, PaymentDepositPaid, true},
		{ActionComplete, StatusCancelled, PaymentCancelled, false},
		{ActionComplete, StatusCompleted, PaymentFullyPaid, false},
		{ActionComplete, StatusNoShow, PaymentDepositPaid, false},

		{ActionMarkPaid, StatusPending, PaymentDepositPending, true},
		{ActionMarkPaid, StatusNoShow, PaymentDepositPaid, true},
		{ActionMarkPaid, StatusCancelled, PaymentCancelled, false},
		{ActionMarkPaid, StatusCompleted, PaymentFullyPaid, false},

		{ActionMarkNoShow, StatusPending, PaymentDepositPending, true},
		{ActionMarkNoShow, StatusConfirmed, PaymentDepositPaid, true},
		{ActionMarkNoShow, StatusCompleted, PaymentFullyPaid, false},
		{ActionMarkNoShow, StatusNoShow, PaymentDepositPaid, false},

		{ActionCancel, StatusPending, PaymentDepositPending, true},
		{ActionCancel, StatusConfirmed, PaymentDepositPaid, true},
		{ActionCancel, StatusNoShow, PaymentDepositPaid, true},
		{ActionCancel, StatusCompleted, PaymentFullyPaid, false},
		{ActionCancel, StatusCancelled, PaymentCancelled, false},

		{ActionExpire, StatusPending, PaymentDepositPending, true},
		{ActionExpire, StatusConfirmed, PaymentDepositPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.status), func(t *testing.T) {
			b := booking(tt.status, tt.payment)
			before := *b

			err := actions[tt.action](b)

			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				if !httperr.IsKind(err, httperr.KindStateConflict) {
					t.Fatalf("err = %v, want state conflict", err)
				}
				if b.Status != before.Status || b.PaymentStatus != before.PaymentStatus {
					t.Fatal("rejected transition mutated the booking")
				}
			}
		})
	}
}

func TestConfirmClearsHold(t *testing.T) {
	b := booking(StatusPending, PaymentDepositPending)

	if err := Confirm(b); err != nil {
		t.Fatal(err)
	}
	if b.Status != string(StatusConfirmed) || b.PaymentStatus != string(PaymentDepositPaid) {
		t.Fatalf("got %s/%s", b.Status, b.PaymentStatus)
	}
	if b.ExpiresAt != nil {
		t.Fatal("expiry not cleared")
	}
}

func TestCompleteSettlesBalance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	b := booking(StatusConfirmed, PaymentDepositPaid)
	b.DepositAmount = d("5")
	b.OutstandingBalance = d("20")

	if err := Complete(b, d("25"), now); err != nil {
		t.Fatal(err)
	}
	if b.PaymentStatus != string(PaymentFullyPaid) {
		t.Fatalf("payment = %s", b.PaymentStatus)
	}
	if !b.DepositAmount.Equal(d("25")) || !b.OutstandingBalance.IsZero() {
		t.Fatalf("amounts = %s/%s", b.DepositAmount, b.OutstandingBalance)
	}
	if b.CompletedAt == nil || !b.CompletedAt.Equal(now) {
		t.Fatal("completed_at not set")
	}
}

func TestCancelPaymentStatus(t *testing.T) {
	now := time.Now()

	pending := booking(StatusPending, PaymentDepositPending)
	if err := Cancel(pending, now); err != nil {
		t.Fatal(err)
	}
	if pending.PaymentStatus != string(PaymentCancelled) {
		t.Fatalf("pending payment = %s", pending.PaymentStatus)
	}

	paid := booking(StatusConfirmed, PaymentDepositPaid)
	if err := Cancel(paid, now); err != nil {
		t.Fatal(err)
	}
	if paid.PaymentStatus != string(PaymentDepositPaid) {
		t.Fatalf("paid deposit should be kept, got %s", paid.PaymentStatus)
	}
}

func TestReschedule(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)

	b := booking(StatusPending, PaymentDepositPending)
	live := now.Add(2 * time.Minute)
	b.ExpiresAt = &live

	if err := Reschedule(b, start, 45, now, 10*time.Minute); err != nil {
		t.Fatal(err)
	}
	if !b.EndTime.Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("end = %v", b.EndTime)
	}
	if !b.ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("hold not refreshed: %v", b.ExpiresAt)
	}

	done := booking(StatusCompleted, PaymentFullyPaid)
	if err := Reschedule(done, start, 45, now, 0); !httperr.IsBusiness(err, "booking_closed") {
		t.Fatalf("err = %v, want booking_closed", err)
	}
}
