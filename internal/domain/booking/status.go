package booking

import (
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentDepositPending PaymentStatus = "deposit_pending"
	PaymentDepositPaid    PaymentStatus = "deposit_paid"
	PaymentFullyPaid      PaymentStatus = "fully_paid"
	PaymentCancelled      PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentOnline   PaymentMethod = "online"
	PaymentInPerson PaymentMethod = "in_person"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentInPerson
}

// ===============================
// Transitions
// ===============================

type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionComplete   Action = "complete"
	ActionMarkPaid   Action = "mark_paid"
	ActionMarkNoShow Action = "mark_no_show"
	ActionCancel     Action = "cancel"
	ActionExpire     Action = "expire"
)

// allowedFrom lists, per action, the statuses it may start from.
// mark_paid is guarded on payment status instead and is not listed.
// mark_no_show is stricter than "not cancelled or completed": a second
// no-show on the same booking is rejected too.
var allowedFrom = map[Action][]Status{
	ActionConfirm:    {StatusPending},
	ActionComplete:   {StatusPending, StatusConfirmed},
	ActionMarkNoShow: {StatusPending, StatusConfirmed},
	ActionCancel:     {StatusPending, StatusConfirmed, StatusNoShow},
	ActionExpire:     {StatusPending},
}

func Can(action Action, current Status) bool {
	for _, s := range allowedFrom[action] {
		if s == current {
			return true
		}
	}
	return false
}

// Guard returns a state conflict error when action is not allowed on b.
func Guard(action Action, b *models.Booking) error {
	if action == ActionMarkPaid {
		if Status(b.Status) == StatusCancelled || PaymentStatus(b.PaymentStatus) == PaymentFullyPaid {
			return httperr.StateConflictErr(string(action), stateLabel(b))
		}
		return nil
	}
	if !Can(action, Status(b.Status)) {
		return httperr.StateConflictErr(string(action), b.Status)
	}
	return nil
}

func stateLabel(b *models.Booking) string {
	if PaymentStatus(b.PaymentStatus) == PaymentFullyPaid {
		return b.Status + "/" + b.PaymentStatus
	}
	return b.Status
}
