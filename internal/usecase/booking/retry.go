package booking

import (
	"context"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
)

const maxTxAttempts = 3

func errSlotTaken() error {
	return httperr.ConflictErr("slot_taken", "O horário pode ter sido ocupado. Tente novamente.")
}

// withRetry reruns fn while the database aborts it for serialization.
// Once attempts run out, or a constraint rejects the row, the caller sees
// a slot conflict instead of the storage error.
func withRetry(ctx context.Context, fn func() error) error {
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err := fn()
		switch {
		case err == nil:
			return nil
		case httperr.IsExclusionConflict(err):
			metrics.BookingConflicts.Inc()
			return errSlotTaken()
		case httperr.IsKind(err, httperr.KindConflict):
			metrics.BookingConflicts.Inc()
			return err
		case !httperr.IsSerializationFailure(err):
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	metrics.BookingConflicts.Inc()
	return errSlotTaken()
}
