package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type ConflictDetector struct {
	repo domain.Repository
}

func NewConflictDetector(repo domain.Repository) *ConflictDetector {
	return &ConflictDetector{repo: repo}
}

// CheckAvailable locks the barber's overlapping bookings and fails when
// one of them still blocks [start, end). Meant to run inside the
// transaction that writes the booking.
func (d *ConflictDetector) CheckAvailable(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
	excludeID uint,
	now time.Time,
) error {

	existing, err := d.repo.ListOverlapping(ctx, barberID, start, end, true)
	if err != nil {
		return err
	}

	if len(domain.Conflicts(existing, start, end, now, excludeID)) > 0 {
		return httperr.ConflictErr("time_conflict", "Horário indisponível.")
	}
	return nil
}

// ListConflicts is the advisory variant: no lock, overlaps are returned
// instead of failing.
func (d *ConflictDetector) ListConflicts(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
	now time.Time,
) ([]models.Booking, error) {

	existing, err := d.repo.ListOverlapping(ctx, barberID, start, end, false)
	if err != nil {
		return nil, err
	}

	out := domain.Conflicts(existing, start, end, now, 0)
	if out == nil {
		out = []models.Booking{}
	}
	return out, nil
}
