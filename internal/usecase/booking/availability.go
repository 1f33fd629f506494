package booking

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/clock"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type GetAvailability struct {
	repo  domain.Repository
	clock clock.Clock
}

func NewGetAvailability(repo domain.Repository, clk clock.Clock) *GetAvailability {
	return &GetAvailability{repo: repo, clock: clk}
}

// Execute lists the free slots of a barber for one service on one day.
// Slots are laid back to back from the opening time; lunch, past slots
// and blocking bookings are skipped.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	shop, err := uc.repo.GetBarbershop(ctx)
	if err != nil {
		return nil, err
	}

	product, err := NewEntityValidator(uc.repo).ResolveService(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.DurationMin <= 0 {
		return nil, httperr.BadRequestErr("invalid_service_duration", "Serviço sem duração.")
	}

	loc := timezone.Location(shop.Timezone)
	day := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, loc)

	wh, err := uc.repo.GetWorkingHours(ctx, in.BarberID, int(day.Weekday()))
	if errors.Is(err, domain.ErrRecordNotFound) {
		return []domain.TimeSlot{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !wh.Active {
		return []domain.TimeSlot{}, nil
	}

	dayStart, err1 := timezone.ParseDateTime(shop.Timezone, day.Format(timezone.DateLayout), wh.StartTime)
	dayEnd, err2 := timezone.ParseDateTime(shop.Timezone, day.Format(timezone.DateLayout), wh.EndTime)
	if err1 != nil || err2 != nil {
		return []domain.TimeSlot{}, nil
	}

	now := uc.clock.Now()
	bookings, err := uc.repo.ListOverlapping(ctx, in.BarberID, dayStart, dayEnd, false)
	if err != nil {
		return nil, err
	}

	slotDuration := time.Duration(product.DurationMin) * time.Minute
	slots := []domain.TimeSlot{}

	for cur := dayStart; !cur.Add(slotDuration).After(dayEnd); cur = cur.Add(slotDuration) {
		slotStart := cur
		slotEnd := cur.Add(slotDuration)

		if slotStart.Before(now) {
			continue
		}
		if !domain.IsWithinWorkingHours(wh, slotStart, slotEnd) {
			continue
		}
		if len(domain.Conflicts(bookings, slotStart, slotEnd, now, 0)) > 0 {
			continue
		}

		slots = append(slots, domain.TimeSlot{
			Start: slotStart.Format(timezone.TimeLayout),
			End:   slotEnd.Format(timezone.TimeLayout),
		})
	}

	return slots, nil
}
