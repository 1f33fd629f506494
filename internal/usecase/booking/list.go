package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/clock"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type ListBookingsByDate struct {
	repo domain.Repository
}

func NewListBookingsByDate(repo domain.Repository) *ListBookingsByDate {
	return &ListBookingsByDate{repo: repo}
}

// Execute lists the day in the shop's timezone. barberID 0 lists every
// barber.
func (uc *ListBookingsByDate) Execute(
	ctx context.Context,
	barberID uint,
	date string,
) ([]dto.BookingListDTO, error) {

	shop, err := uc.repo.GetBarbershop(ctx)
	if err != nil {
		return nil, err
	}

	start, err := timezone.ParseDate(shop.Timezone, date)
	if err != nil {
		return nil, httperr.BadRequestErr("invalid_date", "Data inválida.")
	}
	end := start.AddDate(0, 0, 1)

	bookings, err := uc.repo.ListForPeriod(ctx, barberID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.NewBookingListDTO(b))
	}
	return out, nil
}

type ListBookingsByMonth struct {
	repo domain.Repository
}

func NewListBookingsByMonth(repo domain.Repository) *ListBookingsByMonth {
	return &ListBookingsByMonth{repo: repo}
}

// Execute lists the calendar month starting at local midnight of day 1 in
// the shop's timezone.
func (uc *ListBookingsByMonth) Execute(
	ctx context.Context,
	barberID uint,
	year int,
	month int,
) ([]dto.BookingListDTO, error) {

	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, httperr.BadRequestErr("invalid_month", "Mês inválido.")
	}

	shop, err := uc.repo.GetBarbershop(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, timezone.Location(shop.Timezone))
	end := start.AddDate(0, 1, 0)

	bookings, err := uc.repo.ListForPeriod(ctx, barberID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.NewBookingListDTO(b))
	}
	return out, nil
}

type ListConflictsInput struct {
	BarberID  uint
	Date      string
	StartTime string
	EndTime   string
}

// ListConflicts shows which bookings keep an interval busy.
type ListConflicts struct {
	repo  domain.Repository
	clock clock.Clock
}

func NewListConflicts(repo domain.Repository, clk clock.Clock) *ListConflicts {
	return &ListConflicts{repo: repo, clock: clk}
}

func (uc *ListConflicts) Execute(ctx context.Context, in ListConflictsInput) ([]models.Booking, error) {
	shop, err := uc.repo.GetBarbershop(ctx)
	if err != nil {
		return nil, err
	}

	start, err1 := timezone.ParseDateTime(shop.Timezone, in.Date, in.StartTime)
	end, err2 := timezone.ParseDateTime(shop.Timezone, in.Date, in.EndTime)
	if err1 != nil || err2 != nil || !end.After(start) {
		return nil, httperr.BadRequestErr("invalid_interval", "Intervalo inválido.")
	}

	return NewConflictDetector(uc.repo).ListConflicts(ctx, in.BarberID, start, end, uc.clock.Now())
}
