package booking

import (
	"context"
	"testing"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

func TestListBookingsByDate(t *testing.T) {
	f := newFixture(t)

	f.mustCreate(t, f.client.ID, "11:00")
	f.mustCreate(t, f.client2.ID, "09:00")
	if _, err := f.create().Execute(f.ctx, CreateBookingInput{
		ClientID: f.client.ID, BarberID: f.barber.ID, ServiceID: f.product.ID,
		Date: "2026-03-11", Time: "09:00",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := NewListBookingsByDate(f.repo).Execute(f.ctx, 0, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d bookings", len(got))
	}
	if got[0].ClientName != "Bruno" || got[1].ClientName != "Ana" || got[0].ProductName != "Corte" {
		t.Fatalf("list = %+v", got)
	}

	if _, err := NewListBookingsByDate(f.repo).Execute(f.ctx, 0, "10/03/2026"); !httperr.IsBusiness(err, "invalid_date") {
		t.Fatalf("err = %v", err)
	}
}

func TestListConflicts(t *testing.T) {
	f := newFixture(t)

	kept := f.mustCreate(t, f.client.ID, "10:00")
	f.mustCreate(t, f.client2.ID, "10:30")
	f.clock.Advance(5 * time.Minute)

	uc := NewListConflicts(f.repo, f.clock)
	got, err := uc.Execute(f.ctx, ListConflictsInput{BarberID: f.barber.ID, Date: testDate, StartTime: "10:15", EndTime: "10:30"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != kept.ID {
		t.Fatalf("conflicts = %+v", got)
	}

	f.clock.Advance(10 * time.Minute)
	got, err = uc.Execute(f.ctx, ListConflictsInput{BarberID: f.barber.ID, Date: testDate, StartTime: "10:15", EndTime: "10:30"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expired holds listed: %+v", got)
	}

	if _, err := uc.Execute(f.ctx, ListConflictsInput{BarberID: f.barber.ID, Date: testDate, StartTime: "11:00", EndTime: "10:00"}); !httperr.IsBusiness(err, "invalid_interval") {
		t.Fatalf("err = %v", err)
	}
}

func TestGetAvailability(t *testing.T) {
	f := newFixture(t)

	f.repo.AddWorkingHours(models.WorkingHours{
		BarbershopID: f.shop.ID,
		BarberID:     f.barber.ID,
		Weekday:      int(testNow.Weekday()),
		StartTime:    "09:00",
		EndTime:      "12:00",
		LunchStart:   "11:00",
		LunchEnd:     "11:30",
		Active:       true,
	})
	f.mustCreate(t, f.client.ID, "10:00")

	got, err := NewGetAvailability(f.repo, f.clock).Execute(f.ctx, domain.AvailabilityInput{
		BarberID:  f.barber.ID,
		ProductID: f.product.ID,
		Date:      testNow,
	})
	if err != nil {
		t.Fatal(err)
	}

	var starts []string
	for _, s := range got {
		starts = append(starts, s.Start)
	}
	want := []string{"09:00", "09:30", "10:30", "11:30"}
	if len(starts) != len(want) {
		t.Fatalf("slots = %v, want %v", starts, want)
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Fatalf("slots = %v, want %v", starts, want)
		}
	}
}

func TestListBookingsByMonth(t *testing.T) {
	f := newFixture(t)

	f.mustCreate(t, f.client.ID, "10:00")
	for _, date := range []string{"2026-03-31", "2026-04-01"} {
		if _, err := f.create().Execute(f.ctx, CreateBookingInput{
			ClientID: f.client2.ID, BarberID: f.barber.ID, ServiceID: f.product.ID,
			Date: date, Time: "09:00",
		}); err != nil {
			t.Fatal(err)
		}
	}

	uc := NewListBookingsByMonth(f.repo)
	march, err := uc.Execute(f.ctx, f.barber.ID, 2026, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(march) != 2 {
		t.Fatalf("march = %d bookings", len(march))
	}

	april, err := uc.Execute(f.ctx, 0, 2026, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(april) != 1 || april[0].ClientName != "Bruno" {
		t.Fatalf("april = %+v", april)
	}

	other := tenant.WithID(context.Background(), f.other.ID)
	if got, err := uc.Execute(other, 0, 2026, 3); err != nil || len(got) != 0 {
		t.Fatalf("other tenant = %+v, %v", got, err)
	}

	for _, m := range []int{0, 13} {
		if _, err := uc.Execute(f.ctx, 0, 2026, m); !httperr.IsBusiness(err, "invalid_month") {
			t.Fatalf("month %d: err = %v", m, err)
		}
	}
}
