package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	"github.com/BruksfildServices01/barber-booking/internal/infra/memory"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

const testDate = "2026-03-10"

type fixture struct {
	repo  *memory.BookingRepository
	clock *clock.Fixed
	sink  *audit.MemorySink
	audit *audit.Dispatcher

	shop    models.Barbershop
	other   models.Barbershop
	client  models.Client
	client2 models.Client
	barber  models.User
	product models.BarberProduct

	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := memory.NewBookingRepository()
	f := &fixture{
		repo:  repo,
		clock: &clock.Fixed{T: testNow},
		sink:  &audit.MemorySink{},
	}
	f.audit = audit.NewDispatcher(f.sink, 100)
	t.Cleanup(f.audit.Close)

	f.shop = repo.AddBarbershop(models.Barbershop{Name: "Navalha", Slug: "navalha", Timezone: "UTC"})
	f.other = repo.AddBarbershop(models.Barbershop{Name: "Tesoura", Slug: "tesoura", Timezone: "UTC"})

	f.client = repo.AddClient(models.Client{BarbershopID: f.shop.ID, Name: "Ana", Phone: "11999990000"})
	f.client2 = repo.AddClient(models.Client{BarbershopID: f.shop.ID, Name: "Bruno", Phone: "11999990001"})
	f.barber = repo.AddBarber(models.User{BarbershopID: f.shop.ID, Name: "Carlos", Email: "c@x.com", Active: true})
	f.product = repo.AddProduct(models.BarberProduct{
		BarbershopID:   f.shop.ID,
		Name:           "Corte",
		DurationMin:    30,
		Price:          decimal.RequireFromString("25.00"),
		DepositPercent: decimal.NewFromInt(20),
		Active:         true,
	})

	f.ctx = tenant.WithID(context.Background(), f.shop.ID)
	return f
}

func (f *fixture) create() *CreateBooking {
	return NewCreateBooking(f.repo, f.audit, f.clock, 10*time.Minute)
}

func (f *fixture) update() *UpdateBooking {
	return NewUpdateBooking(f.repo, f.audit, f.clock, 10*time.Minute)
}

func (f *fixture) transitions(n *notify.Dispatcher) *TransitionBooking {
	return NewTransitionBooking(f.repo, f.audit, n, f.clock)
}

func (f *fixture) input(clientID uint, hm string) CreateBookingInput {
	return CreateBookingInput{
		ClientID:      clientID,
		BarberID:      f.barber.ID,
		ServiceID:     f.product.ID,
		Date:          testDate,
		Time:          hm,
		PaymentMethod: "online",
	}
}

func (f *fixture) mustCreate(t *testing.T, clientID uint, hm string) *models.Booking {
	t.Helper()
	b, err := f.create().Execute(f.ctx, f.input(clientID, hm))
	if err != nil {
		t.Fatalf("create %s: %v", hm, err)
	}
	return b
}

type eventRecorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *eventRecorder) Notify(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}
