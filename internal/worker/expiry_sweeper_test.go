package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/clock"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/infra/cache"
	"github.com/BruksfildServices01/barber-booking/internal/infra/memory"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo domain.Repository, shopID uint, status domain.Status, expires *time.Time) uint {
	t.Helper()

	start := now.Add(2 * time.Hour)
	b := &models.Booking{
		BarbershopID:  shopID,
		BarberID:      1,
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Status:        string(status),
		PaymentStatus: string(domain.PaymentDepositPending),
		ExpiresAt:     expires,
	}
	if err := repo.CreateBooking(tenant.WithID(context.Background(), shopID), b); err != nil {
		t.Fatal(err)
	}
	return b.ID
}

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func statusOf(t *testing.T, repo *memory.BookingRepository, id uint) (string, string) {
	t.Helper()
	for _, b := range repo.Bookings() {
		if b.ID == id {
			return b.Status, b.PaymentStatus
		}
	}
	t.Fatalf("booking %d not found", id)
	return "", ""
}

func TestSweepOnceExpiresAcrossTenants(t *testing.T) {
	repo := memory.NewBookingRepository()

	stale1 := seed(t, repo, 1, domain.StatusPending, ago(5*time.Minute))
	stale2 := seed(t, repo, 2, domain.StatusPending, ago(time.Hour))
	exact := seed(t, repo, 2, domain.StatusPending, ago(0))
	live := seed(t, repo, 1, domain.StatusPending, ago(-5*time.Minute))
	confirmed := seed(t, repo, 1, domain.StatusConfirmed, nil)

	w := &ExpirySweeper{Repo: repo, Clock: &clock.Fixed{T: now}}
	res, err := w.SweepOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Scanned != 3 || res.Expired != 3 || res.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}

	for _, id := range []uint{stale1, stale2, exact} {
		status, pay := statusOf(t, repo, id)
		if status != string(domain.StatusCancelled) || pay != string(domain.PaymentCancelled) {
			t.Fatalf("booking %d = %s/%s", id, status, pay)
		}
	}
	for _, id := range []uint{live, confirmed} {
		if status, _ := statusOf(t, repo, id); status == string(domain.StatusCancelled) {
			t.Fatalf("booking %d cancelled", id)
		}
	}

	res, err = w.SweepOnce(context.Background())
	if err != nil || res.Scanned != 0 {
		t.Fatalf("second sweep = %+v, %v", res, err)
	}
}

type flakyRepo struct {
	*memory.BookingRepository
	failID  uint
	panicID uint
}

func (r *flakyRepo) Transaction(ctx context.Context, opts domain.TxOptions, fn func(tx domain.Repository) error) error {
	return r.BookingRepository.Transaction(ctx, opts, func(tx domain.Repository) error {
		return fn(&flakyTx{Repository: tx, r: r})
	})
}

type flakyTx struct {
	domain.Repository
	r *flakyRepo
}

func (t *flakyTx) UpdateBooking(ctx context.Context, b *models.Booking) error {
	switch b.ID {
	case t.r.failID:
		return errors.New("disk full")
	case t.r.panicID:
		panic("boom")
	}
	return t.Repository.UpdateBooking(ctx, b)
}

func TestSweepOnceIsolatesFailures(t *testing.T) {
	mem := memory.NewBookingRepository()
	repo := &flakyRepo{BookingRepository: mem}

	repo.failID = seed(t, mem, 1, domain.StatusPending, ago(time.Minute))
	repo.panicID = seed(t, mem, 2, domain.StatusPending, ago(time.Minute))
	ok := seed(t, mem, 3, domain.StatusPending, ago(time.Minute))

	w := &ExpirySweeper{Repo: repo, Clock: &clock.Fixed{T: now}}
	res, err := w.SweepOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Expired != 1 || res.Failed != 2 {
		t.Fatalf("result = %+v", res)
	}
	if status, _ := statusOf(t, mem, ok); status != string(domain.StatusCancelled) {
		t.Fatalf("healthy booking = %s", status)
	}
	if status, _ := statusOf(t, mem, repo.failID); status != string(domain.StatusPending) {
		t.Fatalf("failed booking = %s", status)
	}
}

func TestSweepOnceHonoursLease(t *testing.T) {
	repo := memory.NewBookingRepository()
	id := seed(t, repo, 1, domain.StatusPending, ago(time.Minute))

	lease := cache.NewMemoryStore()
	if ok, _ := lease.SetNX(context.Background(), sweepLeaseKey, "other-replica", time.Minute); !ok {
		t.Fatal("could not take lease")
	}

	w := &ExpirySweeper{Repo: repo, Clock: &clock.Fixed{T: now}, Lease: lease}
	res, err := w.SweepOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Skipped {
		t.Fatalf("result = %+v, want skipped", res)
	}
	if status, _ := statusOf(t, repo, id); status != string(domain.StatusPending) {
		t.Fatalf("booking = %s", status)
	}

	_ = lease.Release(context.Background(), sweepLeaseKey, "other-replica")
	res, err = w.SweepOnce(context.Background())
	if err != nil || res.Expired != 1 {
		t.Fatalf("result = %+v, %v", res, err)
	}
}

func TestSweepOnceStopsOnCancel(t *testing.T) {
	repo := memory.NewBookingRepository()
	seed(t, repo, 1, domain.StatusPending, ago(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &ExpirySweeper{Repo: repo, Clock: &clock.Fixed{T: now}}
	res, err := w.SweepOnce(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if res.Expired != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunSweepsImmediatelyAndStops(t *testing.T) {
	repo := memory.NewBookingRepository()
	id := seed(t, repo, 1, domain.StatusPending, ago(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	w := &ExpirySweeper{Repo: repo, Clock: &clock.Fixed{T: now}, Interval: time.Hour}

	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		if status, _ := statusOf(t, repo, id); status == string(domain.StatusCancelled) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first sweep did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
}

func TestRunRequiresRepo(t *testing.T) {
	w := &ExpirySweeper{}
	if err := w.Run(context.Background()); !errors.Is(err, ErrSweeperNotConfigured) {
		t.Fatalf("err = %v", err)
	}
}

func TestSweepOncePagesPastFailingBatch(t *testing.T) {
	mem := memory.NewBookingRepository()
	repo := &flakyRepo{BookingRepository: mem}

	repo.failID = seed(t, mem, 1, domain.StatusPending, ago(time.Minute))
	behind := []uint{
		seed(t, mem, 1, domain.StatusPending, ago(2*time.Hour)),
		seed(t, mem, 2, domain.StatusPending, ago(time.Hour)),
	}

	w := &ExpirySweeper{Repo: repo, Clock: &clock.Fixed{T: now}, BatchSize: 1}
	for round := 0; round < 2; round++ {
		res, err := w.SweepOnce(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if res.Failed != 1 {
			t.Fatalf("round %d result = %+v", round, res)
		}
	}

	for _, id := range behind {
		if status, _ := statusOf(t, mem, id); status != string(domain.StatusCancelled) {
			t.Fatalf("booking %d = %s, want cancelled", id, status)
		}
	}
	if status, _ := statusOf(t, mem, repo.failID); status != string(domain.StatusPending) {
		t.Fatalf("failing booking = %s", status)
	}
}
