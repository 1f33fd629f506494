// Package worker holds the background jobs of the service.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/infra/cache"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

const (
	sweepLeaseKey    = "booking:expiry-sweeper:lease"
	defaultBatchSize = 500
)

var ErrSweeperNotConfigured = errors.New("worker: sweeper not configured")

type SweepResult struct {
	Scanned int
	Expired int
	Failed  int
	Skipped bool
}

// ExpirySweeper cancels pending holds whose expiry has passed. It is the
// only caller of the cross-tenant read: every write it does runs back
// under the booking's own tenant.
type ExpirySweeper struct {
	Repo     domain.Repository
	Audit    *audit.Dispatcher
	Clock    clock.Clock
	Interval time.Duration

	// Lease keeps replicas from sweeping the same tick. Nil sweeps
	// unconditionally.
	Lease    cache.Store
	LeaseTTL time.Duration

	BatchSize int
	ID        string
}

func (w *ExpirySweeper) Run(ctx context.Context) error {
	if w.Repo == nil {
		return ErrSweeperNotConfigured
	}

	log := logger.FromContext(ctx).With(zap.String("worker", "expiry_sweeper"))
	log.Info("expiry sweeper started", zap.Duration("interval", w.interval()))

	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()

	for {
		if _, err := w.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			log.Error("sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			log.Info("expiry sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *ExpirySweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	log := logger.FromContext(ctx)

	if w.Lease != nil {
		owner := w.workerID()
		ok, err := w.Lease.SetNX(ctx, sweepLeaseKey, owner, w.leaseTTL())
		if err != nil {
			return res, fmt.Errorf("acquire sweep lease: %w", err)
		}
		if !ok {
			res.Skipped = true
			return res, nil
		}
		defer func() {
			if err := w.Lease.Release(context.WithoutCancel(ctx), sweepLeaseKey, owner); err != nil {
				log.Warn("release sweep lease", zap.Error(err))
			}
		}()
	}

	done := metrics.ObserveSweep()
	defer done()

	now := w.now()

	// Pages are keyed by id, not expiry, so holds that keep failing are
	// passed over instead of filling every batch.
	privileged := tenant.WithoutFilter(ctx, "expiry sweep")
	var cursor uint
	for {
		expired, err := w.Repo.ListExpiredPending(privileged, now, cursor, w.batchSize())
		if err != nil {
			return res, fmt.Errorf("list expired holds: %w", err)
		}
		res.Scanned += len(expired)

		for i := range expired {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			b := expired[i]
			cursor = b.ID
			if err := w.expireOne(ctx, b, now); err != nil {
				res.Failed++
				metrics.SweepFailures.Inc()
				log.Error("expire booking",
					zap.Uint("barbershop_id", b.BarbershopID),
					zap.Uint("booking_id", b.ID),
					zap.Error(err),
				)
				continue
			}
			res.Expired++
			metrics.BookingsExpired.Inc()
		}

		if len(expired) < w.batchSize() {
			break
		}
	}

	if res.Scanned > 0 {
		log.Info("expiry sweep finished",
			zap.Int("scanned", res.Scanned),
			zap.Int("expired", res.Expired),
			zap.Int("failed", res.Failed),
		)
	}
	return res, nil
}

// expireOne re-reads the booking under its tenant and lock: it may have
// been paid or cancelled since the scan.
func (w *ExpirySweeper) expireOne(ctx context.Context, scanned models.Booking, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	var changed bool
	err = tenant.Run(ctx, scanned.BarbershopID, func(ctx context.Context) error {
		err := w.Repo.Transaction(ctx, domain.TxOptions{}, func(tx domain.Repository) error {
			b, err := tx.GetBookingForUpdate(ctx, scanned.ID)
			if err != nil {
				return err
			}
			if domain.Status(b.Status) != domain.StatusPending ||
				b.ExpiresAt == nil || now.Before(*b.ExpiresAt) {
				return nil
			}
			if err := domain.Expire(b, now); err != nil {
				return err
			}
			changed = true
			return tx.UpdateBooking(ctx, b)
		})
		if err != nil || !changed {
			return err
		}

		id := scanned.ID
		w.Audit.Dispatch(audit.Event{
			BarbershopID: scanned.BarbershopID,
			Action:       "booking_expired",
			Entity:       "booking",
			EntityID:     &id,
		})
		return nil
	})
	return err
}

func (w *ExpirySweeper) now() time.Time {
	if w.Clock == nil {
		return time.Now()
	}
	return w.Clock.Now()
}

func (w *ExpirySweeper) interval() time.Duration {
	if w.Interval <= 0 {
		return 5 * time.Minute
	}
	return w.Interval
}

func (w *ExpirySweeper) leaseTTL() time.Duration {
	if w.LeaseTTL <= 0 {
		return w.interval() - w.interval()/5
	}
	return w.LeaseTTL
}

func (w *ExpirySweeper) batchSize() int {
	if w.BatchSize <= 0 {
		return defaultBatchSize
	}
	return w.BatchSize
}

func (w *ExpirySweeper) workerID() string {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return w.ID
}
