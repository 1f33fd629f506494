// Package notify announces booking events to the outside world. Delivery
// is best effort: a failing channel is logged and never rolls back the
// booking that triggered it.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const TypeBookingConfirmed = "booking.confirmed"

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	BarbershopID uint      `json:"barbershop_id"`
	BookingID    uint      `json:"booking_id"`
	ClientID     uint      `json:"client_id"`
	BarberID     uint      `json:"barber_id"`
	ServiceID    uint      `json:"service_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`

	DepositAmount      decimal.Decimal `json:"deposit_amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

func BookingConfirmed(b *models.Booking, now time.Time) Event {
	return Event{
		ID:                 uuid.NewString(),
		Type:               TypeBookingConfirmed,
		OccurredAt:         now,
		BarbershopID:       b.BarbershopID,
		BookingID:          b.ID,
		ClientID:           b.ClientID,
		BarberID:           b.BarberID,
		ServiceID:          b.BarberProductID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		DepositAmount:      b.DepositAmount,
		OutstandingBalance: b.OutstandingBalance,
	}
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Dispatcher fans events out to every notifier from a background worker.
type Dispatcher struct {
	notifiers []Notifier
	queue     chan Event
	wg        sync.WaitGroup
	once      sync.Once
	timeout   time.Duration
}

func NewDispatcher(buffer int, notifiers ...Notifier) *Dispatcher {
	if buffer <= 0 {
		buffer = 100
	}
	d := &Dispatcher{
		notifiers: notifiers,
		queue:     make(chan Event, buffer),
		timeout:   10 * time.Second,
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for ev := range d.queue {
		for _, n := range d.notifiers {
			d.deliver(n, ev)
		}
	}
}

func (d *Dispatcher) deliver(n Notifier, ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("notifier panicked", zap.String("event_id", ev.ID), zap.Any("panic", r))
		}
	}()

	if err := n.Notify(ctx, ev); err != nil {
		logger.L().Warn("notification failed",
			zap.String("event_id", ev.ID),
			zap.String("type", ev.Type),
			zap.Uint("booking_id", ev.BookingID),
			zap.Error(err),
		)
	}
}

// Publish is safe on a nil Dispatcher.
func (d *Dispatcher) Publish(ev Event) {
	if d == nil {
		return
	}

	select {
	case d.queue <- ev:
	default:
		logger.L().Warn("notify queue full, dropping event", zap.String("event_id", ev.ID))
	}
}

func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}

// LogNotifier only writes the event to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, ev Event) error {
	logger.FromContext(ctx).Info("booking event",
		zap.String("event_id", ev.ID),
		zap.String("type", ev.Type),
		zap.Uint("barbershop_id", ev.BarbershopID),
		zap.Uint("booking_id", ev.BookingID),
		zap.Time("start_time", ev.StartTime),
	)
	return nil
}
