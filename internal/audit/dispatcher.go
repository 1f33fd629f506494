package audit

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/logger"
)

type Event struct {
	BarbershopID uint
	UserID       *uint
	Action       string
	Entity       string
	EntityID     *uint
	Metadata     any
}

// Sink persists audit events.
type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// Dispatcher writes events off the request path. A full queue drops the
// event: auditing never fails a booking operation.
type Dispatcher struct {
	sink  Sink
	queue chan Event
	wg    sync.WaitGroup
	once  sync.Once
}

func NewDispatcher(sink Sink, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 100
	}
	d := &Dispatcher{
		sink:  sink,
		queue: make(chan Event, buffer),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for ev := range d.queue {
		if err := d.sink.Record(context.Background(), ev); err != nil {
			logger.L().Warn("audit write failed",
				zap.String("action", ev.Action),
				zap.Uint("barbershop_id", ev.BarbershopID),
				zap.Error(err),
			)
		}
	}
}

// Dispatch is safe on a nil Dispatcher.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	select {
	case d.queue <- ev:
	default:
		// fila cheia → descartamos audit (nunca quebrar API)
		logger.L().Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close drains the queue and waits for the worker. Dispatch must not be
// called afterwards.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}
