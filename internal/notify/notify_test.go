package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Notify(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

type panicky struct{}

func (panicky) Notify(context.Context, Event) error { panic("boom") }

func sampleBooking() *models.Booking {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:                 42,
		BarbershopID:       3,
		ClientID:           5,
		BarberID:           7,
		BarberProductID:    9,
		StartTime:          start,
		EndTime:            start.Add(30 * time.Minute),
		DepositAmount:      decimal.RequireFromString("5"),
		OutstandingBalance: decimal.RequireFromString("20"),
	}
}

func TestDispatcherFansOut(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("down")}

	d := NewDispatcher(4, failing, panicky{}, ok)
	ev := BookingConfirmed(sampleBooking(), time.Now())
	d.Publish(ev)
	d.Close()

	if len(ok.events) != 1 || ok.events[0].ID != ev.ID {
		t.Fatalf("healthy notifier got %+v", ok.events)
	}
	if len(failing.events) != 1 {
		t.Fatalf("failing notifier called %d times", len(failing.events))
	}
}

func TestBookingConfirmedEvent(t *testing.T) {
	ev := BookingConfirmed(sampleBooking(), time.Now())

	if ev.Type != TypeBookingConfirmed || ev.ID == "" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.BookingID != 42 || ev.BarbershopID != 3 || ev.ServiceID != 9 {
		t.Fatalf("ids not copied: %+v", ev)
	}
}

func TestKafkaNotifier(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev Event
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.BookingID != 42 {
			return errors.New("wrong booking id")
		}
		return nil
	})

	k := NewKafkaNotifier(producer, "bookings")
	if err := k.Notify(context.Background(), BookingConfirmed(sampleBooking(), time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := k.Close(); err != nil {
		t.Fatal(err)
	}
}

type fakeS3 struct {
	key  string
	body []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.key = *in.Key
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestReceiptArchiver(t *testing.T) {
	client := &fakeS3{}
	a := NewReceiptArchiver(client, "receipts")
	ev := BookingConfirmed(sampleBooking(), time.Now())

	if err := a.Notify(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if client.key != ReceiptKey(ev) {
		t.Fatalf("key = %q", client.key)
	}

	var got Event
	if err := json.Unmarshal(client.body, &got); err != nil {
		t.Fatal(err)
	}
	if !got.DepositAmount.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("deposit = %s", got.DepositAmount)
	}
}
