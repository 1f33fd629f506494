package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

const StatusApproved = "approved"

var ErrInvalidReference = errors.New("payment: invalid external reference")

type CheckoutRequest struct {
	Title     string
	Amount    decimal.Decimal
	Reference string
}

type Checkout struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Payment struct {
	ID        string
	Status    string
	Reference string
	Amount    decimal.Decimal
}

// Gateway opens deposit checkouts and reads payments back when the
// provider notifies us.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

// Reference ties a provider payment to a booking: "<shop>:<booking>".
func Reference(barbershopID, bookingID uint) string {
	return fmt.Sprintf("%d:%d", barbershopID, bookingID)
}

func ParseReference(ref string) (barbershopID, bookingID uint, err error) {
	shop, booking, ok := strings.Cut(ref, ":")
	if !ok {
		return 0, 0, ErrInvalidReference
	}
	s, err1 := strconv.ParseUint(shop, 10, 64)
	b, err2 := strconv.ParseUint(booking, 10, 64)
	if err1 != nil || err2 != nil || s == 0 || b == 0 {
		return 0, 0, ErrInvalidReference
	}
	return uint(s), uint(b), nil
}

// FakeGateway approves everything. Used in development and tests.
type FakeGateway struct {
	mu        sync.Mutex
	seq       int
	checkouts map[string]CheckoutRequest
	payments  map[string]*Payment
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		checkouts: map[string]CheckoutRequest{},
		payments:  map[string]*Payment{},
	}
}

func (g *FakeGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seq++
	id := "pref-" + strconv.Itoa(g.seq)
	g.checkouts[id] = req
	return &Checkout{ID: id, URL: "https://checkout.local/" + id}, nil
}

// Pay records a payment against a checkout reference and returns its id.
func (g *FakeGateway) Pay(reference, status string, amount decimal.Decimal) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seq++
	id := strconv.Itoa(g.seq)
	g.payments[id] = &Payment{ID: id, Status: status, Reference: reference, Amount: amount}
	return id
}

func (g *FakeGateway) GetPayment(_ context.Context, id string) (*Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", id)
	}
	cp := *p
	return &cp, nil
}
