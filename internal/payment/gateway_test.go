package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		ref     string
		shop    uint
		booking uint
		ok      bool
	}{
		{"3:42", 3, 42, true},
		{Reference(7, 9), 7, 9, true},
		{"42", 0, 0, false},
		{"a:1", 0, 0, false},
		{"0:1", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			shop, booking, err := ParseReference(tt.ref)
			if tt.ok {
				if err != nil || shop != tt.shop || booking != tt.booking {
					t.Fatalf("got %d,%d,%v", shop, booking, err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidReference) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestFakeGateway(t *testing.T) {
	g := NewFakeGateway()
	ctx := context.Background()

	co, err := g.CreateCheckout(ctx, CheckoutRequest{Title: "Corte", Amount: decimal.NewFromInt(5), Reference: "1:2"})
	if err != nil || co.ID == "" || co.URL == "" {
		t.Fatalf("checkout = %+v, %v", co, err)
	}

	id := g.Pay("1:2", StatusApproved, decimal.NewFromInt(5))
	p, err := g.GetPayment(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != StatusApproved || p.Reference != "1:2" {
		t.Fatalf("payment = %+v", p)
	}

	if _, err := g.GetPayment(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown payment")
	}
}
