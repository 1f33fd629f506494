package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"
)

const currencyBRL = "BRL"

type MercadoPagoGateway struct {
	preferences     preference.Client
	payments        mppayment.Client
	notificationURL string
}

func NewMercadoPagoGateway(accessToken, notificationURL string) (*MercadoPagoGateway, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPagoGateway{
		preferences:     preference.NewClient(cfg),
		payments:        mppayment.NewClient(cfg),
		notificationURL: notificationURL,
	}, nil
}

func (g *MercadoPagoGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	price, _ := req.Amount.Float64()

	res, err := g.preferences.Create(ctx, preference.Request{
		Items: []preference.ItemRequest{{
			Title:      req.Title,
			Quantity:   1,
			UnitPrice:  price,
			CurrencyID: currencyBRL,
		}},
		ExternalReference: req.Reference,
		NotificationURL:   g.notificationURL,
	})
	if err != nil {
		return nil, err
	}

	return &Checkout{ID: res.ID, URL: res.InitPoint}, nil
}

func (g *MercadoPagoGateway) GetPayment(ctx context.Context, id string) (*Payment, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payment id %q", id)
	}

	res, err := g.payments.Get(ctx, n)
	if err != nil {
		return nil, err
	}

	return &Payment{
		ID:        id,
		Status:    res.Status,
		Reference: res.ExternalReference,
		Amount:    decimal.NewFromFloat(res.TransactionAmount),
	}, nil
}

var (
	_ Gateway = (*MercadoPagoGateway)(nil)
	_ Gateway = (*FakeGateway)(nil)
)
