package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

type PaymentHandler struct {
	checkout *ucBooking.DepositCheckout
	confirm  *ucBooking.ConfirmDepositPayment
}

func NewPaymentHandler(
	checkout *ucBooking.DepositCheckout,
	confirm *ucBooking.ConfirmDepositPayment,
) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, confirm: confirm}
}

// Checkout opens the deposit checkout of a pending hold.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	res, err := h.checkout.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, res)
}

type mercadoPagoNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Webhook receives MercadoPago notifications. The payload is only a hint:
// the payment is fetched back from the provider before anything changes.
// Non-payment topics are acknowledged and ignored.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var n mercadoPagoNotification
	_ = c.ShouldBindJSON(&n)

	topic := n.Type
	if topic == "" {
		topic = c.Query("type")
	}
	if topic == "" {
		topic = c.Query("topic")
	}

	paymentID := n.Data.ID
	if paymentID == "" {
		paymentID = c.Query("data.id")
	}
	if paymentID == "" {
		paymentID = c.Query("id")
	}

	if topic != "" && topic != "payment" {
		c.Status(http.StatusNoContent)
		return
	}
	if paymentID == "" {
		httperr.BadRequest(c, "missing_payment_id", "Pagamento não informado.")
		return
	}

	outcome, err := h.confirm.Execute(c.Request.Context(), paymentID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	logger.FromContext(c.Request.Context()).Info("payment notification handled",
		zap.String("payment_id", paymentID),
		zap.String("outcome", string(outcome)),
	)

	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}
