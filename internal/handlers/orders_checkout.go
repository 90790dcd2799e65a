package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mehryaan-backend/internal/billing"
	"mehryaan-backend/internal/models"
	"mehryaan-backend/internal/payment"
	"mehryaan-backend/internal/uploads"
)

type checkoutRequest struct {
	Items           []models.OrderItem     `json:"items"`
	ShippingDetails models.ShippingDetails `json:"shippingDetails"`
	OrderSummary    models.OrderSummary    `json:"orderSummary"`
	SuccessURL      string                 `json:"successUrl"`
	CancelURL       string                 `json:"cancelUrl"`
	CustomerEmail   string                 `json:"customerEmail"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// StripeCheckout opens a hosted checkout session, persists the order with the
// session reference, patches the session metadata with the order id, then
// best-effort attaches a gateway invoice.
func StripeCheckout(db *mongo.Database, bridge *uploads.Bridge, gateway *payment.Bridge) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/stripe-checkout"
		defer handlePanic(c, route)

		user, ok := requireUser(c)
		if !ok {
			return
		}

		if !gateway.Configured() {
			respondError(c, http.StatusInternalServerError, "Stripe not configured")
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		if len(req.Items) == 0 {
			respondError(c, http.StatusBadRequest, "Items are required")
			return
		}
		if req.SuccessURL == "" || req.CancelURL == "" {
			respondError(c, http.StatusBadRequest, "successUrl and cancelUrl are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		items := bridge.ProcessItems(ctx, req.Items)

		requestedMethod := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
		if requestedMethod == "" {
			requestedMethod = "online"
		}
		upi := requestedMethod == "upi"
		paymentLabel := models.PaymentMethodOnline
		if upi {
			paymentLabel = models.PaymentMethodUPI
		}

		checkout, err := gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
			Items:           items,
			DeliveryCharges: req.OrderSummary.DeliveryCharges,
			SuccessURL:      req.SuccessURL,
			CancelURL:       req.CancelURL,
			CustomerEmail:   req.CustomerEmail,
			PaymentLabel:    paymentLabel,
			UPI:             upi,
			UserID:          user.ID.Hex(),
		})
		if err != nil {
			var validationErr *payment.ValidationError
			if errors.As(err, &validationErr) {
				respondError(c, http.StatusBadRequest, validationErr.Message)
				return
			}
			respondServerError(c, route, err)
			return
		}

		session := checkout.Session
		paymentDetails := &models.PaymentDetails{
			Provider:         "Stripe",
			SessionID:        session.ID,
			Method:           paymentLabel,
			PaymentIntentID:  session.PaymentIntentID,
			AvailableMethods: session.AvailableMethods,
		}

		summary := models.OrderSummary{
			Subtotal:        checkout.Subtotal,
			DeliveryCharges: checkout.DeliveryCharges,
			Total:           checkout.Total,
		}

		invoiceData := billing.BuildInvoice(models.Order{
			UserID:          user.ID,
			Items:           items,
			ShippingDetails: req.ShippingDetails,
			OrderSummary:    summary,
			PaymentMethod:   paymentLabel,
			PaymentStatus:   models.PaymentStatusPending,
		}, "")
		invoiceData.GeneratedAt = time.Now()
		invoiceData.URL = session.URL

		now := time.Now()
		order := models.Order{
			UserID:                 user.ID,
			Items:                  items,
			ShippingDetails:        req.ShippingDetails,
			OrderSummary:           invoiceData.Summary,
			PaymentMethod:          paymentLabel,
			PaymentStatus:          models.PaymentStatusPending,
			OrderStatus:            models.OrderStatusConfirmed,
			Notes:                  "",
			PaymentDetails:         paymentDetails,
			RequestedPaymentMethod: requestedMethod,
			Invoice:                invoiceData,
			CreatedAt:              now,
			UpdatedAt:              now,
		}

		result, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondServerError(c, route, err)
			return
		}
		orderID, _ := result.InsertedID.(primitive.ObjectID)
		order.ID = orderID

		linkOrderToUser(ctx, db, user.ID, orderID)

		if err := gateway.UpdateSessionMetadata(ctx, session.ID, map[string]string{
			"userId":        user.ID.Hex(),
			"orderId":       orderID.Hex(),
			"paymentMethod": paymentLabel,
		}); err != nil {
			respondServerError(c, route, err)
			return
		}

		applyGatewayInvoice(ctx, db, gateway, &order, req.CustomerEmail)

		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"sessionId":       session.ID,
			"checkoutUrl":     session.URL,
			"orderId":         orderID.Hex(),
			"invoice":         order.Invoice,
			"invoiceUrl":      order.Invoice.URL,
			"stripeInvoiceId": order.Invoice.StripeID,
			"paymentMethod":   paymentLabel,
		})
	}
}
