package payment

import (
	"context"
	"errors"
	"math"

	"mehryaan-backend/internal/billing"
	"mehryaan-backend/internal/models"
)

// ErrNotConfigured is returned when a checkout is requested without a gateway
// secret key.
var ErrNotConfigured = errors.New("stripe not configured")

// CheckoutRequest carries everything needed to open a hosted checkout
// session.
type CheckoutRequest struct {
	Items           []models.OrderItem
	DeliveryCharges float64
	SuccessURL      string
	CancelURL       string
	CustomerEmail   string
	// PaymentLabel is the normalized method label (Online or UPI) recorded
	// in session metadata.
	PaymentLabel string
	// UPI requests gateway-chosen payment method types instead of card only.
	UPI      bool
	UserID   string
	Metadata map[string]string
}

// CheckoutResult is the opened session plus the totals computed while
// building its line items.
type CheckoutResult struct {
	Session         *Session
	Subtotal        float64
	DeliveryCharges float64
	Total           float64
}

// BuildCheckoutLines validates the submitted items and converts them to
// gateway line entries in minor units, appending a delivery-charge line when
// one applies. Any item without a positive finite price and quantity fails
// the whole request with a ValidationError.
func BuildCheckoutLines(items []models.OrderItem, deliveryCharges float64) ([]CheckoutLine, float64, error) {
	lines := make([]CheckoutLine, 0, len(items)+1)
	subtotal := 0.0

	for _, item := range items {
		price := item.Price
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}

		if !isFinite(price) || price <= 0 {
			return nil, 0, &ValidationError{Message: "Each item must include a valid price"}
		}
		if quantity <= 0 {
			return nil, 0, &ValidationError{Message: "Each item must include a valid quantity"}
		}

		subtotal += price * float64(quantity)

		name := item.Name
		if name == "" {
			name = "Product"
		}
		lines = append(lines, CheckoutLine{
			Name:       name,
			UnitAmount: minorUnits(price),
			Quantity:   int64(quantity),
			ItemID:     item.ProductID,
		})
	}

	if isFinite(deliveryCharges) && deliveryCharges > 0 {
		lines = append(lines, CheckoutLine{
			Name:       "Delivery Charges",
			UnitAmount: minorUnits(deliveryCharges),
			Quantity:   1,
		})
	}

	return lines, billing.Round2(subtotal), nil
}

// CreateCheckoutSession validates the items, builds the line entries and
// opens a hosted session. Unlike invoice creation this is not best-effort:
// the checkout flow cannot proceed without a session.
func (b *Bridge) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if !b.Configured() {
		return nil, ErrNotConfigured
	}

	delivery := req.DeliveryCharges
	if !isFinite(delivery) || delivery < 0 {
		delivery = 0
	}

	lines, subtotal, err := BuildCheckoutLines(req.Items, delivery)
	if err != nil {
		return nil, err
	}

	params := SessionParams{
		Lines:         lines,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		CustomerEmail: req.CustomerEmail,
		MethodTypes:   []string{"card"},
		Metadata: map[string]string{
			"userId":        req.UserID,
			"paymentMethod": req.PaymentLabel,
		},
	}
	if req.UPI {
		params.MethodTypes = nil
	}
	for key, value := range req.Metadata {
		params.Metadata[key] = value
	}

	session, err := b.api.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, err
	}

	delivery = billing.Round2(delivery)
	return &CheckoutResult{
		Session:         session,
		Subtotal:        subtotal,
		DeliveryCharges: delivery,
		Total:           billing.Round2(subtotal + delivery),
	}, nil
}

// UpdateSessionMetadata patches the session with the order id once the order
// document exists.
func (b *Bridge) UpdateSessionMetadata(ctx context.Context, sessionID string, metadata map[string]string) error {
	if !b.Configured() {
		return ErrNotConfigured
	}
	return b.api.UpdateSessionMetadata(ctx, sessionID, metadata)
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
