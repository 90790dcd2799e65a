package payment

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"mehryaan-backend/internal/billing"
	"mehryaan-backend/internal/models"
)

// InvoiceRequest carries the order data a gateway invoice is built from.
type InvoiceRequest struct {
	UserID        string
	OrderID       string
	Items         []models.OrderItem
	Shipping      models.ShippingDetails
	Summary       models.OrderSummary
	CustomerEmail string
}

// buildInvoiceLines converts order items to gateway invoice lines, skipping
// any item without a positive amount, then appends the delivery-charge line.
// When nothing qualified but the order total is positive, a single
// order-total line stands in so a nonzero invoice is never created empty.
func buildInvoiceLines(items []models.OrderItem, summary models.OrderSummary, orderID string) []InvoiceLine {
	lines := make([]InvoiceLine, 0, len(items)+1)

	for _, item := range items {
		amount := minorUnits(billing.ToNumber(item.Price))
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if amount <= 0 || quantity <= 0 {
			continue
		}
		description := item.Name
		if description == "" {
			description = "Product"
		}
		lines = append(lines, InvoiceLine{
			Description: description,
			UnitAmount:  amount,
			Quantity:    int64(quantity),
			Metadata: map[string]string{
				"orderId": orderID,
				"itemId":  item.ProductID,
			},
		})
	}

	if delivery := minorUnits(billing.ToNumber(summary.DeliveryCharges)); delivery > 0 {
		lines = append(lines, InvoiceLine{
			Description: "Delivery Charges",
			UnitAmount:  delivery,
			Quantity:    1,
			Metadata:    map[string]string{"orderId": orderID},
		})
	}

	if len(lines) == 0 {
		if fallback := minorUnits(billing.ToNumber(summary.Total)); fallback > 0 {
			lines = append(lines, InvoiceLine{
				Description: "Order Total",
				UnitAmount:  fallback,
				Quantity:    1,
				Metadata:    map[string]string{"orderId": orderID},
			})
		}
	}

	return lines
}

// CreateInvoice creates, finalizes and best-effort sends a gateway-hosted
// invoice for an order. It is non-fatal by contract: an unconfigured gateway
// or any create-path failure logs and returns nil, and the order persists
// without a hosted invoice link. Only the send step is swallowed separately;
// a finalized invoice that fails to send still counts as created.
func (b *Bridge) CreateInvoice(ctx context.Context, req InvoiceRequest) *GatewayInvoice {
	if !b.Configured() {
		return nil
	}

	lines := buildInvoiceLines(req.Items, req.Summary, req.OrderID)
	if len(lines) == 0 {
		return nil
	}

	shipping := billing.NormalizeShipping(req.Shipping)
	email := shipping.Email
	if email == "" {
		email = req.CustomerEmail
	}

	customerID, err := b.api.CreateCustomer(ctx, email, shipping.FullName, map[string]string{
		"userId":  req.UserID,
		"orderId": req.OrderID,
	})
	if err != nil {
		log.Println("[PAYMENT] [ERROR] stripe customer creation failed:", err)
		return nil
	}

	// line items are independent calls; issue them as a batch and wait
	group, groupCtx := errgroup.WithContext(ctx)
	for _, line := range lines {
		group.Go(func() error {
			return b.api.CreateInvoiceItem(groupCtx, customerID, line)
		})
	}
	if err := group.Wait(); err != nil {
		log.Println("[PAYMENT] [ERROR] stripe invoice item creation failed:", err)
		return nil
	}

	invoiceID, err := b.api.CreateInvoice(ctx, customerID, map[string]string{
		"orderId": req.OrderID,
		"userId":  req.UserID,
	})
	if err != nil {
		log.Println("[PAYMENT] [ERROR] stripe invoice creation failed:", err)
		return nil
	}

	finalized, err := b.api.FinalizeInvoice(ctx, invoiceID)
	if err != nil {
		log.Println("[PAYMENT] [ERROR] stripe invoice finalize failed:", err)
		return nil
	}

	if err := b.api.SendInvoice(ctx, finalized.ID); err != nil {
		log.Println("[PAYMENT] [ERROR] stripe invoice send failed:", err)
	}

	return finalized
}
