package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mehryaan-backend/internal/models"
)

// BuildInvoice derives the embedded invoice document from an order-shaped
// record. Pure: no I/O, deterministic apart from the issue date.
//
// orderID may be empty when the order has not been persisted yet; the invoice
// number then falls back to a timestamp suffix instead of the id suffix. The
// creation pipeline builds the invoice before inserting the order, so the
// fallback branch is the one production orders take.
func BuildInvoice(order models.Order, orderID string) models.Invoice {
	shipping := NormalizeShipping(order.ShippingDetails)

	items := make([]models.InvoiceItem, 0, len(order.Items))
	subtotal := 0.0
	for _, item := range order.Items {
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		unitPrice := Round2(item.Price)
		totalPrice := Round2(unitPrice * float64(quantity))
		name := item.Name
		if name == "" {
			name = "Product"
		}
		items = append(items, models.InvoiceItem{
			Name:       name,
			Quantity:   quantity,
			UnitPrice:  unitPrice,
			TotalPrice: totalPrice,
		})
		subtotal += totalPrice
	}
	subtotal = Round2(subtotal)

	deliveryCharges := Round2(order.OrderSummary.DeliveryCharges)
	total := Round2(order.OrderSummary.Total)
	if total == 0 {
		total = Round2(subtotal + deliveryCharges)
	}

	issueDate := time.Now()

	billingName := shipping.FullName
	if billingName == "" {
		billingName = joinNames(shipping.FirstName, shipping.LastName)
	}

	return models.Invoice{
		InvoiceNumber: invoiceNumber(issueDate, orderID),
		IssueDate:     issueDate,
		BillingDetails: models.InvoiceBilling{
			Name:    billingName,
			Email:   shipping.Email,
			Phone:   shipping.Phone,
			Address: shipping.Address,
			City:    shipping.City,
			State:   shipping.State,
			Pincode: shipping.Pincode,
		},
		Payment: models.InvoicePayment{
			Method: order.PaymentMethod,
			Status: order.PaymentStatus,
		},
		Items: items,
		Summary: models.OrderSummary{
			Subtotal:        subtotal,
			DeliveryCharges: deliveryCharges,
			Total:           total,
		},
		Access: models.InvoiceAccess{Customer: true, Admin: true},
		URL:    order.Invoice.URL,
	}
}

// invoiceNumber synthesizes INV-<YYYYMMDD>-<suffix>, where the suffix is the
// last six characters of the order id uppercased, or the issue timestamp in
// milliseconds when the id is not known yet.
func invoiceNumber(issueDate time.Time, orderID string) string {
	segment := strconv.FormatInt(issueDate.UnixMilli(), 10)
	if orderID != "" {
		segment = orderID
		if len(segment) > 6 {
			segment = segment[len(segment)-6:]
		}
		segment = strings.ToUpper(segment)
	}
	return fmt.Sprintf("INV-%s-%s", issueDate.Format("20060102"), segment)
}
