package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mehryaan-backend/internal/models"
)

func TestNormalizeShippingPrecedence(t *testing.T) {
	got := NormalizeShipping(models.ShippingDetails{FullName: "Asha Rao", FirstName: "A", LastName: "R"})
	assert.Equal(t, "Asha Rao", got.FullName)

	got = NormalizeShipping(models.ShippingDetails{Name: "Legacy Name", FirstName: "A"})
	assert.Equal(t, "Legacy Name", got.FullName)

	got = NormalizeShipping(models.ShippingDetails{FirstName: "Asha", LastName: "Rao"})
	assert.Equal(t, "Asha Rao", got.FullName)

	got = NormalizeShipping(models.ShippingDetails{LastName: "Rao"})
	assert.Equal(t, "Rao", got.FullName)

	got = NormalizeShipping(models.ShippingDetails{})
	assert.Equal(t, "", got.FullName)
}

func TestBuildInvoiceItemTotals(t *testing.T) {
	order := models.Order{
		Items: []models.OrderItem{
			{Name: "Suit", Price: 5999, Quantity: 1},
			{Name: "Kurta", Price: 1249.995, Quantity: 2},
		},
		OrderSummary:  models.OrderSummary{DeliveryCharges: 50},
		PaymentMethod: models.PaymentMethodCOD,
		PaymentStatus: models.PaymentStatusPending,
	}

	inv := BuildInvoice(order, "")
	require.Len(t, inv.Items, 2)

	assert.Equal(t, 5999.0, inv.Items[0].UnitPrice)
	assert.Equal(t, 5999.0, inv.Items[0].TotalPrice)
	// unit price rounds first, then multiplies
	assert.Equal(t, 1250.0, inv.Items[1].UnitPrice)
	assert.Equal(t, 2500.0, inv.Items[1].TotalPrice)

	assert.Equal(t, 8499.0, inv.Summary.Subtotal)
	assert.Equal(t, 50.0, inv.Summary.DeliveryCharges)
	assert.Equal(t, 8549.0, inv.Summary.Total)
}

func TestBuildInvoiceExplicitTotalWins(t *testing.T) {
	order := models.Order{
		Items:        []models.OrderItem{{Name: "Suit", Price: 100, Quantity: 1}},
		OrderSummary: models.OrderSummary{DeliveryCharges: 10, Total: 500},
	}
	inv := BuildInvoice(order, "")
	assert.Equal(t, 500.0, inv.Summary.Total)
}

func TestBuildInvoiceDefaults(t *testing.T) {
	order := models.Order{
		Items: []models.OrderItem{{Price: 100}},
	}
	inv := BuildInvoice(order, "")
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Product", inv.Items[0].Name)
	assert.Equal(t, 1, inv.Items[0].Quantity)
	assert.True(t, inv.Access.Customer)
	assert.True(t, inv.Access.Admin)
}

func TestInvoiceNumberWithKnownID(t *testing.T) {
	issued := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	got := invoiceNumber(issued, "68b1f2c3d4e5f60718293a4b")
	assert.Equal(t, "INV-20260830-293A4B", got)
}

func TestInvoiceNumberFallback(t *testing.T) {
	// production orders build the invoice before the id exists, so the
	// timestamp suffix is the branch they actually take
	issued := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	got := invoiceNumber(issued, "")
	require.True(t, strings.HasPrefix(got, "INV-20260830-"))
	suffix := strings.TrimPrefix(got, "INV-20260830-")
	assert.Equal(t, "1788091200000", suffix)
}
