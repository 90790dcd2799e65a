package handlers

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mehryaan-backend/internal/models"
)

func TestAssembleOrderDefaults(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Now()
	req := createOrderRequest{
		Items:        []models.OrderItem{{ProductID: "p1", Name: "Kurta", Price: 500, Quantity: 2}},
		OrderSummary: models.OrderSummary{Subtotal: 1000, DeliveryCharges: 50, Total: 1050},
	}

	order := assembleOrder(userID, req, req.Items, now)

	if order.OrderStatus != models.OrderStatusConfirmed {
		t.Errorf("OrderStatus = %q, want %q", order.OrderStatus, models.OrderStatusConfirmed)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("PaymentStatus = %q, want %q", order.PaymentStatus, models.PaymentStatusPending)
	}
	if order.PaymentMethod != models.PaymentMethodOnline {
		t.Errorf("PaymentMethod = %q, want %q", order.PaymentMethod, models.PaymentMethodOnline)
	}
	if order.UserID != userID {
		t.Errorf("UserID = %v, want %v", order.UserID, userID)
	}
	if order.OrderSummary != order.Invoice.Summary {
		t.Errorf("order summary %+v differs from invoice summary %+v", order.OrderSummary, order.Invoice.Summary)
	}
	if order.OrderSummary.Total != 1050 {
		t.Errorf("Total = %v, want 1050", order.OrderSummary.Total)
	}
	if !strings.HasPrefix(order.Invoice.InvoiceNumber, "INV-") {
		t.Errorf("InvoiceNumber = %q", order.Invoice.InvoiceNumber)
	}
	if !order.CreatedAt.Equal(now) || !order.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v / %v, want %v", order.CreatedAt, order.UpdatedAt, now)
	}
}

func TestAssembleOrderKeepsSubmittedStatus(t *testing.T) {
	req := createOrderRequest{
		Items:         []models.OrderItem{{Name: "Saree", Price: 100, Quantity: 1}},
		PaymentMethod: "cod",
		PaymentStatus: models.PaymentStatusCompleted,
	}

	order := assembleOrder(primitive.NewObjectID(), req, req.Items, time.Now())

	if order.PaymentMethod != models.PaymentMethodCOD {
		t.Errorf("PaymentMethod = %q, want %q", order.PaymentMethod, models.PaymentMethodCOD)
	}
	if order.PaymentStatus != models.PaymentStatusCompleted {
		t.Errorf("PaymentStatus = %q, want %q", order.PaymentStatus, models.PaymentStatusCompleted)
	}
}

func TestCancelTransition(t *testing.T) {
	tests := []struct {
		name          string
		orderStatus   string
		paymentMethod string
		wantOrder     string
		wantPayment   string
		wantAllowed   bool
	}{
		{"confirmed online", models.OrderStatusConfirmed, models.PaymentMethodOnline, models.OrderStatusCancelled, models.PaymentStatusRefundPending, true},
		{"processing upi", models.OrderStatusProcessing, models.PaymentMethodUPI, models.OrderStatusCancelled, models.PaymentStatusRefundPending, true},
		{"in transit cod", models.OrderStatusInTransit, models.PaymentMethodCOD, models.OrderStatusCancelled, models.PaymentStatusPending, true},
		{"delivered rejected", models.OrderStatusDelivered, models.PaymentMethodOnline, "", "", false},
		{"already cancelled rejected", models.OrderStatusCancelled, models.PaymentMethodCOD, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderStatus, paymentStatus, allowed := cancelTransition(tt.orderStatus, tt.paymentMethod)
			if allowed != tt.wantAllowed {
				t.Fatalf("allowed = %v, want %v", allowed, tt.wantAllowed)
			}
			if orderStatus != tt.wantOrder || paymentStatus != tt.wantPayment {
				t.Errorf("transition = (%q, %q), want (%q, %q)", orderStatus, paymentStatus, tt.wantOrder, tt.wantPayment)
			}
		})
	}
}

func TestNormalizePaymentMethod(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cod", models.PaymentMethodCOD},
		{"COD", models.PaymentMethodCOD},
		{" upi ", models.PaymentMethodUPI},
		{"online", models.PaymentMethodOnline},
		{"", models.PaymentMethodOnline},
		{"card", models.PaymentMethodOnline},
	}

	for _, tt := range tests {
		if got := normalizePaymentMethod(tt.input); got != tt.want {
			t.Errorf("normalizePaymentMethod(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	start, end, err := parseDateRange("2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	// end of the last day, so orders created any time on the 31st match
	wantEnd := time.Date(2026, 1, 31, 23, 59, 59, 999000000, time.UTC)
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}

	if _, _, err := parseDateRange("31-01-2026", "2026-01-31"); err == nil {
		t.Error("expected error for malformed start date")
	}
	if _, _, err := parseDateRange("2026-01-01", "next week"); err == nil {
		t.Error("expected error for malformed end date")
	}
}

func TestBuildBulkUpdate(t *testing.T) {
	now := time.Now()

	update, ok := buildBulkUpdate(models.OrderStatusDelivered, "", now)
	if !ok {
		t.Fatal("expected update to be built")
	}
	if update["orderStatus"] != models.OrderStatusDelivered {
		t.Errorf("orderStatus = %v", update["orderStatus"])
	}
	if _, present := update["paymentStatus"]; present {
		t.Error("paymentStatus should be untouched when not provided")
	}
	if update["updatedAt"] != now {
		t.Error("updatedAt not set")
	}

	update, ok = buildBulkUpdate("", models.PaymentStatusCompleted, now)
	if !ok {
		t.Fatal("expected update to be built")
	}
	if _, present := update["orderStatus"]; present {
		t.Error("orderStatus should be untouched when not provided")
	}

	if _, ok := buildBulkUpdate("", "", now); ok {
		t.Error("expected no update when both statuses are empty")
	}
}

func TestComputeStatistics(t *testing.T) {
	orders := []models.Order{
		{OrderStatus: models.OrderStatusConfirmed, PaymentStatus: models.PaymentStatusPending, PaymentMethod: models.PaymentMethodOnline, OrderSummary: models.OrderSummary{Total: 100}},
		{OrderStatus: models.OrderStatusDelivered, PaymentStatus: models.PaymentStatusCompleted, PaymentMethod: models.PaymentMethodCOD, OrderSummary: models.OrderSummary{Total: 250}},
		{OrderStatus: models.OrderStatusDelivered, PaymentStatus: models.PaymentStatusCompleted, PaymentMethod: models.PaymentMethodUPI, OrderSummary: models.OrderSummary{Total: 50}},
	}

	stats := computeStatistics(orders)

	if stats.TotalOrders != 3 {
		t.Errorf("TotalOrders = %d", stats.TotalOrders)
	}
	if stats.TotalRevenue != 400 {
		t.Errorf("TotalRevenue = %v", stats.TotalRevenue)
	}
	if stats.AverageOrderValue != 133.33 {
		t.Errorf("AverageOrderValue = %v, want 133.33", stats.AverageOrderValue)
	}
	if stats.StatusBreakdown["delivered"] != 2 || stats.StatusBreakdown["confirmed"] != 1 {
		t.Errorf("StatusBreakdown = %v", stats.StatusBreakdown)
	}
	if stats.StatusBreakdown["cancelled"] != 0 {
		t.Errorf("cancelled should be zero, got %d", stats.StatusBreakdown["cancelled"])
	}
	if stats.PaymentBreakdown["completed"] != 2 || stats.PaymentBreakdown["pending"] != 1 {
		t.Errorf("PaymentBreakdown = %v", stats.PaymentBreakdown)
	}
	if stats.MethodBreakdown["online"] != 1 || stats.MethodBreakdown["cod"] != 1 || stats.MethodBreakdown["upi"] != 1 {
		t.Errorf("MethodBreakdown = %v", stats.MethodBreakdown)
	}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := computeStatistics(nil)
	if stats.TotalOrders != 0 || stats.TotalRevenue != 0 || stats.AverageOrderValue != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}

func TestProductSort(t *testing.T) {
	tests := []struct {
		input     string
		wantKey   string
		wantValue int
	}{
		{"price-asc", "price", 1},
		{"price-desc", "price", -1},
		{"rating", "rating", -1},
		{"", "createdAt", -1},
		{"bogus", "createdAt", -1},
	}

	for _, tt := range tests {
		sort := productSort(tt.input)
		if len(sort) != 1 {
			t.Fatalf("productSort(%q) returned %d keys", tt.input, len(sort))
		}
		if sort[0].Key != tt.wantKey || sort[0].Value != tt.wantValue {
			t.Errorf("productSort(%q) = %v, want {%s %d}", tt.input, sort[0], tt.wantKey, tt.wantValue)
		}
	}
}
