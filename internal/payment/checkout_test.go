package payment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mehryaan-backend/internal/models"
)

type fakeAPI struct {
	mu              sync.Mutex
	sessionParams   *SessionParams
	session         *Session
	sessionErr      error
	updatedSession  string
	updatedMetadata map[string]string

	customerID     string
	customerErr    error
	invoiceLines   []InvoiceLine
	invoiceItemErr error
	invoiceID      string
	invoiceErr     error
	finalized      *GatewayInvoice
	finalizeErr    error
	sendErr        error
	sendCalls      int
}

func (f *fakeAPI) CreateCheckoutSession(_ context.Context, params SessionParams) (*Session, error) {
	f.sessionParams = &params
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if f.session != nil {
		return f.session, nil
	}
	return &Session{ID: "cs_test_1", URL: "https://checkout.stripe.com/pay/cs_test_1"}, nil
}

func (f *fakeAPI) UpdateSessionMetadata(_ context.Context, sessionID string, metadata map[string]string) error {
	f.updatedSession = sessionID
	f.updatedMetadata = metadata
	return nil
}

func (f *fakeAPI) CreateCustomer(_ context.Context, _, _ string, _ map[string]string) (string, error) {
	if f.customerErr != nil {
		return "", f.customerErr
	}
	if f.customerID == "" {
		return "cus_test_1", nil
	}
	return f.customerID, nil
}

func (f *fakeAPI) CreateInvoiceItem(_ context.Context, _ string, line InvoiceLine) error {
	if f.invoiceItemErr != nil {
		return f.invoiceItemErr
	}
	f.mu.Lock()
	f.invoiceLines = append(f.invoiceLines, line)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) CreateInvoice(_ context.Context, _ string, _ map[string]string) (string, error) {
	if f.invoiceErr != nil {
		return "", f.invoiceErr
	}
	if f.invoiceID == "" {
		return "in_test_1", nil
	}
	return f.invoiceID, nil
}

func (f *fakeAPI) FinalizeInvoice(_ context.Context, invoiceID string) (*GatewayInvoice, error) {
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	if f.finalized != nil {
		return f.finalized, nil
	}
	return &GatewayInvoice{
		ID:        invoiceID,
		Number:    "INV-0001",
		Status:    "open",
		HostedURL: "https://invoice.stripe.com/i/" + invoiceID,
		PDFURL:    "https://invoice.stripe.com/i/" + invoiceID + "/pdf",
	}, nil
}

func (f *fakeAPI) SendInvoice(_ context.Context, _ string) error {
	f.sendCalls++
	return f.sendErr
}

func TestBuildCheckoutLinesRejectsZeroPrice(t *testing.T) {
	_, _, err := BuildCheckoutLines([]models.OrderItem{{Price: 0, Quantity: 1}}, 0)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Each item must include a valid price", validationErr.Message)
}

func TestBuildCheckoutLinesRejectsNegativeQuantity(t *testing.T) {
	_, _, err := BuildCheckoutLines([]models.OrderItem{{Price: 100, Quantity: -2}}, 0)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Each item must include a valid quantity", validationErr.Message)
}

func TestBuildCheckoutLinesWithDelivery(t *testing.T) {
	lines, subtotal, err := BuildCheckoutLines(
		[]models.OrderItem{{Name: "Suit", Price: 500, Quantity: 2, ProductID: "p1"}},
		50,
	)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, 1000.0, subtotal)
	assert.Equal(t, CheckoutLine{Name: "Suit", UnitAmount: 50000, Quantity: 2, ItemID: "p1"}, lines[0])
	assert.Equal(t, CheckoutLine{Name: "Delivery Charges", UnitAmount: 5000, Quantity: 1}, lines[1])
}

func TestCreateCheckoutSessionTotals(t *testing.T) {
	api := &fakeAPI{}
	bridge := NewBridge(api)

	result, err := bridge.CreateCheckoutSession(context.Background(), CheckoutRequest{
		Items:           []models.OrderItem{{Name: "Suit", Price: 500, Quantity: 2}},
		DeliveryCharges: 50,
		SuccessURL:      "https://shop.example.com/success",
		CancelURL:       "https://shop.example.com/cancel",
		PaymentLabel:    models.PaymentMethodOnline,
		UserID:          "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, result.Subtotal)
	assert.Equal(t, 50.0, result.DeliveryCharges)
	assert.Equal(t, 1050.0, result.Total)
	assert.Equal(t, "cs_test_1", result.Session.ID)

	require.NotNil(t, api.sessionParams)
	assert.Equal(t, []string{"card"}, api.sessionParams.MethodTypes)
	assert.Equal(t, "Online", api.sessionParams.Metadata["paymentMethod"])
	assert.Equal(t, "user-1", api.sessionParams.Metadata["userId"])
}

func TestCreateCheckoutSessionUPILetsGatewayChoose(t *testing.T) {
	api := &fakeAPI{}
	bridge := NewBridge(api)

	_, err := bridge.CreateCheckoutSession(context.Background(), CheckoutRequest{
		Items:        []models.OrderItem{{Name: "Suit", Price: 100, Quantity: 1}},
		SuccessURL:   "https://shop.example.com/s",
		CancelURL:    "https://shop.example.com/c",
		PaymentLabel: models.PaymentMethodUPI,
		UPI:          true,
	})
	require.NoError(t, err)
	assert.Nil(t, api.sessionParams.MethodTypes)
}

func TestCreateCheckoutSessionUnconfigured(t *testing.T) {
	bridge := NewBridge(nil)
	_, err := bridge.CreateCheckoutSession(context.Background(), CheckoutRequest{
		Items: []models.OrderItem{{Price: 100, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateCheckoutSessionGatewayError(t *testing.T) {
	api := &fakeAPI{sessionErr: errors.New("stripe 500")}
	bridge := NewBridge(api)

	_, err := bridge.CreateCheckoutSession(context.Background(), CheckoutRequest{
		Items:      []models.OrderItem{{Price: 100, Quantity: 1}},
		SuccessURL: "https://s", CancelURL: "https://c",
	})
	require.Error(t, err)
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
}
