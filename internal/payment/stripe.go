package payment

import (
	"context"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// StripeAPI is the live gateway implementation over the Stripe SDK.
type StripeAPI struct {
	sc *client.API
}

func NewStripeAPI(secretKey string) *StripeAPI {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeAPI{sc: sc}
}

func (s *StripeAPI) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	sessionParams.Context = ctx

	for _, line := range params.Lines {
		item := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(Currency),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(line.Quantity),
		}
		if line.ItemID != "" {
			item.PriceData.ProductData.Metadata = map[string]string{"itemId": line.ItemID}
		}
		sessionParams.LineItems = append(sessionParams.LineItems, item)
	}

	if params.MethodTypes != nil {
		sessionParams.PaymentMethodTypes = stripe.StringSlice(params.MethodTypes)
	}
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	for key, value := range params.Metadata {
		sessionParams.AddMetadata(key, value)
	}

	created, err := s.sc.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, err
	}

	session := &Session{ID: created.ID, URL: created.URL}
	if created.PaymentIntent != nil {
		session.PaymentIntentID = created.PaymentIntent.ID
	}
	for _, method := range created.PaymentMethodTypes {
		session.AvailableMethods = append(session.AvailableMethods, string(method))
	}
	return session, nil
}

func (s *StripeAPI) UpdateSessionMetadata(ctx context.Context, sessionID string, metadata map[string]string) error {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}
	_, err := s.sc.CheckoutSessions.Update(sessionID, params)
	return err
}

func (s *StripeAPI) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if email != "" {
		params.Email = stripe.String(email)
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}
	customer, err := s.sc.Customers.New(params)
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}

func (s *StripeAPI) CreateInvoiceItem(ctx context.Context, customerID string, line InvoiceLine) error {
	params := &stripe.InvoiceItemParams{
		Customer:    stripe.String(customerID),
		Currency:    stripe.String(Currency),
		UnitAmount:  stripe.Int64(line.UnitAmount),
		Quantity:    stripe.Int64(line.Quantity),
		Description: stripe.String(line.Description),
	}
	params.Context = ctx
	for key, value := range line.Metadata {
		params.AddMetadata(key, value)
	}
	_, err := s.sc.InvoiceItems.New(params)
	return err
}

func (s *StripeAPI) CreateInvoice(ctx context.Context, customerID string, metadata map[string]string) (string, error) {
	params := &stripe.InvoiceParams{
		Customer:         stripe.String(customerID),
		CollectionMethod: stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
	}
	params.Context = ctx
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}
	invoice, err := s.sc.Invoices.New(params)
	if err != nil {
		return "", err
	}
	return invoice.ID, nil
}

func (s *StripeAPI) FinalizeInvoice(ctx context.Context, invoiceID string) (*GatewayInvoice, error) {
	params := &stripe.InvoiceFinalizeInvoiceParams{}
	params.Context = ctx
	finalized, err := s.sc.Invoices.FinalizeInvoice(invoiceID, params)
	if err != nil {
		return nil, err
	}
	return &GatewayInvoice{
		ID:        finalized.ID,
		Number:    finalized.Number,
		Status:    string(finalized.Status),
		HostedURL: finalized.HostedInvoiceURL,
		PDFURL:    finalized.InvoicePDF,
	}, nil
}

func (s *StripeAPI) SendInvoice(ctx context.Context, invoiceID string) error {
	params := &stripe.InvoiceSendInvoiceParams{}
	params.Context = ctx
	_, err := s.sc.Invoices.SendInvoice(invoiceID, params)
	return err
}
