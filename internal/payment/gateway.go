package payment

import "context"

// Currency every gateway amount is denominated in.
const Currency = "inr"

// ValidationError marks a checkout request rejected before any gateway call.
// Handlers translate it to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SessionParams is the hosted checkout session request.
type SessionParams struct {
	Lines         []CheckoutLine
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	// MethodTypes nil lets the gateway offer everything it supports (UPI
	// flow); otherwise the listed types only.
	MethodTypes []string
	Metadata    map[string]string
}

// CheckoutLine is one purchasable entry, amount in minor units.
type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
	ItemID     string
}

// Session is the created hosted checkout session.
type Session struct {
	ID               string
	URL              string
	PaymentIntentID  string
	AvailableMethods []string
}

// InvoiceLine is one gateway invoice item, amount in minor units.
type InvoiceLine struct {
	Description string
	UnitAmount  int64
	Quantity    int64
	Metadata    map[string]string
}

// GatewayInvoice is a finalized gateway-hosted invoice.
type GatewayInvoice struct {
	ID        string
	Number    string
	Status    string
	HostedURL string
	PDFURL    string
}

// API is the slice of the payment gateway the bridge needs. The live
// implementation wraps the Stripe SDK; tests substitute a fake.
type API interface {
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error)
	UpdateSessionMetadata(ctx context.Context, sessionID string, metadata map[string]string) error
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error)
	CreateInvoiceItem(ctx context.Context, customerID string, line InvoiceLine) error
	CreateInvoice(ctx context.Context, customerID string, metadata map[string]string) (string, error)
	FinalizeInvoice(ctx context.Context, invoiceID string) (*GatewayInvoice, error)
	SendInvoice(ctx context.Context, invoiceID string) error
}

// Bridge orchestrates checkout sessions and standalone invoices against the
// gateway. A nil api means the gateway is not configured.
type Bridge struct {
	api API
}

func NewBridge(api API) *Bridge {
	return &Bridge{api: api}
}

// Configured reports whether a gateway secret was provided.
func (b *Bridge) Configured() bool {
	return b != nil && b.api != nil
}
