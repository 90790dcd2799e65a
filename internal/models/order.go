package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status values. Any admin update may set any value; the progression is
// monotonic in practice but not enforced.
const (
	OrderStatusConfirmed  = "Order Confirmed"
	OrderStatusProcessing = "Processing"
	OrderStatusInTransit  = "In Transit"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// Payment status values.
const (
	PaymentStatusPending       = "Pending"
	PaymentStatusCompleted     = "Completed"
	PaymentStatusFailed        = "Failed"
	PaymentStatusRefundPending = "Refund Pending"
)

// Payment method labels.
const (
	PaymentMethodOnline = "Online"
	PaymentMethodCOD    = "COD"
	PaymentMethodUPI    = "UPI"
)

// Customization holds the optional tailoring details attached to a line item.
// ReferenceImage may arrive as an inline base64 data URI and is rewritten to a
// remote URL before persistence.
type Customization struct {
	Fabric              string `bson:"fabric,omitempty" json:"fabric,omitempty"`
	Embroidery          string `bson:"embroidery,omitempty" json:"embroidery,omitempty"`
	Color               string `bson:"color,omitempty" json:"color,omitempty"`
	Size                string `bson:"size,omitempty" json:"size,omitempty"`
	ReferenceImage      string `bson:"referenceImage,omitempty" json:"referenceImage,omitempty"`
	SpecialInstructions string `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`
}

// OrderItem is one product line within an order. The product reference is not
// enforced as a foreign key; name and price are the client-submitted snapshot
// taken at order time.
type OrderItem struct {
	ProductID     string         `bson:"productId" json:"productId"`
	Name          string         `bson:"name" json:"name"`
	Price         float64        `bson:"price" json:"price"`
	Quantity      int            `bson:"quantity" json:"quantity"`
	Image         string         `bson:"image,omitempty" json:"image,omitempty"`
	Customization *Customization `bson:"customization,omitempty" json:"customization,omitempty"`
}

// ShippingDetails is the loosely-typed address/contact record. Name mirrors
// legacy payloads that sent a single "name" field instead of fullName.
type ShippingDetails struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	FullName  string `bson:"fullName" json:"fullName"`
	Name      string `bson:"name,omitempty" json:"name,omitempty"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`
	City      string `bson:"city,omitempty" json:"city,omitempty"`
	State     string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode   string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// OrderSummary carries the monetary totals, two-decimal rounded.
type OrderSummary struct {
	Subtotal        float64 `bson:"subtotal" json:"subtotal"`
	DeliveryCharges float64 `bson:"deliveryCharges" json:"deliveryCharges"`
	Total           float64 `bson:"total" json:"total"`
}

// InvoiceItem is one derived invoice line.
type InvoiceItem struct {
	Name       string  `bson:"name" json:"name"`
	Quantity   int     `bson:"quantity" json:"quantity"`
	UnitPrice  float64 `bson:"unitPrice" json:"unitPrice"`
	TotalPrice float64 `bson:"totalPrice" json:"totalPrice"`
}

// InvoiceBilling is the billing block assembled from normalized shipping
// details.
type InvoiceBilling struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Pincode string `bson:"pincode" json:"pincode"`
}

// InvoicePayment records the payment method and status at invoice build time.
type InvoicePayment struct {
	Method string `bson:"method" json:"method"`
	Status string `bson:"status" json:"status"`
}

// InvoiceAccess holds static capability flags, true for both sides.
type InvoiceAccess struct {
	Customer bool `bson:"customer" json:"customer"`
	Admin    bool `bson:"admin" json:"admin"`
}

// Invoice is the derived document embedded in an order. URL is overwritten
// once the payment gateway returns a hosted invoice link.
type Invoice struct {
	InvoiceNumber  string         `bson:"invoiceNumber" json:"invoiceNumber"`
	IssueDate      time.Time      `bson:"issueDate" json:"issueDate"`
	BillingDetails InvoiceBilling `bson:"billingDetails" json:"billingDetails"`
	Payment        InvoicePayment `bson:"payment" json:"payment"`
	Items          []InvoiceItem  `bson:"items" json:"items"`
	Summary        OrderSummary   `bson:"summary" json:"summary"`
	Access         InvoiceAccess  `bson:"access" json:"access"`
	URL            string         `bson:"url" json:"url"`
	StripeID       string         `bson:"stripeId,omitempty" json:"stripeId,omitempty"`
	PDFURL         string         `bson:"pdfUrl,omitempty" json:"pdfUrl,omitempty"`
	GeneratedAt    time.Time      `bson:"generatedAt,omitempty" json:"generatedAt,omitempty"`
}

// PaymentDetails captures the gateway session reference stored on checkout
// orders.
type PaymentDetails struct {
	Provider         string   `bson:"provider" json:"provider"`
	SessionID        string   `bson:"sessionId" json:"sessionId"`
	Method           string   `bson:"method" json:"method"`
	PaymentIntentID  string   `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	AvailableMethods []string `bson:"availableMethods,omitempty" json:"availableMethods,omitempty"`
}

// StripeInvoiceRef mirrors the gateway invoice fields persisted alongside the
// embedded invoice.
type StripeInvoiceRef struct {
	ID        string `bson:"id" json:"id"`
	Number    string `bson:"number" json:"number"`
	Status    string `bson:"status" json:"status"`
	HostedURL string `bson:"hostedUrl" json:"hostedUrl"`
	PDF       string `bson:"pdf" json:"pdf"`
}

// Order defines the persisted order document.
type Order struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID                 primitive.ObjectID `bson:"userId" json:"userId"`
	Items                  []OrderItem        `bson:"items" json:"items"`
	ShippingDetails        ShippingDetails    `bson:"shippingDetails" json:"shippingDetails"`
	OrderSummary           OrderSummary       `bson:"orderSummary" json:"orderSummary"`
	PaymentMethod          string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus          string             `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus            string             `bson:"orderStatus" json:"orderStatus"`
	Notes                  string             `bson:"notes" json:"notes"`
	PaymentDetails         *PaymentDetails    `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	RequestedPaymentMethod string             `bson:"requestedPaymentMethod,omitempty" json:"requestedPaymentMethod,omitempty"`
	Invoice                Invoice            `bson:"invoice" json:"invoice"`
	StripeInvoice          *StripeInvoiceRef  `bson:"stripeInvoice,omitempty" json:"stripeInvoice,omitempty"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}
