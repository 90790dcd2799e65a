package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mehryaan-backend/internal/billing"
	"mehryaan-backend/internal/models"
	"mehryaan-backend/internal/payment"
	"mehryaan-backend/internal/uploads"
)

type createOrderRequest struct {
	Items           []models.OrderItem     `json:"items" binding:"required"`
	ShippingDetails models.ShippingDetails `json:"shippingDetails"`
	OrderSummary    models.OrderSummary    `json:"orderSummary"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentStatus   string                 `json:"paymentStatus"`
	InvoiceURL      string                 `json:"invoiceUrl"`
	PaymentDetails  *models.PaymentDetails `json:"paymentDetails"`
}

// normalizePaymentMethod maps the loosely-cased client value onto the stored
// label. Anything unrecognized is treated as an online payment.
func normalizePaymentMethod(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cod":
		return models.PaymentMethodCOD
	case "upi":
		return models.PaymentMethodUPI
	default:
		return models.PaymentMethodOnline
	}
}

// CreateOrder runs the order pipeline: process item images, build the
// embedded invoice, persist, link to the user, then best-effort create a
// gateway invoice and patch the stored order with its links.
func CreateOrder(db *mongo.Database, bridge *uploads.Bridge, gateway *payment.Bridge) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		user, ok := requireUser(c)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Items are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		// a replayed Idempotency-Key returns the order it created before
		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		if idemKey != "" {
			if existing, found := findIdempotentOrder(ctx, db, idemKey, user.ID); found {
				c.JSON(http.StatusOK, gin.H{
					"success":         true,
					"message":         "Order already created",
					"order":           existing,
					"invoiceUrl":      existing.Invoice.URL,
					"stripeInvoiceId": existing.Invoice.StripeID,
				})
				return
			}
		}

		items := bridge.ProcessItems(ctx, req.Items)
		order := assembleOrder(user.ID, req, items, time.Now())

		result, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondServerError(c, route, err)
			return
		}
		orderID, _ := result.InsertedID.(primitive.ObjectID)
		order.ID = orderID

		linkOrderToUser(ctx, db, user.ID, orderID)

		if idemKey != "" {
			recordIdempotency(ctx, db, idemKey, user.ID, orderID)
		}

		applyGatewayInvoice(ctx, db, gateway, &order, "")

		c.JSON(http.StatusCreated, gin.H{
			"success":         true,
			"message":         "Order created successfully and saved to your profile",
			"order":           order,
			"invoiceUrl":      order.Invoice.URL,
			"stripeInvoiceId": order.Invoice.StripeID,
		})
	}
}

// assembleOrder builds the document a creation request persists. The
// embedded invoice is built before the order id exists, so its number takes
// the timestamp fallback, and its summary becomes the order summary. A
// request without a payment status starts Pending; the order itself starts
// Confirmed.
func assembleOrder(userID primitive.ObjectID, req createOrderRequest, items []models.OrderItem, now time.Time) models.Order {
	methodLabel := normalizePaymentMethod(req.PaymentMethod)
	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusPending
	}

	invoiceData := billing.BuildInvoice(models.Order{
		UserID:          userID,
		Items:           items,
		ShippingDetails: req.ShippingDetails,
		OrderSummary:    req.OrderSummary,
		PaymentMethod:   methodLabel,
		PaymentStatus:   paymentStatus,
		Invoice:         models.Invoice{URL: req.InvoiceURL},
	}, "")
	invoiceData.GeneratedAt = now

	return models.Order{
		UserID:          userID,
		Items:           items,
		ShippingDetails: req.ShippingDetails,
		OrderSummary:    invoiceData.Summary,
		PaymentMethod:   methodLabel,
		PaymentStatus:   paymentStatus,
		OrderStatus:     models.OrderStatusConfirmed,
		Notes:           "",
		PaymentDetails:  req.PaymentDetails,
		Invoice:         invoiceData,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func findIdempotentOrder(ctx context.Context, db *mongo.Database, key string, userID primitive.ObjectID) (*models.Order, bool) {
	var record models.IdempotencyRecord
	err := db.Collection("order_idempotency").FindOne(ctx, bson.M{
		"key":    key,
		"userId": userID,
	}).Decode(&record)
	if err != nil {
		return nil, false
	}

	var order models.Order
	if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": record.OrderID}).Decode(&order); err != nil {
		return nil, false
	}
	return &order, true
}

func recordIdempotency(ctx context.Context, db *mongo.Database, key string, userID, orderID primitive.ObjectID) {
	_, err := db.Collection("order_idempotency").InsertOne(ctx, models.IdempotencyRecord{
		Key:       key,
		UserID:    userID,
		OrderID:   orderID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Println("[ORDER] [WARN] idempotency record insert failed:", err)
	}
}

func linkOrderToUser(ctx context.Context, db *mongo.Database, userID, orderID primitive.ObjectID) {
	_, err := db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"orders": orderID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		log.Println("[ORDER] [WARN] linking order to user failed:", err)
	}
}

// applyGatewayInvoice creates a hosted invoice for the order and, when one
// comes back, patches both the in-memory order and the stored document.
// Failures degrade to "no hosted invoice" and are logged inside the bridge.
func applyGatewayInvoice(ctx context.Context, db *mongo.Database, gateway *payment.Bridge, order *models.Order, customerEmail string) {
	gatewayInvoice := gateway.CreateInvoice(ctx, payment.InvoiceRequest{
		UserID:        order.UserID.Hex(),
		OrderID:       order.ID.Hex(),
		Items:         order.Items,
		Shipping:      order.ShippingDetails,
		Summary:       order.OrderSummary,
		CustomerEmail: customerEmail,
	})
	if gatewayInvoice == nil {
		return
	}

	if gatewayInvoice.HostedURL != "" {
		order.Invoice.URL = gatewayInvoice.HostedURL
	}
	order.Invoice.StripeID = gatewayInvoice.ID
	if gatewayInvoice.PDFURL != "" {
		order.Invoice.PDFURL = gatewayInvoice.PDFURL
	}
	order.StripeInvoice = &models.StripeInvoiceRef{
		ID:        gatewayInvoice.ID,
		Number:    gatewayInvoice.Number,
		Status:    gatewayInvoice.Status,
		HostedURL: gatewayInvoice.HostedURL,
		PDF:       gatewayInvoice.PDFURL,
	}

	_, err := db.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{
			"invoice":       order.Invoice,
			"stripeInvoice": order.StripeInvoice,
			"updatedAt":     time.Now(),
		}},
	)
	if err != nil {
		log.Println("[ORDER] [WARN] storing gateway invoice failed:", err)
	}
}
