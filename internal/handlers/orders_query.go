package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mehryaan-backend/internal/models"
)

// GetUserOrders lists the authenticated user's orders, newest first.
func GetUserOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/user"
		defer handlePanic(c, route)

		user, ok := requireUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		orders, err := findOrders(ctx, db, bson.M{"userId": user.ID})
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   len(orders),
			"orders":  orders,
		})
	}
}

// GetOrder returns a single order to its owner or an admin.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		user, ok := requireUser(c)
		if !ok {
			return
		}
		orderID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		if order.UserID != user.ID && user.Role != "admin" {
			respondError(c, http.StatusForbidden, "Not authorized to access this order")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order":   order,
		})
	}
}

// GetAllOrders lists every order, newest first. Admin only.
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		orders, err := findOrders(ctx, db, bson.M{})
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   len(orders),
			"orders":  orders,
		})
	}
}

// cancelTransition decides the status pair a cancellation results in. COD
// orders have nothing to refund, so their payment status stays Pending;
// anything already paid or paying online moves to Refund Pending.
func cancelTransition(orderStatus, paymentMethod string) (string, string, bool) {
	if orderStatus == models.OrderStatusDelivered || orderStatus == models.OrderStatusCancelled {
		return "", "", false
	}
	paymentStatus := models.PaymentStatusRefundPending
	if paymentMethod == models.PaymentMethodCOD {
		paymentStatus = models.PaymentStatusPending
	}
	return models.OrderStatusCancelled, paymentStatus, true
}

// CancelOrder cancels an order on behalf of its owner or an admin.
func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/:id/cancel"
		defer handlePanic(c, route)

		user, ok := requireUser(c)
		if !ok {
			return
		}
		orderID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		if order.UserID != user.ID && user.Role != "admin" {
			respondError(c, http.StatusForbidden, "Not authorized to cancel this order")
			return
		}

		orderStatus, paymentStatus, allowed := cancelTransition(order.OrderStatus, order.PaymentMethod)
		if !allowed {
			respondError(c, http.StatusBadRequest, "Cannot cancel order with status: "+order.OrderStatus)
			return
		}

		_, err = db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID},
			bson.M{"$set": bson.M{
				"orderStatus":   orderStatus,
				"paymentStatus": paymentStatus,
				"updatedAt":     time.Now(),
			}},
		)
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		var cancelled models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&cancelled); err != nil {
			respondServerError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order cancelled successfully",
			"order":   cancelled,
		})
	}
}

func findOrders(ctx context.Context, db *mongo.Database, filter bson.M) ([]models.Order, error) {
	cursor, err := db.Collection("orders").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
