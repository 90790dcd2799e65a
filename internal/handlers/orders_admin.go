package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mehryaan-backend/internal/billing"
	"mehryaan-backend/internal/models"
)

type updateOrderRequest struct {
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
	Notes         string `json:"notes"`
}

// UpdateOrder sets status/notes fields on an order. Admin only; any status
// value is accepted, no transition rules are enforced here.
func UpdateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id"
		defer handlePanic(c, route)

		orderID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		var req updateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("orders").CountDocuments(ctx, bson.M{"_id": orderID})
		if err != nil {
			respondServerError(c, route, err)
			return
		}
		if count == 0 {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}

		update := bson.M{"updatedAt": time.Now()}
		if req.OrderStatus != "" {
			update["orderStatus"] = req.OrderStatus
		}
		if req.PaymentStatus != "" {
			update["paymentStatus"] = req.PaymentStatus
		}
		if req.Notes != "" {
			update["notes"] = req.Notes
		}

		if _, err := db.Collection("orders").UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": update}); err != nil {
			respondServerError(c, route, err)
			return
		}

		var updated models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&updated); err != nil {
			respondServerError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order":   updated,
		})
	}
}

// DeleteOrder removes an order permanently. Admin only, no tombstone.
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/orders/:id"
		defer handlePanic(c, route)

		orderID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			respondServerError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order deleted successfully",
		})
	}
}

type bulkStatusRequest struct {
	OrderIDs      []string `json:"orderIds"`
	OrderStatus   string   `json:"orderStatus"`
	PaymentStatus string   `json:"paymentStatus"`
}

// buildBulkUpdate assembles the $set document for a bulk status update. Only
// the provided statuses change; the other field is left untouched on every
// matched order.
func buildBulkUpdate(orderStatus, paymentStatus string, now time.Time) (bson.M, bool) {
	if orderStatus == "" && paymentStatus == "" {
		return nil, false
	}
	update := bson.M{"updatedAt": now}
	if orderStatus != "" {
		update["orderStatus"] = orderStatus
	}
	if paymentStatus != "" {
		update["paymentStatus"] = paymentStatus
	}
	return update, true
}

// BulkUpdateStatus applies a status change to a set of orders at once.
func BulkUpdateStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/bulk/status"
		defer handlePanic(c, route)

		var req bulkStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.OrderIDs) == 0 {
			respondError(c, http.StatusBadRequest, "Please provide an array of orderIds")
			return
		}

		update, ok := buildBulkUpdate(req.OrderStatus, req.PaymentStatus, time.Now())
		if !ok {
			respondError(c, http.StatusBadRequest, "Please provide orderStatus or paymentStatus to update")
			return
		}

		objectIDs := make([]primitive.ObjectID, 0, len(req.OrderIDs))
		for _, raw := range req.OrderIDs {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, "invalid order id: "+raw)
				return
			}
			objectIDs = append(objectIDs, id)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": objectIDs}},
			bson.M{"$set": update},
		)
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       fmt.Sprintf("%d orders updated successfully", result.ModifiedCount),
			"modifiedCount": result.ModifiedCount,
			"matchedCount":  result.MatchedCount,
		})
	}
}

// parseDateRange parses YYYY-MM-DD bounds into an inclusive [start, end]
// window, widening the end to the last instant of its day.
func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end = end.Add(24*time.Hour - time.Millisecond)
	return start, end, nil
}

// FilterOrdersByDate lists orders created within a date range. Admin only.
func FilterOrdersByDate(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/filter/date"
		defer handlePanic(c, route)

		startDate := c.Query("startDate")
		endDate := c.Query("endDate")
		if startDate == "" || endDate == "" {
			respondError(c, http.StatusBadRequest, "Please provide startDate and endDate (YYYY-MM-DD format)")
			return
		}

		start, end, err := parseDateRange(startDate, endDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		orders, err := findOrders(ctx, db, bson.M{
			"createdAt": bson.M{"$gte": start, "$lte": end},
		})
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		totalRevenue := 0.0
		for _, order := range orders {
			totalRevenue += order.OrderSummary.Total
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"count":        len(orders),
			"totalRevenue": totalRevenue,
			"dateRange":    gin.H{"from": startDate, "to": endDate},
			"orders":       orders,
		})
	}
}

// SearchOrdersByCustomer searches orders by shipping contact fields. Admin
// only.
func SearchOrdersByCustomer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/search/customer"
		defer handlePanic(c, route)

		query := strings.TrimSpace(c.Query("query"))
		if query == "" {
			respondError(c, http.StatusBadRequest, "Please provide a search query")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		pattern := primitive.Regex{Pattern: query, Options: "i"}
		orders, err := findOrders(ctx, db, bson.M{
			"$or": []bson.M{
				{"shippingDetails.fullName": pattern},
				{"shippingDetails.email": pattern},
				{"shippingDetails.phone": pattern},
			},
		})
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"count":       len(orders),
			"searchQuery": query,
			"orders":      orders,
		})
	}
}

// Statistics is the dashboard aggregation computed in-process over every
// order document.
type Statistics struct {
	TotalOrders       int            `json:"totalOrders"`
	TotalRevenue      float64        `json:"totalRevenue"`
	AverageOrderValue float64        `json:"averageOrderValue"`
	StatusBreakdown   map[string]int `json:"statusBreakdown"`
	PaymentBreakdown  map[string]int `json:"paymentBreakdown"`
	MethodBreakdown   map[string]int `json:"paymentMethodBreakdown"`
}

func computeStatistics(orders []models.Order) Statistics {
	stats := Statistics{
		TotalOrders: len(orders),
		StatusBreakdown: map[string]int{
			"confirmed": 0, "processing": 0, "inTransit": 0, "delivered": 0, "cancelled": 0,
		},
		PaymentBreakdown: map[string]int{
			"pending": 0, "completed": 0, "failed": 0,
		},
		MethodBreakdown: map[string]int{
			"online": 0, "cod": 0, "upi": 0,
		},
	}

	for _, order := range orders {
		stats.TotalRevenue += order.OrderSummary.Total

		switch order.OrderStatus {
		case models.OrderStatusConfirmed:
			stats.StatusBreakdown["confirmed"]++
		case models.OrderStatusProcessing:
			stats.StatusBreakdown["processing"]++
		case models.OrderStatusInTransit:
			stats.StatusBreakdown["inTransit"]++
		case models.OrderStatusDelivered:
			stats.StatusBreakdown["delivered"]++
		case models.OrderStatusCancelled:
			stats.StatusBreakdown["cancelled"]++
		}

		switch order.PaymentStatus {
		case models.PaymentStatusPending:
			stats.PaymentBreakdown["pending"]++
		case models.PaymentStatusCompleted:
			stats.PaymentBreakdown["completed"]++
		case models.PaymentStatusFailed:
			stats.PaymentBreakdown["failed"]++
		}

		switch order.PaymentMethod {
		case models.PaymentMethodOnline:
			stats.MethodBreakdown["online"]++
		case models.PaymentMethodCOD:
			stats.MethodBreakdown["cod"]++
		case models.PaymentMethodUPI:
			stats.MethodBreakdown["upi"]++
		}
	}

	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = billing.Round2(stats.TotalRevenue / float64(stats.TotalOrders))
	}
	return stats
}

// OrderStatistics serves the admin dashboard aggregation.
func OrderStatistics(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/statistics/dashboard"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		orders, err := findOrders(ctx, db, bson.M{})
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"statistics": computeStatistics(orders),
		})
	}
}
