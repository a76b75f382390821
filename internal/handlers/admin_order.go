package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

type UpdateOrderStatusRequest struct {
	OrderStatus string `json:"orderStatus" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		if len(orders) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no orders", "data": []resolvedOrder{}})
			return
		}

		resolved, err := resolveOrders(ctx, db, orders, true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "orders fetched successfully",
			"data":    resolved,
		})
	}
}

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "no order found with that id"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		resolved, err := resolveOrder(ctx, db, order, true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "order fetched successfully",
			"data":    resolved,
		})
	}
}

// UpdateOrderStatus writes a new status from the closed enum. A transition
// into delivered decrements each line item's product stock by the ordered
// quantity.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderStatus is invalid or should be provided"})
			return
		}

		status, ok := models.ParseOrderStatus(req.OrderStatus)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderStatus is invalid or should be provided"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found with that id"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{"orderStatus": status, "updatedAt": time.Now()},
		}); err != nil {
			log.Println("[ORDER] [ERROR] status update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if shouldDecrementStock(order.OrderStatus, status) {
			decrementStock(ctx, db, order.Items)
		}

		order.OrderStatus = status
		resolved, err := resolveOrder(ctx, db, order, true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Printf("[ORDER] [INFO] order %s status set to %s", orderID.Hex(), status)
		c.JSON(http.StatusOK, gin.H{
			"message": "order status updated successfully",
			"data":    resolved,
		})
	}
}

func UpdatePaymentStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "paymentStatus is invalid or should be provided"})
			return
		}

		status, ok := models.ParsePaymentStatus(req.PaymentStatus)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "paymentStatus is invalid or should be provided"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "no order found with that id"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{"paymentDetails.status": status, "updatedAt": time.Now()},
		}); err != nil {
			log.Println("[ORDER] [ERROR] payment status update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		order.PaymentDetails.Status = status
		resolved, err := resolveOrder(ctx, db, order, true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "payment status updated successfully",
			"data":    resolved,
		})
	}
}

func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted successfully", "data": nil})
	}
}

// shouldDecrementStock reports whether writing newStatus releases stock: any
// entry into delivered from a non-delivered state. A rewound order decrements
// again when re-delivered.
func shouldDecrementStock(oldStatus, newStatus string) bool {
	return newStatus == models.OrderDelivered && oldStatus != models.OrderDelivered
}

func decrementStock(ctx context.Context, db *mongo.Database, items []models.OrderItem) {
	for _, item := range items {
		if _, err := db.Collection("products").UpdateByID(ctx, item.ProductID, bson.M{
			"$inc": bson.M{"stock": -item.Quantity},
		}); err != nil {
			log.Printf("[ORDER] [ERROR] stock decrement failed for %s: %v", item.ProductID.Hex(), err)
		}
	}
}
