package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type OrderItemRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

type PaymentDetailsRequest struct {
	Method string `json:"method" binding:"required"`
}

type CreateOrderRequest struct {
	ShippingAddress string                 `json:"shippingAddress" binding:"required"`
	Items           []OrderItemRequest     `json:"items"`
	TotalAmount     *float64               `json:"totalAmount" binding:"required"`
	PaymentDetails  *PaymentDetailsRequest `json:"paymentDetails" binding:"required"`
	PhoneNumber     string                 `json:"phoneNumber" binding:"required"`
}

type UpdateOrderRequest struct {
	ShippingAddress string             `json:"shippingAddress" binding:"required"`
	Items           []OrderItemRequest `json:"items" binding:"required"`
}

type CancelOrderRequest struct {
	ID string `json:"id" binding:"required"`
}

/* =========================
   LIFECYCLE RULES
========================= */

func ownsOrder(order models.Order, userID primitive.ObjectID) bool {
	return order.UserID == userID
}

// orderEditable: the owner may edit shipping details until the order is in
// transit or in a terminal state.
func orderEditable(status string) bool {
	return status == models.OrderPending || status == models.OrderPreparation
}

// orderCancellable also gates customer deletes: both are pending-only.
func orderCancellable(status string) bool {
	return status == models.OrderPending
}

func buildOrderItems(items []OrderItemRequest) ([]models.OrderItem, error) {
	built := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.Product))
		if err != nil {
			return nil, errors.New("invalid product id in items")
		}
		built = append(built, models.OrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}
	return built, nil
}

/* =========================
   HANDLERS
========================= */

// insertOrder is a package-level indirection; handler tests substitute it to
// observe writes without a live database.
var insertOrder = func(ctx context.Context, db *mongo.Database, order models.Order) (primitive.ObjectID, error) {
	res, err := db.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		method, ok := models.ParsePaymentMethod(req.PaymentDetails.Method)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "paymentDetails.method must be COD or khalti"})
			return
		}

		items, err := buildOrderItems(req.Items)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		order := models.Order{
			UserID:          user.ID,
			Items:           items,
			TotalAmount:     *req.TotalAmount,
			ShippingAddress: strings.TrimSpace(req.ShippingAddress),
			PhoneNumber:     strings.TrimSpace(req.PhoneNumber),
			OrderStatus:     models.OrderPending,
			PaymentDetails: models.PaymentDetails{
				Method: method,
				Status: models.PaymentPending,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		id, err := insertOrder(ctx, db, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] create insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		order.ID = id

		// the cart is emptied unconditionally, whether or not its contents
		// match the submitted items
		if err := persistCart(ctx, db, user.ID, []models.CartItem{}); err != nil {
			log.Println("[ORDER] [ERROR] cart clear failed:", err)
		}

		log.Println("[ORDER] [INFO] order created for user:", user.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"message": "order created successfully",
			"data":    order,
		})
	}
}

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"user": user.ID})
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

		resolved, err := resolveOrders(ctx, db, orders, false)
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

func UpdateMyOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "please provide shippingAddress and items"})
			return
		}

		items, err := buildOrderItems(req.Items)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "no order with that id"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if !ownsOrder(order, user.ID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "you don't have permission to update this order"})
			return
		}

		if !orderEditable(order.OrderStatus) {
			c.JSON(http.StatusForbidden, gin.H{"error": "you cannot update an order that is already in transit"})
			return
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{
				"shippingAddress": strings.TrimSpace(req.ShippingAddress),
				"items":           items,
				"updatedAt":       time.Now(),
			},
		}); err != nil {
			log.Println("[ORDER] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		var updated models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "order updated successfully",
			"data":    updated,
		})
	}
}

func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req CancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "no order with that id"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if !ownsOrder(order, user.ID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "you don't have permission to cancel this order"})
			return
		}

		if !orderCancellable(order.OrderStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot cancel this order as it is not pending"})
			return
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{"orderStatus": models.OrderCancelled, "updatedAt": time.Now()},
		}); err != nil {
			log.Println("[ORDER] [ERROR] cancel failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		order.OrderStatus = models.OrderCancelled
		c.JSON(http.StatusOK, gin.H{
			"message": "order cancelled successfully",
			"data":    order,
		})
	}
}

func DeleteMyOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

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
			c.JSON(http.StatusNotFound, gin.H{"error": "no order with that id"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if !ownsOrder(order, user.ID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "you cannot delete this order"})
			return
		}

		if !orderCancellable(order.OrderStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot delete this order as it is not pending"})
			return
		}

		if _, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID}); err != nil {
			log.Println("[ORDER] [ERROR] delete failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted successfully", "data": nil})
	}
}
