package handlers

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
	"backend/internal/payment"
)

type InitiatePaymentRequest struct {
	OrderID string   `json:"orderId" binding:"required"`
	Amount  *float64 `json:"amount" binding:"required"`
}

type VerifyPaymentRequest struct {
	Pidx string `json:"pidx" binding:"required"`
}

// minorUnits converts a major-unit amount to the gateway's paisa
// representation.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

var errAmountMismatch = errors.New("amount must be equal to totalAmount")

// store indirections; handler tests substitute these to observe writes
// without a live database.
var (
	findOrderByPidx = func(ctx context.Context, db *mongo.Database, pidx string) (models.Order, error) {
		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"paymentDetails.pidx": pidx}).Decode(&order)
		return order, err
	}

	markOrderPaid = func(ctx context.Context, db *mongo.Database, orderID primitive.ObjectID) error {
		_, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{
				"paymentDetails.method": models.PaymentMethodKhalti,
				"paymentDetails.status": models.PaymentPaid,
				"updatedAt":             time.Now(),
			},
		})
		return err
	}
)

// initiateForOrder guards the gateway call: the submitted amount must exactly
// equal the order total or the gateway is never contacted.
func initiateForOrder(ctx context.Context, gateway *payment.Client, order models.Order, amount float64, returnURL, websiteURL string) (payment.InitiateResponse, error) {
	if amount != order.TotalAmount {
		return payment.InitiateResponse{}, errAmountMismatch
	}
	return gateway.Initiate(ctx, payment.InitiateRequest{
		ReturnURL:         returnURL,
		WebsiteURL:        websiteURL,
		PurchaseOrderID:   order.ID.Hex(),
		PurchaseOrderName: "orderName_" + order.ID.Hex(),
		Amount:            minorUnits(order.TotalAmount),
	})
}

// InitiatePayment creates a payment intent at the gateway for an existing
// order. The submitted amount must exactly equal the order total; no gateway
// call is made otherwise.
func InitiatePayment(db *mongo.Database, gateway *payment.Client, returnURL, websiteURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InitiatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "please provide orderId, amount"})
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OrderID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orderId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
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

		initiated, err := initiateForOrder(ctx, gateway, order, *req.Amount, returnURL, websiteURL)
		if errors.Is(err, errAmountMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be equal to totalAmount"})
			return
		}
		if err != nil {
			respondGatewayError(c, "initiate", err)
			return
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{"paymentDetails.pidx": initiated.Pidx, "updatedAt": time.Now()},
		}); err != nil {
			log.Println("[PAYMENT] [ERROR] pidx save failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Printf("[PAYMENT] [INFO] payment initiated for order %s pidx=%s", orderID.Hex(), initiated.Pidx)
		c.JSON(http.StatusOK, gin.H{
			"message": "payment initiated successfully",
			"payment": initiated,
		})
	}
}

// VerifyPayment looks the transaction up at the gateway and, only for a
// completed payment whose confirmed amount matches the order total, marks the
// order paid and clears the owning customer's cart.
func VerifyPayment(db *mongo.Database, gateway *payment.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "please provide pidx"})
			return
		}

		pidx := strings.TrimSpace(req.Pidx)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
		defer cancel()

		lookup, err := gateway.Lookup(ctx, pidx)
		if err != nil {
			respondGatewayError(c, "lookup", err)
			return
		}

		if lookup.Status != payment.StatusCompleted {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "payment verification did not succeed",
				"status": lookup.Status,
			})
			return
		}

		order, err := findOrderByPidx(ctx, db, pidx)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "no order found for that pidx"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		// the gateway-confirmed amount must equal the order total before the
		// order is marked paid
		if lookup.TotalAmount != minorUnits(order.TotalAmount) {
			log.Printf("[PAYMENT] [ERROR] amount mismatch for order %s: gateway=%d order=%d",
				order.ID.Hex(), lookup.TotalAmount, minorUnits(order.TotalAmount))
			c.JSON(http.StatusBadRequest, gin.H{"error": "confirmed amount does not match order total"})
			return
		}

		if err := markOrderPaid(ctx, db, order.ID); err != nil {
			log.Println("[PAYMENT] [ERROR] paid update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if err := persistCart(ctx, db, order.UserID, []models.CartItem{}); err != nil {
			log.Println("[PAYMENT] [ERROR] cart clear failed:", err)
		}

		log.Printf("[PAYMENT] [INFO] payment verified for order %s", order.ID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "payment verified successfully"})
	}
}

func respondGatewayError(c *gin.Context, op string, err error) {
	log.Printf("[PAYMENT] [ERROR] gateway %s failed: %v", op, err)

	var gatewayErr *payment.GatewayError
	if errors.As(err, &gatewayErr) {
		c.JSON(gatewayErr.StatusCode, gin.H{"error": gatewayErr.Body})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
}
