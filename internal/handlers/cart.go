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

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

/* =========================
   PURE CART OPERATIONS
========================= */

// addCartItem increments the quantity of an existing line or appends a new
// one with quantity 1.
func addCartItem(cart []models.CartItem, productID primitive.ObjectID) []models.CartItem {
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity++
			return cart
		}
	}
	return append(cart, models.CartItem{ProductID: productID, Quantity: 1})
}

// setCartItemQuantity overwrites the quantity of an existing line. Reports
// false when the line does not exist. The value itself is not range checked.
func setCartItemQuantity(cart []models.CartItem, productID primitive.ObjectID, quantity int) ([]models.CartItem, bool) {
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity = quantity
			return cart, true
		}
	}
	return cart, false
}

func removeCartItem(cart []models.CartItem, productID primitive.ObjectID) []models.CartItem {
	filtered := make([]models.CartItem, 0, len(cart))
	for _, item := range cart {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

/* =========================
   HANDLERS
========================= */

func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		cart := addCartItem(user.Cart, productID)
		if err := saveCart(ctx, db, user.ID, cart); err != nil {
			log.Println("[CART] [ERROR] add save failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		resolved, err := resolveCartItems(ctx, db, cart)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "product added to cart",
			"data":    resolved,
		})
	}
}

func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		var req UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		cart, found := setCartItemQuantity(user.Cart, productID, *req.Quantity)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "no item with that productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := saveCart(ctx, db, user.ID, cart); err != nil {
			log.Println("[CART] [ERROR] update save failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "item updated successfully",
			"data":    cart,
		})
	}
}

func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no product with that productId"})
			return
		}

		cart := removeCartItem(user.Cart, productID)
		if err := saveCart(ctx, db, user.ID, cart); err != nil {
			log.Println("[CART] [ERROR] remove save failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "item removed successfully"})
	}
}

func GetMyCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		resolved, err := resolveCartItems(ctx, db, user.Cart)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "cart items fetched successfully",
			"data":    resolved,
		})
	}
}

func saveCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, cart []models.CartItem) error {
	_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"cart": cart, "updatedAt": time.Now()},
	})
	return err
}

// persistCart is the indirection handler tests substitute to observe cart
// writes without a live database.
var persistCart = saveCart
