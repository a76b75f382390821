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

type CreateReviewRequest struct {
	Rating  *int   `json:"rating" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// CreateReview records a customer's review for the product in the path.
func CreateReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}

		var req CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
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
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found with that id"})
			return
		}

		review := models.Review{
			UserID:    user.ID,
			ProductID: productID,
			Rating:    *req.Rating,
			Message:   req.Message,
			CreatedAt: time.Now(),
		}
		result, err := db.Collection("reviews").InsertOne(ctx, review)
		if err != nil {
			log.Println("[REVIEW] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		review.ID = result.InsertedID.(primitive.ObjectID)

		log.Printf("[REVIEW] [INFO] user %s reviewed product %s", user.ID.Hex(), productID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"message": "review created successfully",
			"data":    review,
		})
	}
}

// GetMyReviews lists the reviews written by the caller.
func GetMyReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("reviews").Find(ctx, bson.M{"userId": user.ID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		reviews := []models.Review{}
		if err := cursor.All(ctx, &reviews); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if len(reviews) == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "no reviews found",
				"data":    reviews,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "reviews fetched successfully",
			"data":    reviews,
		})
	}
}
