package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// GetUsers lists every account except the caller's, with credential and OTP
// fields projected out.
func GetUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := currentUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetProjection(bson.M{
			"passwordHash": 0,
			"otp":          0,
			"otpVerified":  0,
		})

		cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$ne": me.ID}}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		if len(users) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no users found", "data": []models.User{}})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "users fetched successfully",
			"data":    users,
		})
	}
}
