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
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

func CreateProduct(db *mongo.Database, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "multipart/form-data required"})
			return
		}

		input, err := parseMultipartProductInput(c, uploadDir)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] create multipart error:", err)
			respondMultipartError(c, err)
			return
		}

		if !input.NameSet || input.Name == "" ||
			!input.DescriptionSet || input.Description == "" ||
			!input.PriceSet || !input.StatusSet || !input.StockSet {
			c.JSON(http.StatusBadRequest, gin.H{"error": "please provide name, description, price, status and stock"})
			return
		}

		status, ok := models.ParseProductStatus(input.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
			return
		}

		if input.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be zero or greater"})
			return
		}
		if input.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be zero or greater"})
			return
		}

		now := time.Now()
		product := models.Product{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Stock:       input.Stock,
			Status:      status,
			ImagePath:   input.ImagePath,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] create insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		product.ID = res.InsertedID.(primitive.ObjectID)
		log.Println("[PRODUCT] [INFO] product created:", product.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"message": "product created successfully",
			"data":    product,
		})
	}
}

func EditProduct(db *mongo.Database, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		input, err := parseMultipartProductInput(c, uploadDir)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] edit multipart error:", err)
			respondMultipartError(c, err)
			return
		}

		if !input.NameSet || input.Name == "" ||
			!input.DescriptionSet || input.Description == "" ||
			!input.PriceSet || !input.StatusSet || !input.StockSet {
			c.JSON(http.StatusBadRequest, gin.H{"error": "please provide name, description, price, status and stock"})
			return
		}

		status, ok := models.ParseProductStatus(input.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
			return
		}

		if input.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be zero or greater"})
			return
		}
		if input.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be zero or greater"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		updateSet := bson.M{
			"name":        input.Name,
			"description": input.Description,
			"price":       input.Price,
			"stock":       input.Stock,
			"status":      status,
			"updatedAt":   time.Now(),
		}
		if input.ImageSet {
			updateSet["imagePath"] = input.ImagePath
		}

		if _, err := db.Collection("products").UpdateByID(ctx, id, bson.M{"$set": updateSet}); err != nil {
			log.Println("[PRODUCT] [ERROR] edit update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		// image asset cleanup only after the document update succeeded
		if input.ImageSet && existing.ImagePath != "" && existing.ImagePath != input.ImagePath {
			if err := safeDeleteUpload(uploadDir, existing.ImagePath); err != nil {
				log.Printf("[PRODUCT] [ERROR] old image delete failed: %v", err)
			}
		}

		var updated models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "product updated successfully",
			"data":    updated,
		})
	}
}

func DeleteProduct(db *mongo.Database, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		// best effort: a failed asset delete must not block the document delete
		if err := safeDeleteUpload(uploadDir, existing.ImagePath); err != nil {
			log.Printf("[PRODUCT] [ERROR] image delete failed: %v", err)
		}

		if _, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "product deleted successfully",
			"data":    existing,
		})
	}
}

// GetProducts returns the full catalog plus every review as an informational
// aggregate (reviews are not scoped to the listed products).
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("products").Find(ctx, bson.M{}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var products []models.Product
		if err := cursor.All(ctx, &products); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		if len(products) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no products found", "data": []models.Product{}})
			return
		}

		reviewCursor, err := db.Collection("reviews").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer reviewCursor.Close(ctx)

		var reviews []models.Review
		if err := reviewCursor.All(ctx, &reviews); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "products fetched successfully",
			"data":    products,
			"review":  reviews,
		})
	}
}

func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		reviewCursor, err := db.Collection("reviews").Find(ctx, bson.M{"productId": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer reviewCursor.Close(ctx)

		var reviews []models.Review
		if err := reviewCursor.All(ctx, &reviews); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":        "product fetched successfully",
			"data":           product,
			"productReviews": reviews,
		})
	}
}
