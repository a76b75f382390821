package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

// EnsureSeedAdmin creates the bootstrap admin account if it does not exist.
// Safe to call on every startup.
func EnsureSeedAdmin(db *mongo.Database, email, password string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("EnsureSeedAdmin: admin already seeded")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := models.User{
		Name:         "admin",
		Email:        email,
		Phone:        "1234567890",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Cart:         []models.CartItem{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := db.Collection("users").InsertOne(ctx, admin); err != nil {
		return err
	}

	log.Println("EnsureSeedAdmin: admin seeded:", email)
	return nil
}
