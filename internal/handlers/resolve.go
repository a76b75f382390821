package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// Resolved views. Line items carry the full product document in place of the
// bare reference; missing products resolve to null rather than failing the
// whole response.

type resolvedOrderItem struct {
	Product  *models.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type resolvedOrder struct {
	ID              string                `json:"id"`
	User            *userSummary          `json:"user,omitempty"`
	Items           []resolvedOrderItem   `json:"items"`
	TotalAmount     float64               `json:"totalAmount"`
	ShippingAddress string                `json:"shippingAddress"`
	PhoneNumber     string                `json:"phoneNumber"`
	OrderStatus     string                `json:"orderStatus"`
	PaymentDetails  models.PaymentDetails `json:"paymentDetails"`
}

type cartProductView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImagePath   string  `json:"imagePath,omitempty"`
}

type resolvedCartItem struct {
	Product  *cartProductView `json:"product"`
	Quantity int              `json:"quantity"`
}

func fetchProductsByID(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	byID := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	for _, product := range products {
		byID[product.ID] = product
	}
	return byID, nil
}

func resolveOrderItems(ctx context.Context, db *mongo.Database, items []models.OrderItem) ([]resolvedOrderItem, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	byID, err := fetchProductsByID(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	resolved := make([]resolvedOrderItem, 0, len(items))
	for _, item := range items {
		view := resolvedOrderItem{Quantity: item.Quantity}
		if product, ok := byID[item.ProductID]; ok {
			view.Product = &product
		}
		resolved = append(resolved, view)
	}
	return resolved, nil
}

func resolveOrder(ctx context.Context, db *mongo.Database, order models.Order, withUser bool) (resolvedOrder, error) {
	items, err := resolveOrderItems(ctx, db, order.Items)
	if err != nil {
		return resolvedOrder{}, err
	}

	view := resolvedOrder{
		ID:              order.ID.Hex(),
		Items:           items,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		PhoneNumber:     order.PhoneNumber,
		OrderStatus:     order.OrderStatus,
		PaymentDetails:  order.PaymentDetails,
	}

	if withUser {
		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": order.UserID}).Decode(&user); err == nil {
			view.User = &userSummary{
				ID:    user.ID.Hex(),
				Name:  user.Name,
				Email: user.Email,
				Phone: user.Phone,
			}
		}
	}

	return view, nil
}

func resolveOrders(ctx context.Context, db *mongo.Database, orders []models.Order, withUser bool) ([]resolvedOrder, error) {
	resolved := make([]resolvedOrder, 0, len(orders))
	for _, order := range orders {
		view, err := resolveOrder(ctx, db, order, withUser)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, view)
	}
	return resolved, nil
}

// resolveCartItems returns the cart with products joined in. The product
// status field is deliberately omitted from the cart view.
func resolveCartItems(ctx context.Context, db *mongo.Database, cart []models.CartItem) ([]resolvedCartItem, error) {
	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.ProductID)
	}

	byID := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) > 0 {
		opts := options.Find().SetProjection(bson.M{"status": 0})
		cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var products []models.Product
		if err := cursor.All(ctx, &products); err != nil {
			return nil, err
		}
		for _, product := range products {
			byID[product.ID] = product
		}
	}

	resolved := make([]resolvedCartItem, 0, len(cart))
	for _, item := range cart {
		view := resolvedCartItem{Quantity: item.Quantity}
		if product, ok := byID[item.ProductID]; ok {
			view.Product = &cartProductView{
				ID:          product.ID.Hex(),
				Name:        product.Name,
				Description: product.Description,
				Price:       product.Price,
				Stock:       product.Stock,
				ImagePath:   product.ImagePath,
			}
		}
		resolved = append(resolved, view)
	}
	return resolved, nil
}
