package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestAddCartItemAppendsNewLineWithQuantityOne(t *testing.T) {
	productID := primitive.NewObjectID()

	cart := addCartItem(nil, productID)
	if len(cart) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart))
	}
	if cart[0].ProductID != productID || cart[0].Quantity != 1 {
		t.Fatalf("unexpected line: %+v", cart[0])
	}
}

func TestAddCartItemIncrementsExistingLine(t *testing.T) {
	productID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	cart := []models.CartItem{
		{ProductID: productID, Quantity: 2},
		{ProductID: other, Quantity: 1},
	}

	cart = addCartItem(cart, productID)
	if len(cart) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart))
	}
	if cart[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", cart[0].Quantity)
	}
	if cart[1].Quantity != 1 {
		t.Fatalf("other line changed: %+v", cart[1])
	}
}

func TestSetCartItemQuantityMissingLine(t *testing.T) {
	cart := []models.CartItem{{ProductID: primitive.NewObjectID(), Quantity: 1}}

	_, found := setCartItemQuantity(cart, primitive.NewObjectID(), 5)
	if found {
		t.Fatal("expected missing line to report false")
	}
}

func TestSetCartItemQuantityOverwritesWithoutRangeCheck(t *testing.T) {
	productID := primitive.NewObjectID()
	cart := []models.CartItem{{ProductID: productID, Quantity: 2}}

	// zero and negative values are accepted as-is
	for _, quantity := range []int{7, 0, -3} {
		updated, found := setCartItemQuantity(cart, productID, quantity)
		if !found {
			t.Fatalf("expected line to be found for quantity %d", quantity)
		}
		if updated[0].Quantity != quantity {
			t.Fatalf("expected quantity %d, got %d", quantity, updated[0].Quantity)
		}
	}
}

func TestRemoveCartItemFiltersLine(t *testing.T) {
	productID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	cart := []models.CartItem{
		{ProductID: productID, Quantity: 2},
		{ProductID: other, Quantity: 1},
	}

	cart = removeCartItem(cart, productID)
	if len(cart) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart))
	}
	if cart[0].ProductID != other {
		t.Fatalf("wrong line removed: %+v", cart[0])
	}

	// removing an absent product is a no-op
	cart = removeCartItem(cart, productID)
	if len(cart) != 1 {
		t.Fatalf("expected 1 line after no-op remove, got %d", len(cart))
	}
}
