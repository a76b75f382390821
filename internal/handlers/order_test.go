package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

func jsonContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, recorder
}

func TestOwnsOrder(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	order := models.Order{UserID: owner}

	if !ownsOrder(order, owner) {
		t.Fatal("owner should own their order")
	}
	if ownsOrder(order, stranger) {
		t.Fatal("another user must not own the order")
	}
}

func TestOrderEditable(t *testing.T) {
	cases := []struct {
		status   string
		editable bool
	}{
		{models.OrderPending, true},
		{models.OrderPreparation, true},
		{models.OrderOnTheWay, false},
		{models.OrderDelivered, false},
		{models.OrderCancelled, false},
	}
	for _, tc := range cases {
		if got := orderEditable(tc.status); got != tc.editable {
			t.Errorf("orderEditable(%q) = %v, want %v", tc.status, got, tc.editable)
		}
	}
}

func TestOrderCancellable(t *testing.T) {
	cases := []struct {
		status      string
		cancellable bool
	}{
		{models.OrderPending, true},
		{models.OrderPreparation, false},
		{models.OrderOnTheWay, false},
		{models.OrderDelivered, false},
		{models.OrderCancelled, false},
	}
	for _, tc := range cases {
		if got := orderCancellable(tc.status); got != tc.cancellable {
			t.Errorf("orderCancellable(%q) = %v, want %v", tc.status, got, tc.cancellable)
		}
	}
}

func TestBuildOrderItems(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	items, err := buildOrderItems([]OrderItemRequest{
		{Product: first.Hex(), Quantity: 2},
		{Product: " " + second.Hex() + " ", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("buildOrderItems returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ProductID != first || items[0].Quantity != 2 {
		t.Errorf("first item not built correctly: %+v", items[0])
	}
	if items[1].ProductID != second {
		t.Error("product id should be trimmed before parsing")
	}
}

func TestBuildOrderItemsInvalidID(t *testing.T) {
	_, err := buildOrderItems([]OrderItemRequest{{Product: "not-an-id", Quantity: 1}})
	if err == nil {
		t.Fatal("expected an error for a malformed product id")
	}
}

func TestBuildOrderItemsEmpty(t *testing.T) {
	items, err := buildOrderItems(nil)
	if err != nil {
		t.Fatalf("buildOrderItems(nil) returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestCreateOrderClearsCartUnconditionally(t *testing.T) {
	origInsert, origPersist := insertOrder, persistCart
	defer func() { insertOrder, persistCart = origInsert, origPersist }()

	insertOrder = func(ctx context.Context, db *mongo.Database, order models.Order) (primitive.ObjectID, error) {
		return primitive.NewObjectID(), nil
	}

	outside := primitive.NewObjectID()
	bodies := map[string]string{
		"empty items": `{"shippingAddress":"kathmandu","items":[],"totalAmount":200,"paymentDetails":{"method":"COD"},"phoneNumber":"9800000000"}`,
		"items not from cart": fmt.Sprintf(
			`{"shippingAddress":"kathmandu","items":[{"product":%q,"quantity":1}],"totalAmount":200,"paymentDetails":{"method":"COD"},"phoneNumber":"9800000000"}`,
			outside.Hex()),
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			var saved []models.CartItem
			var savedFor primitive.ObjectID
			calls := 0
			persistCart = func(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, cart []models.CartItem) error {
				calls++
				savedFor = userID
				saved = cart
				return nil
			}

			user := models.User{
				ID:   primitive.NewObjectID(),
				Role: models.RoleCustomer,
				Cart: []models.CartItem{{ProductID: primitive.NewObjectID(), Quantity: 2}},
			}

			c, recorder := jsonContext(t, "POST", "/order/", body)
			c.Set("user", user)

			CreateOrder(nil)(c)

			if recorder.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
			}
			if calls != 1 {
				t.Fatalf("expected exactly one cart write, got %d", calls)
			}
			if savedFor != user.ID {
				t.Error("cart cleared for the wrong user")
			}
			if len(saved) != 0 {
				t.Fatalf("expected cart emptied, got %d lines", len(saved))
			}
		})
	}
}

func TestShouldDecrementStock(t *testing.T) {
	cases := []struct {
		oldStatus string
		newStatus string
		want      bool
	}{
		{models.OrderPending, models.OrderDelivered, true},
		{models.OrderOnTheWay, models.OrderDelivered, true},
		{models.OrderDelivered, models.OrderDelivered, false},
		{models.OrderPending, models.OrderCancelled, false},
		{models.OrderDelivered, models.OrderPending, false},
	}
	for _, tc := range cases {
		if got := shouldDecrementStock(tc.oldStatus, tc.newStatus); got != tc.want {
			t.Errorf("shouldDecrementStock(%q, %q) = %v, want %v", tc.oldStatus, tc.newStatus, got, tc.want)
		}
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{1, 100},
		{99.99, 9999},
		{1234.5, 123450},
		{0.1, 10},
	}
	for _, tc := range cases {
		if got := minorUnits(tc.amount); got != tc.want {
			t.Errorf("minorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
