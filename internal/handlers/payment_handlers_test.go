package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
	"backend/internal/payment"
)

func TestInitiateForOrderRejectsMismatchWithoutGatewayCall(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode(payment.InitiateResponse{Pidx: "p", PaymentURL: "https://pay.example/p"})
	}))
	defer server.Close()

	gateway := payment.NewClient(server.URL, "secret-key")
	order := models.Order{ID: primitive.NewObjectID(), TotalAmount: 200}

	for _, amount := range []float64{150, 199.99, 200.0000001, 0} {
		_, err := initiateForOrder(context.Background(), gateway, order, amount, "https://ret", "https://web")
		if !errors.Is(err, errAmountMismatch) {
			t.Fatalf("amount %v: expected amount mismatch error, got %v", amount, err)
		}
	}
	if hits != 0 {
		t.Fatalf("gateway contacted %d times for mismatched amounts", hits)
	}
}

func TestInitiateForOrderForwardsExactMatch(t *testing.T) {
	var got payment.InitiateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(payment.InitiateResponse{
			Pidx:       "abc123",
			PaymentURL: "https://pay.example/abc123",
		})
	}))
	defer server.Close()

	gateway := payment.NewClient(server.URL, "secret-key")
	order := models.Order{ID: primitive.NewObjectID(), TotalAmount: 200}

	resp, err := initiateForOrder(context.Background(), gateway, order, 200, "https://ret", "https://web")
	if err != nil {
		t.Fatalf("initiateForOrder returned error: %v", err)
	}
	if got.Amount != 20000 {
		t.Fatalf("expected amount 20000 paisa, got %d", got.Amount)
	}
	if got.PurchaseOrderID != order.ID.Hex() {
		t.Fatalf("expected merchant reference %s, got %s", order.ID.Hex(), got.PurchaseOrderID)
	}
	if got.ReturnURL != "https://ret" || got.WebsiteURL != "https://web" {
		t.Fatalf("redirect URLs not forwarded: %+v", got)
	}
	if resp.Pidx != "abc123" {
		t.Fatalf("unexpected pidx: %s", resp.Pidx)
	}
}

func TestVerifyPaymentUsesTrimmedPidx(t *testing.T) {
	origFind, origPaid, origPersist := findOrderByPidx, markOrderPaid, persistCart
	defer func() { findOrderByPidx, markOrderPaid, persistCart = origFind, origPaid, origPersist }()

	var gatewayPidx string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		gatewayPidx = payload["pidx"]
		_ = json.NewEncoder(w).Encode(payment.LookupResponse{
			Pidx:        "abc123",
			TotalAmount: 20000,
			Status:      payment.StatusCompleted,
		})
	}))
	defer server.Close()

	orderID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	var lookedUp string
	findOrderByPidx = func(ctx context.Context, db *mongo.Database, pidx string) (models.Order, error) {
		lookedUp = pidx
		return models.Order{ID: orderID, UserID: userID, TotalAmount: 200}, nil
	}
	var paidOrder primitive.ObjectID
	markOrderPaid = func(ctx context.Context, db *mongo.Database, id primitive.ObjectID) error {
		paidOrder = id
		return nil
	}
	var clearedFor primitive.ObjectID
	var cleared []models.CartItem
	persistCart = func(ctx context.Context, db *mongo.Database, id primitive.ObjectID, cart []models.CartItem) error {
		clearedFor = id
		cleared = cart
		return nil
	}

	c, recorder := jsonContext(t, "POST", "/payment/verifypidx", `{"pidx":"  abc123  "}`)
	VerifyPayment(nil, payment.NewClient(server.URL, "secret-key"))(c)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if gatewayPidx != "abc123" {
		t.Fatalf("gateway received pidx %q, want trimmed abc123", gatewayPidx)
	}
	if lookedUp != "abc123" {
		t.Fatalf("order lookup used pidx %q, want the same trimmed value", lookedUp)
	}
	if paidOrder != orderID {
		t.Error("wrong order marked paid")
	}
	if clearedFor != userID || len(cleared) != 0 {
		t.Errorf("expected owner's cart emptied, got %d lines for %s", len(cleared), clearedFor.Hex())
	}
}

func TestVerifyPaymentNonCompletedMakesNoChanges(t *testing.T) {
	origFind, origPaid, origPersist := findOrderByPidx, markOrderPaid, persistCart
	defer func() { findOrderByPidx, markOrderPaid, persistCart = origFind, origPaid, origPersist }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(payment.LookupResponse{Pidx: "abc123", Status: "Pending"})
	}))
	defer server.Close()

	findCalls, paidCalls, cartCalls := 0, 0, 0
	findOrderByPidx = func(ctx context.Context, db *mongo.Database, pidx string) (models.Order, error) {
		findCalls++
		return models.Order{}, nil
	}
	markOrderPaid = func(ctx context.Context, db *mongo.Database, id primitive.ObjectID) error {
		paidCalls++
		return nil
	}
	persistCart = func(ctx context.Context, db *mongo.Database, id primitive.ObjectID, cart []models.CartItem) error {
		cartCalls++
		return nil
	}

	c, recorder := jsonContext(t, "POST", "/payment/verifypidx", `{"pidx":"abc123"}`)
	VerifyPayment(nil, payment.NewClient(server.URL, "secret-key"))(c)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if findCalls != 0 || paidCalls != 0 || cartCalls != 0 {
		t.Fatalf("expected no state changes, got find=%d paid=%d cart=%d", findCalls, paidCalls, cartCalls)
	}
}
