package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInitiateSendsAuthAndParsesResponse(t *testing.T) {
	var gotAuth string
	var gotReq InitiateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/epayment/initiate/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(InitiateResponse{
			Pidx:       "abc123",
			PaymentURL: "https://pay.example/abc123",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	resp, err := client.Initiate(context.Background(), InitiateRequest{
		PurchaseOrderID: "order-1",
		Amount:          20000,
	})
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}
	if gotAuth != "Key secret-key" {
		t.Fatalf("expected Key auth header, got %q", gotAuth)
	}
	if gotReq.Amount != 20000 {
		t.Fatalf("expected amount 20000 forwarded, got %d", gotReq.Amount)
	}
	if resp.Pidx != "abc123" || resp.PaymentURL != "https://pay.example/abc123" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestInitiateRejectsEmptyPaymentURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(InitiateResponse{Pidx: "abc123"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	if _, err := client.Initiate(context.Background(), InitiateRequest{}); err == nil {
		t.Fatal("expected error for empty payment URL")
	}
}

func TestLookupReturnsGatewayErrorWithStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid token."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.Lookup(context.Background(), "abc123")
	if err == nil {
		t.Fatal("expected gateway error")
	}

	var gatewayErr *GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected *GatewayError, got %T", err)
	}
	if gatewayErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", gatewayErr.StatusCode)
	}
	if gatewayErr.Body != `{"detail":"Invalid token."}` {
		t.Fatalf("unexpected body: %s", gatewayErr.Body)
	}
}

func TestLookupParsesCompletedTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["pidx"] != "abc123" {
			t.Errorf("expected pidx abc123, got %q", payload["pidx"])
		}
		_ = json.NewEncoder(w).Encode(LookupResponse{
			Pidx:        "abc123",
			TotalAmount: 20000,
			Status:      StatusCompleted,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	resp, err := client.Lookup(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if resp.Status != StatusCompleted || resp.TotalAmount != 20000 {
		t.Fatalf("unexpected lookup response: %+v", resp)
	}
}
