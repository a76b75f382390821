// Package payment is the HTTP client for the Khalti e-payment gateway.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusCompleted is the lookup status Khalti reports for a settled payment.
const StatusCompleted = "Completed"

// GatewayError carries the provider's HTTP status and response body so the
// handler boundary can propagate them.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (%d): %s", e.StatusCode, e.Body)
}

type Client struct {
	BaseURL   string
	SecretKey string
	HTTP      *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

// InitiateRequest creates a payment intent. Amount is in minor currency
// units (paisa).
type InitiateRequest struct {
	ReturnURL         string `json:"return_url"`
	WebsiteURL        string `json:"website_url"`
	PurchaseOrderID   string `json:"purchase_order_id"`
	PurchaseOrderName string `json:"purchase_order_name"`
	Amount            int64  `json:"amount"`
}

type InitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}

type LookupResponse struct {
	Pidx          string `json:"pidx"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Refunded      bool   `json:"refunded"`
}

// Initiate creates a payment intent and returns the gateway's pidx and
// redirect URL.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	var out InitiateResponse
	if err := c.post(ctx, "/epayment/initiate/", req, &out); err != nil {
		return InitiateResponse{}, err
	}
	if out.PaymentURL == "" {
		return InitiateResponse{}, fmt.Errorf("gateway returned empty payment URL")
	}
	return out, nil
}

// Lookup fetches the current state of a previously initiated payment.
func (c *Client) Lookup(ctx context.Context, pidx string) (LookupResponse, error) {
	var out LookupResponse
	payload := map[string]string{"pidx": pidx}
	if err := c.post(ctx, "/epayment/lookup/", payload, &out); err != nil {
		return LookupResponse{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Key "+c.SecretKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &GatewayError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return nil
}
