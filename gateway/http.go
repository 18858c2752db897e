/*
http.go - HTTP implementation of the gateway Client

PURPOSE:
  Talks to the provider's REST API with basic auth (key id / key secret),
  the same credential pair used for signature verification. Only the order
  creation call is implemented; authorization happens client-side and the
  verification step is pure HMAC, no round-trip.

FAILURE MAPPING:
  - transport error / timeout        -> *Error{Status: 0}
  - non-2xx response from provider   -> *Error{Status: code}
  Both unwrap to ErrUpstream.
*/
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// HTTPClient implements Client against the provider's REST API.
type HTTPClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
	log       *zap.SugaredLogger
}

// NewHTTPClient creates a client for the given provider endpoint and
// credential pair.
func NewHTTPClient(baseURL, keyID, keySecret string, log *zap.SugaredLogger) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: defaultTimeout},
		log:       log,
	}
}

type orderPayload struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// CreateOrder opens an authorization order with the provider.
func (c *HTTPClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	body, err := json.Marshal(orderPayload{
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, &Error{Op: "create_order", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: "create_order", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warnw("gateway unreachable", "op", "create_order", "error", err)
		return nil, &Error{Op: "create_order", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warnw("gateway rejected order", "status", resp.StatusCode, "body", string(data))
		return nil, &Error{
			Op:     "create_order",
			Status: resp.StatusCode,
			Err:    fmt.Errorf("provider rejected order: %s", string(data)),
		}
	}

	var wire struct {
		ID        string `json:"id"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Receipt   string `json:"receipt"`
		Status    string `json:"status"`
		CreatedAt int64  `json:"created_at"` // unix seconds, provider convention
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &Error{Op: "create_order", Status: resp.StatusCode, Err: fmt.Errorf("malformed order response: %w", err)}
	}

	return &Order{
		ID:          wire.ID,
		AmountMinor: wire.Amount,
		Currency:    wire.Currency,
		Receipt:     wire.Receipt,
		Status:      wire.Status,
		CreatedAt:   time.Unix(wire.CreatedAt, 0).UTC(),
	}, nil
}

// VerifySignature checks the provider-issued signature with the shared
// key secret.
func (c *HTTPClient) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}
