// Package gateway implements the signing client for the external
// payment provider: HMAC-signed requests, per-call timeouts, and the
// return-code policy table.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swiftcart/internal/model"
)

// Authentication headers attached to every provider call.
const (
	headerChannelID = "X-Pay-ChannelId"
	headerNonce     = "X-Pay-Nonce"
	headerSignature = "X-Pay-Signature"
)

// Per-method timeouts reflecting the provider's documented SLAs.
const (
	requestTimeout = 20 * time.Second
	confirmTimeout = 40 * time.Second
	captureTimeout = 60 * time.Second
	refundTimeout  = 40 * time.Second
	voidTimeout    = 20 * time.Second
	queryTimeout   = 20 * time.Second
)

// Config holds the provider credentials and endpoint.
type Config struct {
	BaseURL       string
	ChannelID     string
	ChannelSecret string
}

// Client is the authenticated HTTP client for the payment provider.
// It carries no business logic: callers interpret return codes via
// Classify.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new signing client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		cfg: cfg,
		// Per-call deadlines come from the request context; the
		// transport itself carries no overall timeout.
		httpClient: &http.Client{},
		logger:     logger.With().Str("component", "gateway-client").Logger(),
	}
}

// Request opens a new gateway transaction for an order.
func (c *Client) Request(ctx context.Context, req *PaymentRequest) (*Response, error) {
	return c.post(ctx, "request", "/v1/payments/request", req, requestTimeout)
}

// Confirm completes a payment after the payer approved it.
func (c *Client) Confirm(ctx context.Context, transactionID string, req *ConfirmRequest) (*Response, error) {
	path := fmt.Sprintf("/v1/payments/%s/confirm", transactionID)
	return c.post(ctx, "confirm", path, req, confirmTimeout)
}

// Capture converts an authorization hold into a charge.
func (c *Client) Capture(ctx context.Context, transactionID string, req *ConfirmRequest) (*Response, error) {
	path := fmt.Sprintf("/v1/payments/authorizations/%s/capture", transactionID)
	return c.post(ctx, "capture", path, req, captureTimeout)
}

// Refund refunds a captured payment, fully or partially.
func (c *Client) Refund(ctx context.Context, transactionID string, req *RefundRequest) (*Response, error) {
	path := fmt.Sprintf("/v1/payments/%s/refund", transactionID)
	return c.post(ctx, "refund", path, req, refundTimeout)
}

// Void cancels an authorization hold before capture.
func (c *Client) Void(ctx context.Context, transactionID string) (*Response, error) {
	path := fmt.Sprintf("/v1/payments/authorizations/%s/void", transactionID)
	return c.post(ctx, "void", path, nil, voidTimeout)
}

// Check queries the status of a payment request.
func (c *Client) Check(ctx context.Context, transactionID string) (*Response, error) {
	path := fmt.Sprintf("/v1/payments/requests/%s/check", transactionID)
	return c.get(ctx, "check", path, nil, queryTimeout)
}

// PaymentsByOrder queries payment details by order id.
func (c *Client) PaymentsByOrder(ctx context.Context, orderID string) (*Response, error) {
	query := url.Values{}
	query.Set("orderId", orderID)
	return c.get(ctx, "payments", "/v1/payments", query, queryTimeout)
}

func (c *Client) post(ctx context.Context, op, path string, body any, timeout time.Duration) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", op, err)
		}
	}
	return c.do(ctx, op, http.MethodPost, path, payload, timeout)
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, timeout time.Duration) (*Response, error) {
	// Query parameters become part of the signed URI; the signed body
	// of a GET is always the empty string.
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.do(ctx, op, http.MethodGet, path, nil, timeout)
}

func (c *Client) do(ctx context.Context, op, method, uri string, body []byte, timeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	nonce := uuid.NewString()
	signature := c.sign(uri, string(body), nonce)

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+uri, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerChannelID, c.cfg.ChannelID)
	req.Header.Set(headerNonce, nonce)
	req.Header.Set(headerSignature, signature)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("op", op).
			Str("uri", uri).
			Dur("elapsed", time.Since(start)).
			Msg("gateway call failed")
		return nil, &model.GatewayError{Op: op, Retryable: true, Err: classifyTransport(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.GatewayError{Op: op, Retryable: true, Err: err}
	}

	var parsed Response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.logger.Error().
			Err(err).
			Str("op", op).
			Int("status", resp.StatusCode).
			Str("body", string(raw)).
			Msg("gateway returned unparseable response")
		// An unparseable body (a proxy's HTML error page, say) is a
		// provider-boundary failure like a transport error: no
		// financial state has been confirmed either way.
		return nil, &model.GatewayError{
			Op:        op,
			Retryable: true,
			Err:       fmt.Errorf("failed to parse gateway %s response: %w", op, err),
		}
	}
	parsed.Raw = raw

	c.logger.Info().
		Str("op", op).
		Str("return_code", parsed.ReturnCode).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("gateway call completed")

	return &parsed, nil
}

// sign computes the request signature: base64 of an HMAC-SHA256 over
// secret ‖ uri ‖ body ‖ nonce, keyed with the channel secret.
func (c *Client) sign(uri, body, nonce string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.ChannelSecret))
	mac.Write([]byte(c.cfg.ChannelSecret + uri + body + nonce))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// classifyTransport normalises timeout errors so callers can report
// them distinctly from other transport failures.
func classifyTransport(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("gateway timeout: %w", err)
	}
	return err
}
