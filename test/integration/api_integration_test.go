package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftcart/internal/audit"
	"swiftcart/internal/gateway"
	"swiftcart/internal/handler"
	"swiftcart/internal/model"
	"swiftcart/internal/repository"
	"swiftcart/internal/router"
	"swiftcart/internal/service"
)

const testAPIKey = "integration-test-key"

// fakeProvider is a stand-in for the payment provider. It validates
// the auth headers are present and answers the happy path.
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Pay-ChannelId") == "" || r.Header.Get("X-Pay-Signature") == "" {
			t.Errorf("provider call without auth headers: %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/v1/payments/request":
			fmt.Fprint(w, `{
				"returnCode": "0000",
				"returnMessage": "Success",
				"info": {
					"transactionId": "2023112201",
					"paymentUrl": {"web": "https://pay.example.com/2023112201"}
				}
			}`)
		case strings.HasSuffix(r.URL.Path, "/confirm"):
			fmt.Fprint(w, `{
				"returnCode": "0000",
				"returnMessage": "Success",
				"info": {"transactionId": "2023112201", "payStatus": "CAPTURE"}
			}`)
		case strings.HasSuffix(r.URL.Path, "/refund"):
			fmt.Fprint(w, `{
				"returnCode": "0000",
				"returnMessage": "Success",
				"info": {"refundTransactionId": "2023112290"}
			}`)
		default:
			t.Errorf("unexpected provider call: %s", r.URL.Path)
			fmt.Fprint(w, `{"returnCode": "9000", "returnMessage": "Internal error"}`)
		}
	}))
}

func setupAPI(t *testing.T, db *TestDB, providerURL string) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	cartRepo := repository.NewCartRepository(db.Pool, logger)
	productRepo := repository.NewProductRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:       providerURL,
		ChannelID:     "test-channel",
		ChannelSecret: "test-secret",
	}, logger)

	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, logger)
	paymentService := service.NewPaymentService(orderRepo, gatewayClient, audit.NewNopArchiver(), service.PaymentConfig{
		Currency:          "USD",
		MinorUnitExponent: 2,
		ConfirmURL:        "http://localhost:8080/api/payments/confirm",
		CancelURL:         "http://localhost:8080/api/payments/cancel",
	}, logger)

	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)

	return router.New(cartHandler, orderHandler, paymentHandler, testAPIKey, logger)
}

func doRequest(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAPI_FullPaymentFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	SeedProducts(t, db.Pool)

	provider := fakeProvider(t)
	defer provider.Close()

	api := setupAPI(t, db, provider.URL)
	userID := uuid.New().String()

	// Build a cart
	w := doRequest(t, api, http.MethodPost, "/api/cart/items", userID,
		&model.AddItemRequest{ProductID: "P001", Quantity: 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, api, http.MethodPost, "/api/cart/items", userID,
		&model.AddItemRequest{ProductID: "P002", Quantity: 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Checkout
	w = doRequest(t, api, http.MethodPost, "/api/checkout", userID, &model.CheckoutRequest{})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order model.OrderResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
	assert.Equal(t, model.StatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("627.97")),
		"got total %s", order.TotalAmount)

	// Cart is now empty
	w = doRequest(t, api, http.MethodGet, "/api/cart", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cart model.CartResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
	assert.Empty(t, cart.Items)

	// Initiate payment
	w = doRequest(t, api, http.MethodPost, "/api/orders/"+order.ID.String()+"/payment", userID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var initResp model.InitiatePaymentResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&initResp))
	assert.Equal(t, "2023112201", initResp.TransactionID)
	assert.NotEmpty(t, initResp.PaymentURL)

	// The order is still PENDING, so re-initiation is allowed
	w = doRequest(t, api, http.MethodPost, "/api/orders/"+order.ID.String()+"/payment", userID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Provider redirects the payer back; no API key on this callback
	confirmPath := "/api/payments/confirm?orderId=" + order.ID.String() + "&transactionId=2023112201"
	req := httptest.NewRequest(http.MethodGet, confirmPath, nil)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Order is PAID
	w = doRequest(t, api, http.MethodGet, "/api/orders/"+order.ID.String(), userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var paid model.OrderResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&paid))
	assert.Equal(t, model.StatusPaid, paid.Status)

	// Replayed callback is harmless
	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, confirmPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Partial refund
	amount := decimal.RequireFromString("299.00")
	w = doRequest(t, api, http.MethodPost, "/api/orders/"+order.ID.String()+"/refund", userID,
		&model.RefundRequest{Amount: &amount})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refund model.RefundInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&refund))
	assert.Equal(t, model.StatusPartiallyRefunded, refund.Status)
	assert.Equal(t, "2023112290", refund.RefundTransactionID)

	// A second full refund is refused: the order left PAID
	w = doRequest(t, api, http.MethodPost, "/api/orders/"+order.ID.String()+"/refund", userID, nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestAPI_AuthRequired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	provider := fakeProvider(t)
	defer provider.Close()

	api := setupAPI(t, db, provider.URL)

	// No API key
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-User-ID", uuid.New().String())
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// API key but no user identity
	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w = httptest.NewRecorder()
	api.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Health needs neither
	w = httptest.NewRecorder()
	api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_CheckoutEmptyCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	SeedProducts(t, db.Pool)

	provider := fakeProvider(t)
	defer provider.Close()

	api := setupAPI(t, db, provider.URL)

	w := doRequest(t, api, http.MethodPost, "/api/checkout", uuid.New().String(), &model.CheckoutRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var errResp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, model.ErrCodeEmptyCart, errResp.Error)
}
