package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftcart/internal/model"
)

const testSecret = "test-channel-secret"

func expectedSignature(uri, body, nonce string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(testSecret + uri + body + nonce))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL:       server.URL,
		ChannelID:     "channel-1",
		ChannelSecret: testSecret,
	}, zerolog.Nop())
	return client, server
}

func TestClient_Request_SignsBody(t *testing.T) {
	var gotURI, gotBody, gotNonce, gotSignature, gotChannel string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotURI = r.URL.RequestURI()
		gotBody = string(body)
		gotNonce = r.Header.Get("X-Pay-Nonce")
		gotSignature = r.Header.Get("X-Pay-Signature")
		gotChannel = r.Header.Get("X-Pay-ChannelId")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"returnCode":"0000","returnMessage":"OK","info":{"transactionId":"txn-1","paymentUrl":{"web":"https://pay.example/web"}}}`))
	})

	resp, err := client.Request(context.Background(), &PaymentRequest{
		Amount:   59800,
		Currency: "USD",
		OrderID:  "order-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/payments/request", gotURI)
	assert.Equal(t, "channel-1", gotChannel)
	assert.NotEmpty(t, gotNonce)
	assert.Equal(t, expectedSignature(gotURI, gotBody, gotNonce), gotSignature)

	assert.Equal(t, "0000", resp.ReturnCode)
	require.NotNil(t, resp.Info)
	assert.Equal(t, "txn-1", resp.Info.TransactionID)
	assert.Equal(t, "https://pay.example/web", resp.Info.PaymentURL.Web)
	assert.Contains(t, string(resp.Raw), `"returnCode":"0000"`)
}

func TestClient_Get_SignsEmptyBodyWithQueryInURI(t *testing.T) {
	var gotURI, gotNonce, gotSignature string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		gotNonce = r.Header.Get("X-Pay-Nonce")
		gotSignature = r.Header.Get("X-Pay-Signature")
		w.Write([]byte(`{"returnCode":"0000","returnMessage":"OK"}`))
	})

	_, err := client.PaymentsByOrder(context.Background(), "order-42")
	require.NoError(t, err)

	// Query parameters are part of the signed URI; the signed body of
	// a GET is the empty string.
	assert.Equal(t, "/v1/payments?orderId=order-42", gotURI)
	assert.Equal(t, expectedSignature(gotURI, "", gotNonce), gotSignature)
}

func TestClient_EndpointPaths(t *testing.T) {
	var gotURI, gotMethod string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		gotMethod = r.Method
		w.Write([]byte(`{"returnCode":"0000","returnMessage":"OK"}`))
	})

	ctx := context.Background()

	_, err := client.Confirm(ctx, "t1", &ConfirmRequest{Amount: 100, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/payments/t1/confirm", gotURI)
	assert.Equal(t, http.MethodPost, gotMethod)

	_, err = client.Capture(ctx, "t1", &ConfirmRequest{Amount: 100, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/payments/authorizations/t1/capture", gotURI)

	_, err = client.Refund(ctx, "t1", &RefundRequest{})
	require.NoError(t, err)
	assert.Equal(t, "/v1/payments/t1/refund", gotURI)

	_, err = client.Void(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "/v1/payments/authorizations/t1/void", gotURI)

	_, err = client.Check(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "/v1/payments/requests/t1/check", gotURI)
	assert.Equal(t, http.MethodGet, gotMethod)
}

func TestClient_Timeout_SurfacesRetryableGatewayError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"returnCode":"0000","returnMessage":"OK"}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Confirm(ctx, "t1", &ConfirmRequest{Amount: 100, Currency: "USD"})
	require.Error(t, err)

	var gwErr *model.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.True(t, gwErr.Retryable)
	assert.Equal(t, "confirm", gwErr.Op)
}

func TestClient_UnparseableResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream error</html>"))
	})

	_, err := client.Void(context.Background(), "t1")
	require.Error(t, err)

	// Garbage from the provider boundary stays in the gateway error
	// taxonomy and is retryable, like a transport failure.
	var gwErr *model.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.True(t, gwErr.Retryable)
	assert.Equal(t, "void", gwErr.Op)
	assert.Contains(t, err.Error(), "failed to parse gateway")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code     string
		expected Outcome
	}{
		{CodeSuccess, OutcomeSuccess},
		{CodeDuplicateCall, OutcomeDuplicate},
		{CodeDuplicateOrder, OutcomeDuplicate},
		{CodeAlreadyRefunded, OutcomeDuplicate},
		{CodeProviderInternal, OutcomeRetryable},
		{"1104", OutcomeRejected},
		{"", OutcomeRejected},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.code))
		})
	}
}

func TestTruncateName(t *testing.T) {
	short := "Espresso Machine"
	assert.Equal(t, short, TruncateName(short))

	long := strings.Repeat("a", MaxProductNameLength+50)
	truncated := TruncateName(long)
	assert.Len(t, truncated, MaxProductNameLength)

	// Multi-byte names are cut on rune boundaries.
	wide := strings.Repeat("商", MaxProductNameLength)
	truncated = TruncateName(wide)
	assert.LessOrEqual(t, len(truncated), MaxProductNameLength)
	assert.True(t, strings.HasPrefix(wide, truncated))
}
