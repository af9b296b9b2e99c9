package router

import (
	"net/http"

	"github.com/rs/zerolog"

	"swiftcart/internal/handler"
	"swiftcart/internal/middleware"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Cart routes
	mux.HandleFunc("GET /api/cart", cartHandler.Get)
	mux.HandleFunc("POST /api/cart/items", cartHandler.AddItem)
	mux.HandleFunc("PUT /api/cart/items/{productID}", cartHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", cartHandler.RemoveItem)

	// Order routes
	mux.HandleFunc("POST /api/checkout", orderHandler.Checkout)
	mux.HandleFunc("GET /api/orders/{id}", orderHandler.GetByID)

	// Payment routes. The confirm callback is the provider's redirect
	// target and accepts GET.
	mux.HandleFunc("POST /api/orders/{id}/payment", paymentHandler.Initiate)
	mux.HandleFunc("POST /api/orders/{id}/capture", paymentHandler.Capture)
	mux.HandleFunc("POST /api/orders/{id}/refund", paymentHandler.Refund)
	mux.HandleFunc("POST /api/orders/{id}/void", paymentHandler.Void)
	mux.HandleFunc("GET /api/payments/confirm", paymentHandler.Confirm)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
