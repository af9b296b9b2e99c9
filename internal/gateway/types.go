package gateway

import "encoding/json"

// MaxProductNameLength is the provider's field-length limit for
// per-item names; longer names are truncated before sending.
const MaxProductNameLength = 255

// PaymentRequest is the body of POST /v1/payments/request.
type PaymentRequest struct {
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	OrderID      string       `json:"orderId"`
	Packages     []Package    `json:"packages"`
	RedirectURLs RedirectURLs `json:"redirectUrls"`
	Options      *Options     `json:"options,omitempty"`
}

// Package is an itemized group within a payment request.
type Package struct {
	ID       string           `json:"id"`
	Amount   int64            `json:"amount"`
	Name     string           `json:"name"`
	Products []PackageProduct `json:"products"`
}

// PackageProduct is a single product line in a package.
type PackageProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// RedirectURLs are the provider's post-payment redirect targets.
type RedirectURLs struct {
	ConfirmURL string `json:"confirmUrl"`
	CancelURL  string `json:"cancelUrl"`
}

// Options carry per-transaction payment options.
type Options struct {
	Payment PaymentOptions `json:"payment"`
}

// PaymentOptions control the authorization/capture behaviour.
type PaymentOptions struct {
	// Capture false opens an authorization hold; funds are charged by
	// a later capture call.
	Capture bool `json:"capture"`
}

// ConfirmRequest is the body of confirm and capture calls.
type ConfirmRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// RefundRequest is the body of a refund call. A nil RefundAmount
// refunds the full transaction.
type RefundRequest struct {
	RefundAmount *int64 `json:"refundAmount,omitempty"`
}

// Response is the provider's common response envelope. Raw keeps the
// unparsed payload for persistence and audit.
type Response struct {
	ReturnCode    string `json:"returnCode"`
	ReturnMessage string `json:"returnMessage"`
	Info          *Info  `json:"info,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Info is the payload of a successful provider response.
type Info struct {
	TransactionID       string     `json:"transactionId,omitempty"`
	RefundTransactionID string     `json:"refundTransactionId,omitempty"`
	PaymentURL          PaymentURL `json:"paymentUrl,omitempty"`
	PayStatus           string     `json:"payStatus,omitempty"`
}

// PaymentURL carries the provider's redirect URLs for the payer.
type PaymentURL struct {
	Web string `json:"web,omitempty"`
	App string `json:"app,omitempty"`
}

// TruncateName shortens a product name to the provider's field-length
// limit, safe on multi-byte names.
func TruncateName(name string) string {
	if len(name) <= MaxProductNameLength {
		return name
	}
	runes := []rune(name)
	for len(string(runes)) > MaxProductNameLength {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
