package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"swiftcart/internal/audit"
	"swiftcart/internal/gateway"
	"swiftcart/internal/model"
	"swiftcart/internal/money"
	"swiftcart/internal/repository"
)

// PaymentConfig holds the payment service's provider-facing settings.
type PaymentConfig struct {
	Currency          string
	MinorUnitExponent int
	ConfirmURL        string
	CancelURL         string
}

// paymentService implements PaymentService. Status changes go through
// compare-and-swap updates on the persisted order status, so two
// racing transitions on the same order cannot both take effect.
type paymentService struct {
	orderRepo repository.OrderRepository
	gateway   PaymentGateway
	archiver  audit.Archiver
	cfg       PaymentConfig
	logger    zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	gw PaymentGateway,
	archiver audit.Archiver,
	cfg PaymentConfig,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo: orderRepo,
		gateway:   gw,
		archiver:  archiver,
		cfg:       cfg,
		logger:    logger.With().Str("service", "payment").Logger(),
	}
}

// Initiate opens a gateway transaction for a PENDING order. The
// payable amount is recomputed from the order's line items; a
// client-supplied amount is never used.
func (s *paymentService) Initiate(ctx context.Context, orderID, userID uuid.UUID, req *model.InitiatePaymentRequest) (*model.InitiatePaymentResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}

	if order.Status != model.StatusPending {
		return nil, &model.ConflictError{
			OrderID:  orderID.String(),
			Current:  order.Status,
			Required: model.StatusPending,
			Op:       "initiate",
		}
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	payable := s.reconcile(order, items)

	capture := true
	if req != nil && req.Capture != nil {
		capture = *req.Capture
	}

	products := make([]gateway.PackageProduct, len(items))
	for i, item := range items {
		products[i] = gateway.PackageProduct{
			ID:       item.ProductID,
			Name:     gateway.TruncateName(item.ProductName),
			Quantity: item.Quantity,
			Price:    money.MinorUnits(item.UnitPrice, s.cfg.MinorUnitExponent),
		}
	}

	amount := money.MinorUnits(payable, s.cfg.MinorUnitExponent)
	gwReq := &gateway.PaymentRequest{
		Amount:   amount,
		Currency: s.cfg.Currency,
		OrderID:  orderID.String(),
		Packages: []gateway.Package{{
			ID:       orderID.String(),
			Amount:   amount,
			Name:     "Order " + orderID.String(),
			Products: products,
		}},
		RedirectURLs: gateway.RedirectURLs{
			ConfirmURL: s.cfg.ConfirmURL,
			CancelURL:  s.cfg.CancelURL,
		},
		Options: &gateway.Options{
			Payment: gateway.PaymentOptions{Capture: capture},
		},
	}

	resp, err := s.gateway.Request(ctx, gwReq)
	if err != nil {
		return nil, err
	}
	s.archiver.Archive(orderID.String(), "request", resp.Raw)

	switch gateway.Classify(resp.ReturnCode) {
	case gateway.OutcomeSuccess, gateway.OutcomeDuplicate:
		// Fall through to persist the transaction.
	case gateway.OutcomeRetryable:
		return nil, s.rejected("request", resp, true)
	default:
		return nil, s.rejected("request", resp, false)
	}

	if resp.Info == nil || resp.Info.TransactionID == "" {
		s.logger.Error().
			Str("order_id", orderID.String()).
			Str("body", string(resp.Raw)).
			Msg("gateway request succeeded without transaction id")
		return nil, fmt.Errorf("gateway request response missing transaction id")
	}

	if err := s.orderRepo.SetTransaction(ctx, orderID, resp.Info.TransactionID, capture, resp.Raw); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("transaction_id", resp.Info.TransactionID).
		Int64("amount", amount).
		Bool("capture", capture).
		Msg("payment initiated")

	return &model.InitiatePaymentResponse{
		TransactionID: resp.Info.TransactionID,
		PaymentURL:    resp.Info.PaymentURL.Web,
	}, nil
}

// Confirm completes a payment after the provider redirect. Already
// PAID orders succeed immediately with no gateway call. A supplied
// transaction id that conflicts with the stored one overwrites it:
// once the callback is authenticated, the provider's identifier is
// ground truth.
func (s *paymentService) Confirm(ctx context.Context, orderID uuid.UUID, transactionID string) error {
	if transactionID == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Transaction ID is required")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	if order.Status == model.StatusPaid {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Msg("confirm on already paid order, nothing to do")
		return nil
	}

	if order.Status != model.StatusPending && order.Status != model.StatusAuthorized {
		return &model.ConflictError{
			OrderID:  orderID.String(),
			Current:  order.Status,
			Required: model.StatusPending,
			Op:       "confirm",
		}
	}

	if order.TransactionID != nil && *order.TransactionID != transactionID {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("stored_transaction_id", *order.TransactionID).
			Str("callback_transaction_id", transactionID).
			Msg("transaction id mismatch on confirm, overwriting stored id")
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	amount := money.MinorUnits(s.reconcile(order, items), s.cfg.MinorUnitExponent)

	resp, err := s.gateway.Confirm(ctx, transactionID, &gateway.ConfirmRequest{
		Amount:   amount,
		Currency: s.cfg.Currency,
	})
	if err != nil {
		// The order keeps its prior status; a retry that hits the
		// provider's duplicate code still converges to PAID.
		return err
	}
	s.archiver.Archive(orderID.String(), "confirm", resp.Raw)

	switch gateway.Classify(resp.ReturnCode) {
	case gateway.OutcomeSuccess:
	case gateway.OutcomeDuplicate:
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("return_code", resp.ReturnCode).
			Msg("duplicate confirm treated as success")
	case gateway.OutcomeRetryable:
		return s.rejected("confirm", resp, true)
	default:
		return s.rejected("confirm", resp, false)
	}

	// With auto-capture off the confirm only ever opens a hold;
	// charging is capture's job. A replayed callback on an order that
	// already reached AUTHORIZED re-affirms the hold rather than
	// promoting it to PAID.
	target := model.StatusPaid
	if !order.AutoCapture {
		target = model.StatusAuthorized
	}

	from := []model.OrderStatus{model.StatusPending, model.StatusAuthorized}
	ok, err := s.orderRepo.UpdatePaymentState(ctx, orderID, from, target, &transactionID, resp.Raw)
	if err != nil {
		return err
	}
	if !ok {
		return s.converged(ctx, orderID, target, "confirm")
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("transaction_id", transactionID).
		Str("status", string(target)).
		Msg("payment confirmed")

	return nil
}

// Capture charges an AUTHORIZED order. Any other status is a guard
// violation and no gateway call is made.
func (s *paymentService) Capture(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.Status != model.StatusAuthorized {
		return nil, &model.ConflictError{
			OrderID:  orderID.String(),
			Current:  order.Status,
			Required: model.StatusAuthorized,
			Op:       "capture",
		}
	}
	if order.TransactionID == nil {
		return nil, model.NewDomainError(model.ErrCodeConflict, "Order has no gateway transaction")
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	amount := money.MinorUnits(s.reconcile(order, items), s.cfg.MinorUnitExponent)

	resp, err := s.gateway.Capture(ctx, *order.TransactionID, &gateway.ConfirmRequest{
		Amount:   amount,
		Currency: s.cfg.Currency,
	})
	if err != nil {
		return nil, err
	}
	s.archiver.Archive(orderID.String(), "capture", resp.Raw)

	switch gateway.Classify(resp.ReturnCode) {
	case gateway.OutcomeSuccess:
	case gateway.OutcomeDuplicate:
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("return_code", resp.ReturnCode).
			Msg("duplicate capture treated as success")
	case gateway.OutcomeRetryable:
		return nil, s.rejected("capture", resp, true)
	default:
		return nil, s.rejected("capture", resp, false)
	}

	from := []model.OrderStatus{model.StatusAuthorized}
	ok, err := s.orderRepo.UpdatePaymentState(ctx, orderID, from, model.StatusPaid, nil, resp.Raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		if cErr := s.converged(ctx, orderID, model.StatusPaid, "capture"); cErr != nil {
			return nil, cErr
		}
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("transaction_id", *order.TransactionID).
		Msg("payment captured")

	order.Status = model.StatusPaid
	return orderResponse(order, items), nil
}

// Refund refunds a PAID order. A nil amount refunds the full total; a
// partial amount greater than the total is rejected before any
// gateway call.
func (s *paymentService) Refund(ctx context.Context, orderID uuid.UUID, amount *decimal.Decimal) (*model.RefundInfo, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.Status != model.StatusPaid {
		return nil, &model.ConflictError{
			OrderID:  orderID.String(),
			Current:  order.Status,
			Required: model.StatusPaid,
			Op:       "refund",
		}
	}
	if order.TransactionID == nil {
		return nil, model.NewDomainError(model.ErrCodeConflict, "Order has no gateway transaction")
	}

	refundAmount := order.TotalAmount
	if amount != nil {
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, model.NewDomainError(model.ErrCodeValidation, "Refund amount must be positive")
		}
		if amount.GreaterThan(order.TotalAmount) {
			return nil, model.NewDomainError(model.ErrCodeValidation,
				fmt.Sprintf("Refund amount %s exceeds order total %s", amount, order.TotalAmount))
		}
		refundAmount = *amount
	}

	gwReq := &gateway.RefundRequest{}
	if amount != nil {
		minor := money.MinorUnits(refundAmount, s.cfg.MinorUnitExponent)
		gwReq.RefundAmount = &minor
	}

	resp, err := s.gateway.Refund(ctx, *order.TransactionID, gwReq)
	if err != nil {
		return nil, err
	}
	s.archiver.Archive(orderID.String(), "refund", resp.Raw)

	switch gateway.Classify(resp.ReturnCode) {
	case gateway.OutcomeSuccess:
	case gateway.OutcomeDuplicate:
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("return_code", resp.ReturnCode).
			Msg("already refunded, treated as success")
	case gateway.OutcomeRetryable:
		return nil, s.rejected("refund", resp, true)
	default:
		return nil, s.rejected("refund", resp, false)
	}

	target := model.StatusPartiallyRefunded
	if refundAmount.Equal(order.TotalAmount) {
		target = model.StatusRefunded
	}

	from := []model.OrderStatus{model.StatusPaid}
	ok, err := s.orderRepo.UpdatePaymentState(ctx, orderID, from, target, nil, resp.Raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		if cErr := s.converged(ctx, orderID, target, "refund"); cErr != nil {
			return nil, cErr
		}
	}

	refundTxnID := ""
	if resp.Info != nil {
		refundTxnID = resp.Info.RefundTransactionID
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("refund_transaction_id", refundTxnID).
		Str("refunded_amount", refundAmount.String()).
		Str("status", string(target)).
		Msg("payment refunded")

	return &model.RefundInfo{
		OrderID:             orderID,
		RefundTransactionID: refundTxnID,
		RefundedAmount:      refundAmount,
		Status:              target,
	}, nil
}

// Void cancels an AUTHORIZED hold before capture.
func (s *paymentService) Void(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	if order.Status != model.StatusAuthorized {
		return &model.ConflictError{
			OrderID:  orderID.String(),
			Current:  order.Status,
			Required: model.StatusAuthorized,
			Op:       "void",
		}
	}
	if order.TransactionID == nil {
		return model.NewDomainError(model.ErrCodeConflict, "Order has no gateway transaction")
	}

	resp, err := s.gateway.Void(ctx, *order.TransactionID)
	if err != nil {
		return err
	}
	s.archiver.Archive(orderID.String(), "void", resp.Raw)

	switch gateway.Classify(resp.ReturnCode) {
	case gateway.OutcomeSuccess, gateway.OutcomeDuplicate:
	case gateway.OutcomeRetryable:
		return s.rejected("void", resp, true)
	default:
		return s.rejected("void", resp, false)
	}

	from := []model.OrderStatus{model.StatusAuthorized}
	ok, err := s.orderRepo.UpdatePaymentState(ctx, orderID, from, model.StatusCancelled, nil, resp.Raw)
	if err != nil {
		return err
	}
	if !ok {
		return s.converged(ctx, orderID, model.StatusCancelled, "void")
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("transaction_id", *order.TransactionID).
		Msg("authorization voided")

	return nil
}

// reconcile recomputes the payable amount from line items and logs a
// drift from the persisted total. Drift signals an upstream bug or
// tampering; it is recorded, not fatal, and the recomputed amount is
// what goes to the gateway.
func (s *paymentService) reconcile(order *model.Order, items []model.OrderItem) decimal.Decimal {
	payable := money.Total(items)
	if !payable.Equal(order.TotalAmount) {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("code", model.ErrCodeAmountMismatch).
			Str("persisted_total", order.TotalAmount.String()).
			Str("recomputed_total", payable.String()).
			Msg("persisted total differs from recomputed line item total")
	}
	return payable
}

// converged handles a lost status CAS: when a concurrent transition
// already moved the order to the target status the operation is
// complete; anything else is a genuine conflict.
func (s *paymentService) converged(ctx context.Context, orderID uuid.UUID, target model.OrderStatus, op string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to reload order: %w", err)
	}
	if order != nil && order.Status == target {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("op", op).
			Str("status", string(target)).
			Msg("concurrent transition already reached target status")
		return nil
	}

	current := model.OrderStatus("")
	if order != nil {
		current = order.Status
	}
	return &model.ConflictError{
		OrderID:  orderID.String(),
		Current:  current,
		Required: target,
		Op:       op,
	}
}

// rejected logs a provider failure with its raw response and wraps it
// in a GatewayError.
func (s *paymentService) rejected(op string, resp *gateway.Response, retryable bool) error {
	s.logger.Error().
		Str("op", op).
		Str("return_code", resp.ReturnCode).
		Str("return_message", resp.ReturnMessage).
		Str("body", string(resp.Raw)).
		Msg("gateway rejected operation")

	return &model.GatewayError{
		Op:         op,
		ReturnCode: resp.ReturnCode,
		Message:    resp.ReturnMessage,
		Retryable:  retryable,
	}
}
