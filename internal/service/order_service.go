package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swiftcart/internal/model"
	"swiftcart/internal/money"
	"swiftcart/internal/repository"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder converts the user's cart into an order. The whole
// operation runs in one transaction: stock is re-validated against
// locked product rows, prices are snapshotted, stock is decremented,
// the order is persisted and the cart is cleared. Any failure rolls
// everything back.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Checkout request is required")
	}
	if userID == uuid.Nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "User ID is required")
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Stock and availability checks run against rows locked in this
	// transaction, not against whatever was seen when the items were
	// added to the cart.
	lines, err := s.cartRepo.LockLines(ctx, tx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	if len(lines) == 0 {
		err = model.ErrEmptyCart
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:           uuid.New(),
		UserID:       userID,
		Status:       model.StatusPending,
		ShippingInfo: req.ShippingInfo,
		AutoCapture:  true,
		CreatedAt:    now,
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		if !line.IsActive {
			err = &model.ProductUnavailableError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
			}
			return nil, err
		}

		if line.Quantity > line.Stock {
			s.logger.Warn().
				Str("product_id", line.ProductID).
				Int("requested", line.Quantity).
				Int("stock", line.Stock).
				Msg("insufficient stock at checkout")
			err = &model.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Requested:   line.Quantity,
				Remaining:   line.Stock,
			}
			return nil, err
		}

		// Snapshot the current unit price; the order line keeps this
		// value whatever happens to the catalogue price later.
		items = append(items, model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
		order.TotalAmount = order.TotalAmount.Add(money.LineTotal(line.UnitPrice, line.Quantity))
	}

	for _, line := range lines {
		var ok bool
		ok, err = s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		if !ok {
			err = &model.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Requested:   line.Quantity,
				Remaining:   line.Stock,
			}
			return nil, err
		}
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = s.cartRepo.ClearItems(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Str("total_amount", order.TotalAmount.String()).
		Int("item_count", len(items)).
		Msg("order created successfully")

	return orderResponse(order, items), nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil
	}

	items, err := s.orderRepo.GetItems(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to load order items")
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	return orderResponse(order, items), nil
}
