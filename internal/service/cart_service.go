package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swiftcart/internal/model"
	"swiftcart/internal/repository"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart returns the user's cart, creating it on first access.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return s.cartResponse(ctx, cart)
}

// AddItem adds a product to the cart, incrementing the quantity when
// the product is already present. Stock and availability are checked
// here as an early signal only; checkout re-validates against the
// then-current state.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) (*model.CartResponse, error) {
	if req == nil || req.ProductID == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Product ID is required")
	}
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Str("product_id", req.ProductID).Msg("product not found")
		return nil, model.ErrProductNotFound
	}
	if !product.IsActive {
		return nil, &model.ProductUnavailableError{ProductID: product.ID, ProductName: product.Name}
	}
	if req.Quantity > product.Stock {
		s.logger.Debug().
			Str("product_id", product.ID).
			Int("requested", req.Quantity).
			Int("stock", product.Stock).
			Msg("add to cart exceeds current stock")
		return nil, &model.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   req.Quantity,
			Remaining:   product.Stock,
		}
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.UpsertItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return s.cartResponse(ctx, cart)
}

// UpdateItemQuantity sets the quantity of a cart item.
func (s *cartService) UpdateItemQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}

	return s.cartResponse(ctx, cart)
}

// RemoveItem removes a product from the cart.
func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}

	return s.cartResponse(ctx, cart)
}

func (s *cartService) cartResponse(ctx context.Context, cart *model.Cart) (*model.CartResponse, error) {
	items, err := s.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	return &model.CartResponse{
		ID:    cart.ID,
		Items: items,
	}, nil
}
