package app

import (
	"context"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/clock"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
	"github.com/google/uuid"
)

type CartRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	FindCartByUser(ctx context.Context, userID string) (*domain.Cart, error)
	CreateCart(ctx context.Context, cart domain.Cart) error
	GetCartLines(ctx context.Context, cartID string) ([]domain.CartLine, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	FindCartItem(ctx context.Context, cartID, productID string) (*domain.CartItem, error)
	InsertCartItem(ctx context.Context, item domain.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	DeleteCartItem(ctx context.Context, cartID, itemID string) error
}

// CartService manages the user's active cart. Cart contents are
// advisory: stock is only checked loosely here, the binding capacity
// check happens at checkout.
type CartService struct {
	repo  CartRepository
	clock clock.Clock
}

func NewCartService(repo CartRepository, clk clock.Clock) *CartService {
	return &CartService{
		repo:  repo,
		clock: clk,
	}
}

// CartView is the cart with its lines, as served to clients.
type CartView struct {
	Cart  domain.Cart
	Lines []domain.CartLine
}

// GetCart returns the user's active cart, creating one if needed.
func (s *CartService) GetCart(ctx context.Context, userID string) (CartView, error) {
	if userID == "" {
		return CartView{}, domain.ErrUserIDRequired
	}

	cart, err := s.findOrCreateCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.repo.GetCartLines(ctx, cart.ID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{Cart: cart, Lines: lines}, nil
}

// AddItem puts a product into the cart. Adding a product already in the
// cart replaces its quantity.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (domain.CartItem, error) {
	if userID == "" {
		return domain.CartItem{}, domain.ErrUserIDRequired
	}
	if quantity <= 0 {
		return domain.CartItem{}, domain.ErrInvalidQuantity
	}

	var result domain.CartItem
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		cart, err := s.findOrCreateCart(txCtx, userID)
		if err != nil {
			return err
		}

		product, err := s.repo.GetProduct(txCtx, productID)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindCartItem(txCtx, cart.ID, productID)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.repo.UpdateCartItemQuantity(txCtx, cart.ID, existing.ID, quantity); err != nil {
				return err
			}
			existing.Quantity = quantity
			result = *existing
			return nil
		}

		if product.Stock < quantity {
			return &domain.InsufficientStockError{ProductID: productID}
		}

		item := domain.CartItem{
			ID:        uuid.NewString(),
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.repo.InsertCartItem(txCtx, item); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return domain.CartItem{}, err
	}
	return result, nil
}

// UpdateItem changes a cart line's quantity; zero or less removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) error {
	if userID == "" {
		return domain.ErrUserIDRequired
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		cart, err := s.repo.FindCartByUser(txCtx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrCartItemNotFound
		}
		if quantity <= 0 {
			return s.repo.DeleteCartItem(txCtx, cart.ID, itemID)
		}
		return s.repo.UpdateCartItemQuantity(txCtx, cart.ID, itemID, quantity)
	})
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if userID == "" {
		return domain.ErrUserIDRequired
	}

	cart, err := s.repo.FindCartByUser(ctx, userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return domain.ErrCartItemNotFound
	}
	return s.repo.DeleteCartItem(ctx, cart.ID, itemID)
}

func (s *CartService) findOrCreateCart(ctx context.Context, userID string) (domain.Cart, error) {
	existing, err := s.repo.FindCartByUser(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	cart := domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		IsGuest:   false,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateCart(ctx, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}
