package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/repo"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/logging"
)

type CartService struct {
	Repo *repo.GormRepo
}

type Cart struct {
	Items []models.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func (s *CartService) Get(ctx context.Context, userID uint) (*Cart, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("get_cart_error", "status", 500, "user_id", userID, "error", err)
		return nil, apperr.Query(err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	total := decimal.Zero
	for _, it := range items {
		if it.Product != nil {
			total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return &Cart{Items: items, Total: total}, nil
}

// stockFor loads the product and checks that want units can be held in a cart.
func (s *CartService) stockFor(ctx context.Context, productID uint, want int) error {
	p, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return apperr.Query(err)
	}
	if p == nil {
		return ErrProductNotFound
	}
	if p.Stock <= 0 {
		return ErrOutOfStock.Msgf("%s is out of stock", p.Name)
	}
	if want > p.Stock {
		return ErrInsufficientStock.Msgf("Not enough stock for %s. Only %d available", p.Name, p.Stock)
	}
	return nil
}

// Add merges qty into the cart line of the product.
func (s *CartService) Add(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID, "product_id", productID)
	if qty < 1 {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid quantity", "quantity", qty)
		return nil, ErrInvalidQuantity
	}

	have, err := s.Repo.CartQuantity(ctx, userID, productID)
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return nil, apperr.Query(err)
	}
	if err := s.stockFor(ctx, productID, have+qty); err != nil {
		l.Warn("add_to_cart_error", "status", apperr.StatusOf(err), "reason", err.Error())
		return nil, err
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return nil, apperr.Query(err)
	}
	l.Info("add_to_cart_success", "quantity", item.Quantity)
	return item, nil
}

// Update replaces the quantity of an existing cart line.
func (s *CartService) Update(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.update", "user_id", userID, "product_id", productID)
	if qty < 1 {
		l.Warn("update_cart_error", "status", 400, "reason", "invalid quantity", "quantity", qty)
		return nil, ErrInvalidQuantity
	}
	if err := s.stockFor(ctx, productID, qty); err != nil {
		l.Warn("update_cart_error", "status", apperr.StatusOf(err), "reason", err.Error())
		return nil, err
	}

	item, err := s.Repo.SetCartQuantity(ctx, userID, productID, qty)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("update_cart_error", "status", 404, "reason", "item not in cart")
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		l.Error("update_cart_error", "status", 500, "error", err)
		return nil, apperr.Query(err)
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	err := s.Repo.RemoveFromCart(ctx, userID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCartItemNotFound
	}
	if err != nil {
		logging.FromContext(ctx).Error("remove_from_cart_error", "status", 500, "user_id", userID, "error", err)
		return apperr.Query(err)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) (int64, error) {
	n, err := s.Repo.ClearCart(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("clear_cart_error", "status", 500, "user_id", userID, "error", err)
		return 0, apperr.Query(err)
	}
	return n, nil
}
