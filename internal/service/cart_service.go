package service

import (
	"context"
	"errors"

	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/repository"
)

// CartService edits the cart embedded in a user record.
type CartService struct {
	Carts    CartStore
	Products ProductReader
}

func (s *CartService) Get(ctx context.Context, userID string) (model.Cart, error) {
	cart, err := s.Carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = model.Cart{}
	}
	return cart, nil
}

// Add puts one more unit of productID in size into the cart.
func (s *CartService) Add(ctx context.Context, userID, productID, size string) (model.Cart, error) {
	if err := s.checkProduct(ctx, productID, size); err != nil {
		return nil, err
	}
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Add(productID, size, 1)
	if err := s.Carts.SaveCart(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Update sets the quantity of one line; zero removes it.
func (s *CartService) Update(ctx context.Context, userID, productID, size string, qty int) (model.Cart, error) {
	if qty < 0 {
		return nil, fail(ErrValidation, "quantity must not be negative")
	}
	if productID == "" || size == "" {
		return nil, fail(ErrValidation, "itemId and size are required")
	}
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Set(productID, size, qty)
	if err := s.Carts.SaveCart(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) checkProduct(ctx context.Context, productID, size string) error {
	if productID == "" || size == "" {
		return fail(ErrValidation, "itemId and size are required")
	}
	p, err := s.Products.GetByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(ErrNotFound, "product not found")
	}
	if err != nil {
		return err
	}
	if !p.HasSize(size) {
		return fail(ErrValidation, "size %s is not offered", size)
	}
	return nil
}
