package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/judyrop/bookstore/apperr"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
)

// CartService manages the caller's shopping cart. It never accepts a user
// id: the cart is always the one owned by the identity in the context.
type CartService struct {
	store *repository.Store
	log   *logrus.Logger
}

func NewCartService(store *repository.Store, log *logrus.Logger) *CartService {
	return &CartService{store: store, log: log}
}

// GetCart returns the caller's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context) (dto.CartResponse, error) {
	var cart *models.ShoppingCart
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := currentUser(ctx, tx)
		if err != nil {
			return err
		}
		cart, err = cartFor(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return dto.CartResponse{}, unexpected(err)
	}
	return dto.ToCartResponse(*cart), nil
}

// AddItem adds quantity of a book. A book already in the cart has its
// quantity increased instead of getting a second line.
func (s *CartService) AddItem(ctx context.Context, req dto.AddToCartRequest) (dto.CartItemResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.CartItemResponse{}, err
	}

	var item models.CartItem
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := currentUser(ctx, tx)
		if err != nil {
			return err
		}
		cart, err := cartFor(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		book, err := tx.Books().FindByID(ctx, req.BookID)
		if err != nil {
			return notFound(err, "book %d not found", req.BookID)
		}

		item = models.CartItem{ShoppingCartID: cart.ID, BookID: book.ID}
		for _, existing := range cart.CartItems {
			if existing.BookID == book.ID {
				item = existing
				break
			}
		}
		if item.Quantity > dto.MaxItemQuantity-req.Quantity {
			return apperr.InvalidField("quantity", fmt.Sprintf("can't exceed %d copies of one book", dto.MaxItemQuantity))
		}
		item.Quantity += req.Quantity
		item.Book = *book
		return tx.Carts().SaveItem(ctx, &item)
	})
	if err != nil {
		return dto.CartItemResponse{}, unexpected(err)
	}
	return dto.ToCartItemResponse(item), nil
}

// UpdateItem overwrites the quantity of one of the caller's cart items.
func (s *CartService) UpdateItem(ctx context.Context, itemID uint, req dto.UpdateCartItemRequest) (dto.CartItemResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.CartItemResponse{}, err
	}

	var item *models.CartItem
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		item, err = ownedCartItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		item.Quantity = req.Quantity
		return tx.Carts().SaveItem(ctx, item)
	})
	if err != nil {
		return dto.CartItemResponse{}, unexpected(err)
	}
	return dto.ToCartItemResponse(*item), nil
}

// RemoveItem deletes one of the caller's cart items.
func (s *CartService) RemoveItem(ctx context.Context, itemID uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := ownedCartItem(ctx, tx, itemID); err != nil {
			return err
		}
		if err := tx.Carts().DeleteItem(ctx, itemID); err != nil {
			return notFound(err, "cart item %d not found", itemID)
		}
		return nil
	})
	return unexpected(err)
}

// cartFor loads the user's cart, creating it when absent.
func cartFor(ctx context.Context, tx *repository.Store, userID uint) (*models.ShoppingCart, error) {
	cart, err := tx.Carts().FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	cart = &models.ShoppingCart{UserID: userID}
	if err := tx.Carts().Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ownedCartItem loads a cart item that belongs to the caller's cart. Items
// in other carts are reported as missing.
func ownedCartItem(ctx context.Context, tx *repository.Store, itemID uint) (*models.CartItem, error) {
	user, err := currentUser(ctx, tx)
	if err != nil {
		return nil, err
	}
	item, err := tx.Carts().FindItem(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "cart item %d not found", itemID)
	}
	cart, err := tx.Carts().FindByUserID(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && cart.ID != item.ShoppingCartID) {
		return nil, apperr.NotFound("cart item %d not found", itemID)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}
