package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/judyrop/bookstore/models"
)

type CartRepository struct {
	db *gorm.DB
}

// FindByUserID loads the user's cart with its items in insertion order.
// Item books are loaded even when soft-deleted so callers can tell them apart.
func (r *CartRepository) FindByUserID(ctx context.Context, userID uint) (*models.ShoppingCart, error) {
	var cart models.ShoppingCart
	err := r.db.WithContext(ctx).
		Preload("CartItems", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("CartItems.Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, wrap("find cart", err)
	}
	return &cart, nil
}

func (r *CartRepository) Create(ctx context.Context, cart *models.ShoppingCart) error {
	return wrap("create cart", r.db.WithContext(ctx).Omit("CartItems").Create(cart).Error)
}

func (r *CartRepository) FindItem(ctx context.Context, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&item, itemID).Error
	if err != nil {
		return nil, wrap("find cart item", err)
	}
	return &item, nil
}

// SaveItem inserts or updates a line item without touching its book.
func (r *CartRepository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return wrap("save cart item", r.db.WithContext(ctx).Omit("Book").Save(item).Error)
}

func (r *CartRepository) DeleteItem(ctx context.Context, itemID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.CartItem{}, itemID)
	if res.Error != nil {
		return wrap("delete cart item", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete cart item", ErrNotFound)
	}
	return nil
}

// Clear removes every item from the cart.
func (r *CartRepository) Clear(ctx context.Context, cartID uint) error {
	err := r.db.WithContext(ctx).Where("shopping_cart_id = ?", cartID).Delete(&models.CartItem{}).Error
	return wrap("clear cart", err)
}
