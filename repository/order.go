package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/judyrop/bookstore/models"
)

type OrderRepository struct {
	db *gorm.DB
}

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }

// Create inserts the order together with its items.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return wrap("create order", r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("OrderItems", orderedItems).First(&order, id).Error; err != nil {
		return nil, wrap("find order", err)
	}
	return &order, nil
}

// FindByUserID returns the user's orders, newest first.
func (r *OrderRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems", orderedItems).
		Where("user_id = ?", userID).
		Order("order_date DESC").Order("id DESC").
		Find(&orders).Error
	return orders, wrap("find orders", err)
}

func (r *OrderRepository) FindItem(ctx context.Context, orderID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&item, itemID).Error; err != nil {
		return nil, wrap("find order item", err)
	}
	return &item, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, order *models.Order, status models.OrderStatus) error {
	if err := r.db.WithContext(ctx).Model(order).Update("status", status).Error; err != nil {
		return wrap("update order status", err)
	}
	order.Status = status
	return nil
}
