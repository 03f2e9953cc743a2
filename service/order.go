package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/judyrop/bookstore/apperr"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/metrics"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
)

type OrderService struct {
	store *repository.Store
	now   func() time.Time
	log   *logrus.Logger
}

// NewOrderService wires the service. now stamps placed orders; nil means
// time.Now.
func NewOrderService(store *repository.Store, now func() time.Time, log *logrus.Logger) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{store: store, now: now, log: log}
}

// PlaceOrder turns the caller's cart into a PENDING order and empties the
// cart. Both happen in one transaction. Item prices are copied from the
// books so later price changes leave the order untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest) (dto.OrderResponse, error) {
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	if err := dto.Validate(req); err != nil {
		return dto.OrderResponse{}, err
	}

	var order models.Order
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := currentUser(ctx, tx)
		if err != nil {
			return err
		}
		cart, err := tx.Carts().FindByUserID(ctx, user.ID)
		if err != nil {
			return notFound(err, "cart not found for user %d", user.ID)
		}
		// an order needs at least one line
		if len(cart.CartItems) == 0 {
			return apperr.InvalidField("cart", "is empty")
		}

		order = models.Order{
			UserID:          user.ID,
			OrderDate:       s.now().UTC(),
			Status:          models.OrderStatusPending,
			ShippingAddress: req.ShippingAddress,
			Total:           decimal.Zero,
		}
		for _, ci := range cart.CartItems {
			if ci.Book.ID == 0 || ci.Book.DeletedAt.Valid {
				return apperr.NotFound("book %d is no longer available", ci.BookID)
			}
			item := models.OrderItem{BookID: ci.BookID, Quantity: ci.Quantity, Price: ci.Book.Price}
			order.OrderItems = append(order.OrderItems, item)
			order.Total = order.Total.Add(item.Subtotal())
		}

		if err := tx.Orders().Create(ctx, &order); err != nil {
			return err
		}
		return tx.Carts().Clear(ctx, cart.ID)
	})
	if err != nil {
		return dto.OrderResponse{}, unexpected(err)
	}

	metrics.RecordOrderPlaced(order.Total)
	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"items":    len(order.OrderItems),
		"total":    order.Total.StringFixed(2),
	}).Info("order placed")
	return dto.ToOrderResponse(order), nil
}

// History lists the caller's orders, newest first.
func (s *OrderService) History(ctx context.Context) ([]dto.OrderResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.Orders().FindByUserID(ctx, id.UserID)
	if err != nil {
		return nil, unexpected(err)
	}
	return dto.MapSlice(orders, dto.ToOrderResponse), nil
}

func (s *OrderService) Items(ctx context.Context, orderID uint) ([]dto.OrderItemResponse, error) {
	order, err := s.ownedOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return dto.MapSlice(order.OrderItems, dto.ToOrderItemResponse), nil
}

func (s *OrderService) Item(ctx context.Context, orderID, itemID uint) (dto.OrderItemResponse, error) {
	if _, err := s.ownedOrder(ctx, orderID); err != nil {
		return dto.OrderItemResponse{}, err
	}
	item, err := s.store.Orders().FindItem(ctx, orderID, itemID)
	if err != nil {
		return dto.OrderItemResponse{}, notFound(err, "item %d not found in order %d", itemID, orderID)
	}
	return dto.ToOrderItemResponse(*item), nil
}

// UpdateStatus sets any known status. Admin only; there is no transition
// graph.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, req dto.UpdateOrderStatusRequest) (dto.OrderResponse, error) {
	if err := requireRole(ctx, models.RoleAdmin); err != nil {
		return dto.OrderResponse{}, err
	}
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		return dto.OrderResponse{}, apperr.InvalidField("status", "unknown order status "+req.Status)
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		order, err = tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return notFound(err, "order %d not found", orderID)
		}
		return tx.Orders().UpdateStatus(ctx, order, status)
	})
	if err != nil {
		return dto.OrderResponse{}, unexpected(err)
	}

	s.log.WithFields(logrus.Fields{"order_id": orderID, "status": status}).Info("order status updated")
	return dto.ToOrderResponse(*order), nil
}

// ownedOrder loads an order of the caller. Orders of other users are
// reported as missing.
func (s *OrderService) ownedOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && order.UserID != id.UserID) {
		return nil, apperr.NotFound("order %d not found", orderID)
	}
	if err != nil {
		return nil, unexpected(err)
	}
	return order, nil
}
