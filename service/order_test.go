package service

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judyrop/bookstore/apperr"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/models"
)

func TestGetCartCreatesEmptyCart(t *testing.T) {
	f := newFixture(t)
	reader := f.userCtx(t, "reader@example.com")

	first, err := f.carts.GetCart(reader)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Empty(t, first.CartItems)

	second, err := f.carts.GetCart(reader)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = f.carts.GetCart(context.Background())
	assertKind(t, apperr.KindAuthentication, err)
}

func TestAddSameBookTwiceAccumulates(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCtx(t)
	reader := f.userCtx(t, "reader@example.com")
	book := f.createBook(t, admin, "Dune", "978-0441013593", "9.99")

	first, err := f.carts.AddItem(reader, dto.AddToCartRequest{BookID: book.ID, Quantity: 2})
	require.NoError(t, err)
	second, err := f.carts.AddItem(reader, dto.AddToCartRequest{BookID: book.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, "Dune", second.BookTitle)

	cart, err := f.carts.GetCart(reader)
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.Equal(t, 5, cart.CartItems[0].Quantity)
}

func TestAddItemErrors(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCtx(t)
	reader := f.userCtx(t, "reader@example.com")
	book := f.createBook(t, admin, "Dune", "978-0441013593", "9.99")

	_, err := f.carts.AddItem(reader, dto.AddToCartRequest{BookID: 9999, Quantity: 1})
	assertKind(t, apperr.KindNotFound, err)

	_, err = f.carts.AddItem(reader, dto.AddToCartRequest{BookID: book.ID, Quantity: 0})
	assertKind(t, apperr.KindValidation, err)

	require.NoError(t, f.books.Delete(admin, book.ID))
	_, err = f.carts.AddItem(reader, dto.AddToCartRequest{BookID: book.ID, Quantity: 1})
	assertKind(t, apperr.KindNotFound, err)
}

func TestCartQuantityIsBounded(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCtx(t)
	reader := f.userCtx(t, "reader@example.com")
	book := f.createBook(t, admin, "Dune", "978-0441013593", "9.99")

	_, err := f.carts.AddItem(reader, dto.AddToCartRequest{BookID: book.ID, Quantity: math.MaxInt})
	assertKind(t, apperr.KindValidation, err)

	_, err = f.carts.AddItem(reader, dto.AddToCartRequest{BookID: book.ID, Quantity: 600})
	require.NoError(t, err)
	_, err = f.carts.AddItem(reader, dto.AddToCartRequest{BookID: book.ID, Quantity: 500})
	assertKind(t, apperr.KindValidation, err)

	item, err := f.carts.AddItem(reader, dto.AddToCartRequest{BookID: book.ID, Quantity: 400})
	require.NoError(t, err)
	assert.Equal(t, dto.MaxItemQuantity, item.Quantity)

	_, err = f.carts.UpdateItem(reader, item.ID, dto.UpdateCartItemRequest{Quantity: math.MaxInt})
	assertKind(t, apperr.KindValidation, err)

	order, err := f.orders.PlaceOrder(reader, dto.PlaceOrderRequest{ShippingAddress: "Somewhere"})
	require.NoError(t, err)
	assert.Equal(t, "9990.00", order.Total.StringFixed(2))
}

func TestUpdateAndRemoveCartItem(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCtx(t)
	reader := f.userCtx(t, "reader@example.com")
	intruder := f.userCtx(t, "intruder@example.com")
	book := f.createBook(t, admin, "Dune", "978-0441013593", "9.99")

	item, err := f.carts.AddItem(reader, dto.AddToCartRequest{BookID: book.ID, Quantity: 1})
	require.NoError(t, err)

	updated, err := f.carts.UpdateItem(reader, item.ID, dto.UpdateCartItemRequest{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	// another user's item looks like a missing one
	_, err = f.carts.UpdateItem(intruder, item.ID, dto.UpdateCartItemRequest{Quantity: 9})
	assertKind(t, apperr.KindNotFound, err)
	assertKind(t, apperr.KindNotFound, f.carts.RemoveItem(intruder, item.ID))

	_, err = f.carts.UpdateItem(reader, 9999, dto.UpdateCartItemRequest{Quantity: 1})
	assertKind(t, apperr.KindNotFound, err)

	require.NoError(t, f.carts.RemoveItem(reader, item.ID))
	assertKind(t, apperr.KindNotFound, f.carts.RemoveItem(reader, item.ID))

	cart, err := f.carts.GetCart(reader)
	require.NoError(t, err)
	assert.Empty(t, cart.CartItems)
}

func placeTwoBookOrder(t *testing.T, f *fixture, admin, reader context.Context) (dto.OrderResponse, dto.BookResponse) {
	t.Helper()
	bookA := f.createBook(t, admin, "Book A", "isbn-a", "10.00")
	bookB := f.createBook(t, admin, "Book B", "isbn-b", "5.00")

	_, err := f.carts.AddItem(reader, dto.AddToCartRequest{BookID: bookA.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.carts.AddItem(reader, dto.AddToCartRequest{BookID: bookB.ID, Quantity: 1})
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(reader, dto.PlaceOrderRequest{ShippingAddress: "221B Baker Street"})
	require.NoError(t, err)
	return order, bookA
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCtx(t)
	reader := f.userCtx(t, "reader@example.com")

	order, _ := placeTwoBookOrder(t, f, admin, reader)

	assert.Equal(t, "25.00", order.Total.StringFixed(2))
	assert.Equal(t, string(models.OrderStatusPending), order.Status)
	assert.Equal(t, placedAt, order.OrderDate)
	assert.Equal(t, "221B Baker Street", order.ShippingAddress)
	require.Len(t, order.OrderItems, 2)

	cart, err := f.carts.GetCart(reader)
	require.NoError(t, err)
	assert.Empty(t, cart.CartItems)
}

func TestOrderKeepsPriceAfterBookChange(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCtx(t)
	reader := f.userCtx(t, "reader@example.com")
	order, bookA := placeTwoBookOrder(t, f, admin, reader)

	p := decimal.RequireFromString("99.00")
	_, err := f.books.Update(admin, bookA.ID, dto.BookRequest{Title: bookA.Title, Author: bookA.Author, ISBN: bookA.ISBN, Price: &p})
	require.NoError(t, err)

	history, err := f.orders.History(reader)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
	assert.Equal(t, "25.00", history[0].Total.StringFixed(2))

	items, err := f.orders.Items(reader, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, bookA.ID, items[0].BookID)
	assert.Equal(t, "10.00", items[0].Price.StringFixed(2))
}

func TestPlaceOrderWithoutCart(t *testing.T) {
	f := newFixture(t)
	reader := f.userCtx(t, "reader@example.com")

	_, err := f.orders.PlaceOrder(reader, dto.PlaceOrderRequest{ShippingAddress: "Somewhere"})
	assertKind(t, apperr.KindNotFound, err)

	_, err = f.carts.GetCart(reader)
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(reader, dto.PlaceOrderRequest{ShippingAddress: "Somewhere"})
	assertKind(t, apperr.KindValidation, err)

	_, err = f.orders.PlaceOrder(reader, dto.PlaceOrderRequest{ShippingAddress: "  "})
	assertKind(t, apperr.KindValidation, err)
}

func TestPlaceOrderRollsBackWhenBookWasDeleted(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCtx(t)
	reader := f.userCtx(t, "reader@example.com")
	keep := f.createBook(t, admin, "Keep", "isbn-keep", "3.00")
	gone := f.createBook(t, admin, "Gone", "isbn-gone", "4.00")

	_, err := f.carts.AddItem(reader, dto.AddToCartRequest{BookID: keep.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.carts.AddItem(reader, dto.AddToCartRequest{BookID: gone.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.books.Delete(admin, gone.ID))

	_, err = f.orders.PlaceOrder(reader, dto.PlaceOrderRequest{ShippingAddress: "Somewhere"})
	assertKind(t, apperr.KindNotFound, err)

	cart, err := f.carts.GetCart(reader)
	require.NoError(t, err)
	assert.Len(t, cart.CartItems, 2)
	history, err := f.orders.History(reader)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOrderItemsAreOwnerOnly(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCtx(t)
	reader := f.userCtx(t, "reader@example.com")
	other := f.userCtx(t, "other@example.com")
	order, _ := placeTwoBookOrder(t, f, admin, reader)
	itemID := order.OrderItems[0].ID

	item, err := f.orders.Item(reader, order.ID, itemID)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	_, err = f.orders.Item(other, order.ID, itemID)
	assertKind(t, apperr.KindNotFound, err)
	_, err = f.orders.Items(other, order.ID)
	assertKind(t, apperr.KindNotFound, err)

	_, err = f.orders.Item(reader, order.ID, 9999)
	assertKind(t, apperr.KindNotFound, err)
	_, err = f.orders.Items(reader, 9999)
	assertKind(t, apperr.KindNotFound, err)

	history, err := f.orders.History(other)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCtx(t)
	reader := f.userCtx(t, "reader@example.com")
	order, _ := placeTwoBookOrder(t, f, admin, reader)

	_, err := f.orders.UpdateStatus(reader, order.ID, dto.UpdateOrderStatusRequest{Status: "SHIPPED"})
	assertKind(t, apperr.KindAuthorization, err)

	_, err = f.orders.UpdateStatus(admin, order.ID, dto.UpdateOrderStatusRequest{Status: "TELEPORTED"})
	assertKind(t, apperr.KindValidation, err)

	_, err = f.orders.UpdateStatus(admin, 9999, dto.UpdateOrderStatusRequest{Status: "SHIPPED"})
	assertKind(t, apperr.KindNotFound, err)

	updated, err := f.orders.UpdateStatus(admin, order.ID, dto.UpdateOrderStatusRequest{Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", updated.Status)
	assert.Equal(t, "25.00", updated.Total.StringFixed(2))

	history, err := f.orders.History(reader)
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", history[0].Status)
}
