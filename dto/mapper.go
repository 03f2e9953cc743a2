package dto

import (
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
)

func ToUserResponse(u models.User) UserResponse {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.RoleNames() {
		roles = append(roles, string(r))
	}
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ShippingAddress: u.ShippingAddress,
		Roles:           roles,
	}
}

func ToBookResponse(b models.Book) BookResponse {
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Price:       b.Price,
		Description: b.Description,
		CoverImage:  b.CoverImage,
		CategoryIDs: b.CategoryIDs(),
	}
}

func ToBookWithoutCategories(b models.Book) BookWithoutCategories {
	return BookWithoutCategories{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Price:       b.Price,
		Description: b.Description,
		CoverImage:  b.CoverImage,
	}
}

// ApplyBookRequest overwrites the mutable columns of b. Categories are
// resolved by the caller.
func ApplyBookRequest(b *models.Book, req BookRequest) {
	b.Title = req.Title
	b.Author = req.Author
	b.ISBN = req.ISBN
	if req.Price != nil {
		b.Price = *req.Price
	}
	b.Description = req.Description
	b.CoverImage = req.CoverImage
}

func ToCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

func ToCartItemResponse(i models.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:        i.ID,
		BookID:    i.BookID,
		BookTitle: i.Book.Title,
		Quantity:  i.Quantity,
	}
}

func ToCartResponse(c models.ShoppingCart) CartResponse {
	return CartResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		CartItems: MapSlice(c.CartItems, ToCartItemResponse),
	}
}

func ToOrderItemResponse(i models.OrderItem) OrderItemResponse {
	return OrderItemResponse{ID: i.ID, BookID: i.BookID, Quantity: i.Quantity, Price: i.Price}
}

func ToOrderResponse(o models.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		OrderItems:      MapSlice(o.OrderItems, ToOrderItemResponse),
		OrderDate:       o.OrderDate,
		Total:           o.Total,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
	}
}

func ToPageResponse[M, T any](p repository.Page[M], fn func(M) T) PageResponse[T] {
	return PageResponse[T]{
		Content:       MapSlice(p.Items, fn),
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages(),
	}
}

// MapSlice maps every element, returning an empty (non-nil) slice for no input.
func MapSlice[M, T any](in []M, fn func(M) T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
