// Package dto holds the request and response shapes of the HTTP API and the
// functions mapping persisted models onto them.
package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,notblank,min=8"`
	RepeatPassword  string `json:"repeat_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	ShippingAddress string `json:"shipping_address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type IDTokenLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID              uint     `json:"id"`
	Email           string   `json:"email"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	ShippingAddress string   `json:"shipping_address"`
	Roles           []string `json:"roles,omitempty"`
}

type AssignRolesRequest struct {
	Roles []string `json:"roles" binding:"required,min=1"`
}

type BookRequest struct {
	Title       string           `json:"title" binding:"required,max=255"`
	Author      string           `json:"author" binding:"required,max=255"`
	ISBN        string           `json:"isbn" binding:"required,max=20"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Description string           `json:"description" binding:"max=2000"`
	CoverImage  string           `json:"cover_image" binding:"max=512"`
	CategoryIDs []uint           `json:"category_ids"`
}

type BookResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ISBN        string          `json:"isbn"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	CoverImage  string          `json:"cover_image"`
	CategoryIDs []uint          `json:"category_ids"`
}

// BookWithoutCategories is returned when listing a category's books.
type BookWithoutCategories struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ISBN        string          `json:"isbn"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	CoverImage  string          `json:"cover_image"`
}

type BookSearchParams struct {
	Title  string `form:"title"`
	Author string `form:"author"`
	ISBN   string `form:"isbn"`
}

type PageParams struct {
	Page int      `form:"page" binding:"min=0,max=1000000"`
	Size int      `form:"size" binding:"min=0"`
	Sort []string `form:"sort"`
}

type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MaxItemQuantity bounds the quantity of a single cart line. It must match
// the max= binding of the quantity fields below.
const MaxItemQuantity = 1000

type AddToCartRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=1000"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=1000"`
}

type CartItemResponse struct {
	ID        uint   `json:"id"`
	BookID    uint   `json:"book_id"`
	BookTitle string `json:"book_title"`
	Quantity  int    `json:"quantity"`
}

type CartResponse struct {
	ID        uint               `json:"id"`
	UserID    uint               `json:"user_id"`
	CartItems []CartItemResponse `json:"cart_items"`
}

type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderItemResponse struct {
	ID       uint            `json:"id"`
	BookID   uint            `json:"book_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderResponse struct {
	ID              uint                `json:"id"`
	UserID          uint                `json:"user_id"`
	OrderItems      []OrderItemResponse `json:"order_items"`
	OrderDate       time.Time           `json:"order_date"`
	Total           decimal.Decimal     `json:"total"`
	Status          string              `json:"status"`
	ShippingAddress string              `json:"shipping_address"`
}
