package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/judyrop/bookstore/dto"
)

func (h *handler) register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *handler) login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) loginWithIDToken(c *gin.Context) {
	var req dto.IDTokenLoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Auth.LoginWithIDToken(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) me(c *gin.Context) {
	user, err := h.svc.Users.Me(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) assignRoles(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req dto.AssignRolesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Users.AssignRoles(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Books

func (h *handler) listBooks(c *gin.Context) {
	page, ok := h.pageRequest(c)
	if !ok {
		return
	}
	books, err := h.svc.Books.List(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *handler) searchBooks(c *gin.Context) {
	page, ok := h.pageRequest(c)
	if !ok {
		return
	}
	var params dto.BookSearchParams
	if !h.bindQuery(c, &params) {
		return
	}
	books, err := h.svc.Books.Search(c.Request.Context(), params, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *handler) getBook(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	book, err := h.svc.Books.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *handler) createBook(c *gin.Context) {
	var req dto.BookRequest
	if !h.bindJSON(c, &req) {
		return
	}
	book, err := h.svc.Books.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *handler) updateBook(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req dto.BookRequest
	if !h.bindJSON(c, &req) {
		return
	}
	book, err := h.svc.Books.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *handler) deleteBook(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Books.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Categories

func (h *handler) listCategories(c *gin.Context) {
	categories, err := h.svc.Categories.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *handler) getCategory(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	category, err := h.svc.Categories.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *handler) categoryBooks(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	books, err := h.svc.Categories.Books(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *handler) createCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.svc.Categories.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *handler) updateCategory(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.svc.Categories.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *handler) deleteCategory(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Categories.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Cart

func (h *handler) getCart(c *gin.Context) {
	cart, err := h.svc.Carts.GetCart(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handler) addToCart(c *gin.Context) {
	var req dto.AddToCartRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Carts.AddItem(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handler) updateCartItem(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Carts.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) removeCartItem(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Carts.RemoveItem(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Orders

func (h *handler) placeOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.svc.Orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handler) orderHistory(c *gin.Context) {
	orders, err := h.svc.Orders.History(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handler) orderItems(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.Orders.Items(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) orderItem(c *gin.Context) {
	orderID, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.idParam(c, "itemId")
	if !ok {
		return
	}
	item, err := h.svc.Orders.Item(c.Request.Context(), orderID, itemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) updateOrderStatus(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.svc.Orders.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
