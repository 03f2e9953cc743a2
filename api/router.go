// Package api exposes the bookstore services over HTTP with gin.
package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/judyrop/bookstore/auth"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/metrics"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/service"
)

// Services groups everything the handlers call into.
type Services struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Books      *service.BookService
	Categories *service.CategoryService
	Carts      *service.CartService
	Orders     *service.OrderService
}

type handler struct {
	svc    Services
	tokens *auth.TokenIssuer
	log    *logrus.Logger
}

var configureValidator sync.Once

// NewRouter builds the gin engine with every route of the API.
func NewRouter(svc Services, tokens *auth.TokenIssuer, log *logrus.Logger) *gin.Engine {
	configureValidator.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			dto.Configure(v)
		}
	})

	h := &handler{svc: svc, tokens: tokens, log: log}

	r := gin.New()
	r.Use(requestID(), requestLogger(log), recordMetrics(), recovery(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/registration", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/login/oidc", h.loginWithIDToken)

	protected := api.Group("", h.authenticate())
	readers := requireRoles(models.RoleUser, models.RoleAdmin)
	customers := requireRoles(models.RoleUser)
	admins := requireRoles(models.RoleAdmin)

	users := protected.Group("/users")
	users.GET("/me", h.me)
	users.PUT("/:id/roles", admins, h.assignRoles)

	books := protected.Group("/books")
	books.GET("", readers, h.listBooks)
	books.GET("/search", readers, h.searchBooks)
	books.GET("/:id", readers, h.getBook)
	books.POST("", admins, h.createBook)
	books.PUT("/:id", admins, h.updateBook)
	books.DELETE("/:id", admins, h.deleteBook)

	categories := protected.Group("/categories")
	categories.GET("", readers, h.listCategories)
	categories.GET("/:id", readers, h.getCategory)
	categories.GET("/:id/books", readers, h.categoryBooks)
	categories.POST("", admins, h.createCategory)
	categories.PUT("/:id", admins, h.updateCategory)
	categories.DELETE("/:id", admins, h.deleteCategory)

	cart := protected.Group("/cart", customers)
	cart.GET("", h.getCart)
	cart.POST("", h.addToCart)
	cart.PUT("/cart-items/:id", h.updateCartItem)
	cart.DELETE("/cart-items/:id", h.removeCartItem)

	orders := protected.Group("/orders")
	orders.POST("", customers, h.placeOrder)
	orders.GET("", customers, h.orderHistory)
	orders.GET("/:id/items", customers, h.orderItems)
	orders.GET("/:id/items/:itemId", customers, h.orderItem)
	orders.PATCH("/:id", admins, h.updateOrderStatus)

	return r
}
