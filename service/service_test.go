package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/judyrop/bookstore/apperr"
	"github.com/judyrop/bookstore/auth"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/logging"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
	"github.com/judyrop/bookstore/testutil"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var placedAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type fixture struct {
	store      *repository.Store
	auth       *AuthService
	users      *UserService
	books      *BookService
	categories *CategoryService
	carts      *CartService
	orders     *OrderService
	tokens     *auth.TokenIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logging.Discard()
	store := repository.NewStore(testutil.NewDB(t))
	tokens := auth.NewTokenIssuer(testSecret, time.Hour)
	return &fixture{
		store:      store,
		auth:       NewAuthService(store, &auth.PasswordHasher{Cost: bcrypt.MinCost}, tokens, nil, log),
		users:      NewUserService(store, log),
		books:      NewBookService(store, log),
		categories: NewCategoryService(store, log),
		carts:      NewCartService(store, log),
		orders:     NewOrderService(store, func() time.Time { return placedAt }, log),
		tokens:     tokens,
	}
}

func registration(email string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:           email,
		Password:        "secret-password",
		RepeatPassword:  "secret-password",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		ShippingAddress: "12 Analytical St",
	}
}

// userCtx registers email and returns a context authenticated as that user.
func (f *fixture) userCtx(t *testing.T, email string) context.Context {
	t.Helper()
	u, err := f.auth.Register(context.Background(), registration(email))
	require.NoError(t, err)
	return auth.WithIdentity(context.Background(), auth.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Roles:  []models.RoleName{models.RoleUser},
	})
}

func (f *fixture) adminCtx(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	u, err := f.auth.Register(ctx, registration("admin@example.com"))
	require.NoError(t, err)
	user, err := f.store.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	roles, err := f.store.Users().Roles(ctx, models.AllRoles...)
	require.NoError(t, err)
	require.NoError(t, f.store.Users().ReplaceRoles(ctx, user, roles))
	return auth.WithIdentity(ctx, auth.Identity{UserID: u.ID, Email: u.Email, Roles: models.AllRoles})
}

func (f *fixture) createBook(t *testing.T, ctx context.Context, title, isbn, price string) dto.BookResponse {
	t.Helper()
	p := decimal.RequireFromString(price)
	b, err := f.books.Create(ctx, dto.BookRequest{Title: title, Author: "Author of " + title, ISBN: isbn, Price: &p})
	require.NoError(t, err)
	return b
}

func assertKind(t *testing.T, want apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, apperr.KindOf(err), "error: %v", err)
}

func firstPage(t *testing.T) repository.PageRequest {
	t.Helper()
	p, err := repository.NewPageRequest(0, 0, nil, repository.BookSortColumns, "title")
	require.NoError(t, err)
	return p
}
