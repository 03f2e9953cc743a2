package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/judyrop/bookstore/auth"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/logging"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
	"github.com/judyrop/bookstore/service"
	"github.com/judyrop/bookstore/testutil"
)

type testServer struct {
	router *gin.Engine
	store  *repository.Store
	svc    Services
	tokens *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logging.Discard()
	store := repository.NewStore(testutil.NewDB(t))
	tokens := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	svc := Services{
		Auth:       service.NewAuthService(store, &auth.PasswordHasher{Cost: bcrypt.MinCost}, tokens, nil, log),
		Users:      service.NewUserService(store, log),
		Books:      service.NewBookService(store, log),
		Categories: service.NewCategoryService(store, log),
		Carts:      service.NewCartService(store, log),
		Orders:     service.NewOrderService(store, nil, log),
	}
	return &testServer{router: NewRouter(svc, tokens, log), store: store, svc: svc, tokens: tokens}
}

// token registers email and returns an access token carrying roles.
func (s *testServer) token(t *testing.T, email string, roles ...models.RoleName) string {
	t.Helper()
	ctx := context.Background()
	u, err := s.svc.Auth.Register(ctx, dto.RegisterRequest{
		Email:          email,
		Password:       "secret-password",
		RepeatPassword: "secret-password",
		FirstName:      "Test",
		LastName:       "User",
	})
	require.NoError(t, err)

	user, err := s.store.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	if len(roles) > 0 {
		stored, err := s.store.Users().Roles(ctx, roles...)
		require.NoError(t, err)
		require.NoError(t, s.store.Users().ReplaceRoles(ctx, user, stored))
	}
	token, err := s.tokens.Issue(*user)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()

	s.router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/health", "", nil)

	w := s.do(http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bookstore_http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/books", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decode[map[string]string](t, w), "error")

	expired := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Minute).
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	ghost := models.User{Email: "ghost@example.com"}
	ghost.ID = 1
	token, err := expired.Issue(ghost)
	require.NoError(t, err)
	w = s.do(http.MethodGet, "/api/books", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleChecks(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "reader@example.com")

	w := s.do(http.MethodPost, "/api/books", user, map[string]any{
		"title": "Dune", "author": "Frank Herbert", "isbn": "1", "price": 10,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, "/api/orders/1", user, map[string]any{"status": "SHIPPED"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/books", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegistrationValidationErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/registration", "", map[string]any{
		"email":           "not-an-email",
		"password":        "short",
		"repeat_password": "short",
		"last_name":       "User",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[map[string]string](t, w)
	assert.Equal(t, "must be a valid email", fields["email"])
	assert.Equal(t, "must be at least 8 characters", fields["password"])
	assert.Equal(t, "is required", fields["first_name"])
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "admin@example.com", models.RoleAdmin)

	w := s.do(http.MethodPost, "/api/books", admin, map[string]any{"title": 12})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w), "title")

	req, _ := http.NewRequest(http.MethodPost, "/api/categories", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "admin@example.com", models.RoleUser, models.RoleAdmin)

	w := s.do(http.MethodPost, "/api/books", admin, map[string]any{
		"title": "Dune", "author": "Frank Herbert", "isbn": "978-0441013593", "price": "9.99",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	book := decode[dto.BookResponse](t, w)

	w = s.do(http.MethodPost, "/api/books", admin, map[string]any{
		"title": "Dune again", "author": "Frank Herbert", "isbn": "978-0441013593", "price": "1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w), "error")

	w = s.do(http.MethodGet, "/api/books/search?title=du", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.PageResponse[dto.BookResponse]](t, w)
	assert.Equal(t, int64(1), page.TotalElements)

	w = s.do(http.MethodDelete, "/api/books/"+itoa(book.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/books/"+itoa(book.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "not found")
}

func TestBadPathAndQueryParameters(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "reader@example.com")

	w := s.do(http.MethodGet, "/api/books/abc", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w), "id")

	w = s.do(http.MethodGet, "/api/books?sort=password,desc", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/books?page=-1", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/books?page=1844674407370955161", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be at most 1000000", decode[map[string]string](t, w)["page"])

	w = s.do(http.MethodGet, "/api/books?sort=price,desc&size=5", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[dto.PageResponse[dto.BookResponse]](t, w).Size)
}

func TestCartItemOfAnotherUserIsNotFound(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "admin@example.com", models.RoleUser, models.RoleAdmin)
	owner := s.token(t, "owner@example.com")
	other := s.token(t, "other@example.com")

	w := s.do(http.MethodPost, "/api/books", admin, map[string]any{
		"title": "Emma", "author": "Jane Austen", "isbn": "1", "price": "5.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	book := decode[dto.BookResponse](t, w)

	w = s.do(http.MethodPost, "/api/cart", owner, map[string]any{"book_id": book.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[dto.CartItemResponse](t, w)

	w = s.do(http.MethodPut, "/api/cart/cart-items/"+itoa(item.ID), other, map[string]any{"quantity": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/cart/cart-items/"+itoa(item.ID), owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
