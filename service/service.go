// Package service implements the bookstore's business rules. Every method
// takes the request context, which carries the caller's auth.Identity.
package service

import (
	"context"
	"errors"

	"github.com/judyrop/bookstore/apperr"
	"github.com/judyrop/bookstore/auth"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
)

// identity returns the authenticated caller or an authentication error.
func identity(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(ctx)
	if !ok || id.UserID == 0 {
		return auth.Identity{}, apperr.Authentication("authentication required")
	}
	return id, nil
}

func requireRole(ctx context.Context, role models.RoleName) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	if !id.HasRole(role) {
		return apperr.Authorization("access denied")
	}
	return nil
}

// currentUser resolves the caller to a stored user.
func currentUser(ctx context.Context, store *repository.Store) (*models.User, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	user, err := store.Users().FindByID(ctx, id.UserID)
	if err != nil {
		return nil, notFound(err, "user %d not found", id.UserID)
	}
	return user, nil
}

// notFound maps repository.ErrNotFound to an apperr not-found error and
// wraps anything else as unexpected.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return unexpected(err)
}

// conflict maps repository.ErrDuplicate to an apperr conflict. It covers the
// writer that loses a race past an exists check.
func conflict(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict(format, args...)
	}
	return err
}

// unexpected passes apperr errors through and wraps everything else.
func unexpected(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Unexpected(err)
}
