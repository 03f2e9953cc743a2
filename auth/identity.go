// Package auth holds the authenticated identity carried through a request
// and the primitives used to establish it: password hashing, access tokens
// and external ID-token verification.
package auth

import (
	"context"
	"slices"

	"github.com/judyrop/bookstore/models"
)

// Identity is the authenticated caller of a single request.
type Identity struct {
	UserID uint
	Email  string
	Roles  []models.RoleName
}

func (i Identity) HasRole(role models.RoleName) bool {
	return slices.Contains(i.Roles, role)
}

func (i Identity) HasAnyRole(roles ...models.RoleName) bool {
	for _, r := range roles {
		if i.HasRole(r) {
			return true
		}
	}
	return false
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
