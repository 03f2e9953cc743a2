package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judyrop/bookstore/apperr"
)

func TestValidateRegisterRequest(t *testing.T) {
	err := Validate(RegisterRequest{Email: "not-an-email", Password: "short", FirstName: "Ada"})
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, map[string]string{
		"email":           "must be a valid email",
		"password":        "must be at least 8 characters",
		"repeat_password": "is required",
		"last_name":       "is required",
	}, appErr.Fields)
}

func TestValidateBookRequest(t *testing.T) {
	err := Validate(BookRequest{Title: "T", Author: "A", ISBN: "123456789012345678901"})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "can't be longer than 20 characters", appErr.Fields["isbn"])
	assert.Equal(t, "is required", appErr.Fields["price"])
}

func TestValidationErrorPassesOtherErrors(t *testing.T) {
	assert.NoError(t, ValidationError(nil))
	other := errors.New("boom")
	assert.Equal(t, other, ValidationError(other))
}

func TestValidateBlankPassword(t *testing.T) {
	err := Validate(RegisterRequest{
		Email:          "reader@example.com",
		Password:       "        ",
		RepeatPassword: "        ",
		FirstName:      "Ada",
		LastName:       "Lovelace",
	})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, map[string]string{"password": "must not be blank"}, appErr.Fields)
}

func TestValidateCartQuantityBounds(t *testing.T) {
	err := Validate(AddToCartRequest{BookID: 1, Quantity: MaxItemQuantity + 1})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "must be at most 1000", appErr.Fields["quantity"])

	assert.NoError(t, Validate(UpdateCartItemRequest{Quantity: MaxItemQuantity}))
}
