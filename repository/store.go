// Package repository contains the gorm-backed persistence gateways.
//
// Every repository method takes a context and runs against the *gorm.DB the
// Store was built with, so the same repositories work inside and outside a
// transaction.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no live row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write violates a unique index. It relies on
// the gorm.DB being opened with TranslateError.
var ErrDuplicate = errors.New("duplicate key")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Books() *BookRepository {
	return &BookRepository{db: s.db}
}

func (s *Store) Categories() *CategoryRepository {
	return &CategoryRepository{db: s.db}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

func (s *Store) Carts() *CartRepository {
	return &CartRepository{db: s.db}
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{db: s.db}
}

// Transaction runs fn inside a single database transaction. Any error
// returned by fn rolls the transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
