package service

import (
	"context"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/judyrop/bookstore/apperr"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
)

type BookService struct {
	store *repository.Store
	log   *logrus.Logger
}

func NewBookService(store *repository.Store, log *logrus.Logger) *BookService {
	return &BookService{store: store, log: log}
}

func (s *BookService) Create(ctx context.Context, req dto.BookRequest) (dto.BookResponse, error) {
	if err := requireRole(ctx, models.RoleAdmin); err != nil {
		return dto.BookResponse{}, err
	}
	req = trimBookRequest(req)
	if err := validateBook(req); err != nil {
		return dto.BookResponse{}, err
	}

	var book models.Book
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureISBNFree(ctx, tx, req.ISBN, 0); err != nil {
			return err
		}
		categories, err := resolveCategories(ctx, tx, req.CategoryIDs)
		if err != nil {
			return err
		}
		dto.ApplyBookRequest(&book, req)
		book.Categories = categories
		return conflict(tx.Books().Create(ctx, &book), "book with isbn %s already exists", req.ISBN)
	})
	if err != nil {
		return dto.BookResponse{}, unexpected(err)
	}

	s.log.WithFields(logrus.Fields{"book_id": book.ID, "isbn": book.ISBN}).Info("book created")
	return dto.ToBookResponse(book), nil
}

func (s *BookService) Get(ctx context.Context, id uint) (dto.BookResponse, error) {
	book, err := s.store.Books().FindByID(ctx, id)
	if err != nil {
		return dto.BookResponse{}, notFound(err, "book %d not found", id)
	}
	return dto.ToBookResponse(*book), nil
}

// Update overwrites the book's fields with the request.
func (s *BookService) Update(ctx context.Context, id uint, req dto.BookRequest) (dto.BookResponse, error) {
	if err := requireRole(ctx, models.RoleAdmin); err != nil {
		return dto.BookResponse{}, err
	}
	req = trimBookRequest(req)
	if err := validateBook(req); err != nil {
		return dto.BookResponse{}, err
	}

	var book *models.Book
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		book, err = tx.Books().FindByID(ctx, id)
		if err != nil {
			return notFound(err, "book %d not found", id)
		}
		if err := ensureISBNFree(ctx, tx, req.ISBN, id); err != nil {
			return err
		}
		categories, err := resolveCategories(ctx, tx, req.CategoryIDs)
		if err != nil {
			return err
		}
		dto.ApplyBookRequest(book, req)
		book.Categories = categories
		return conflict(tx.Books().Update(ctx, book), "book with isbn %s already exists", req.ISBN)
	})
	if err != nil {
		return dto.BookResponse{}, unexpected(err)
	}
	return dto.ToBookResponse(*book), nil
}

// Delete soft-deletes the book.
func (s *BookService) Delete(ctx context.Context, id uint) error {
	if err := requireRole(ctx, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.store.Books().Delete(ctx, id); err != nil {
		return notFound(err, "book %d not found", id)
	}
	s.log.WithField("book_id", id).Info("book deleted")
	return nil
}

func (s *BookService) List(ctx context.Context, page repository.PageRequest) (dto.PageResponse[dto.BookResponse], error) {
	return s.Search(ctx, dto.BookSearchParams{}, page)
}

func (s *BookService) Search(ctx context.Context, params dto.BookSearchParams, page repository.PageRequest) (dto.PageResponse[dto.BookResponse], error) {
	filter := repository.BookFilter{Title: params.Title, Author: params.Author, ISBN: params.ISBN}
	res, err := s.store.Books().Search(ctx, filter, page)
	if err != nil {
		return dto.PageResponse[dto.BookResponse]{}, unexpected(err)
	}
	return dto.ToPageResponse(res, dto.ToBookResponse), nil
}

func trimBookRequest(req dto.BookRequest) dto.BookRequest {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.ISBN = strings.TrimSpace(req.ISBN)
	return req
}

func validateBook(req dto.BookRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	if req.Price.IsNegative() {
		return apperr.InvalidField("price", "must be zero or greater")
	}
	return nil
}

func ensureISBNFree(ctx context.Context, tx *repository.Store, isbn string, excludeID uint) error {
	taken, err := tx.Books().ISBNTaken(ctx, isbn, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("book with isbn %s already exists", isbn)
	}
	return nil
}

func resolveCategories(ctx context.Context, tx *repository.Store, ids []uint) ([]models.Category, error) {
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	categories, err := tx.Categories().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(ids) {
		for _, id := range ids {
			if !slices.ContainsFunc(categories, func(c models.Category) bool { return c.ID == id }) {
				return nil, apperr.NotFound("category %d not found", id)
			}
		}
	}
	return categories, nil
}
