package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
)

type CategoryService struct {
	store *repository.Store
	log   *logrus.Logger
}

func NewCategoryService(store *repository.Store, log *logrus.Logger) *CategoryService {
	return &CategoryService{store: store, log: log}
}

func (s *CategoryService) Create(ctx context.Context, req dto.CategoryRequest) (dto.CategoryResponse, error) {
	if err := requireRole(ctx, models.RoleAdmin); err != nil {
		return dto.CategoryResponse{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := dto.Validate(req); err != nil {
		return dto.CategoryResponse{}, err
	}

	c := models.Category{Name: req.Name, Description: req.Description}
	if err := s.store.Categories().Create(ctx, &c); err != nil {
		return dto.CategoryResponse{}, unexpected(err)
	}
	s.log.WithField("category_id", c.ID).Info("category created")
	return dto.ToCategoryResponse(c), nil
}

func (s *CategoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.store.Categories().FindAll(ctx)
	if err != nil {
		return nil, unexpected(err)
	}
	return dto.MapSlice(categories, dto.ToCategoryResponse), nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (dto.CategoryResponse, error) {
	c, err := s.store.Categories().FindByID(ctx, id)
	if err != nil {
		return dto.CategoryResponse{}, notFound(err, "category %d not found", id)
	}
	return dto.ToCategoryResponse(*c), nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, req dto.CategoryRequest) (dto.CategoryResponse, error) {
	if err := requireRole(ctx, models.RoleAdmin); err != nil {
		return dto.CategoryResponse{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := dto.Validate(req); err != nil {
		return dto.CategoryResponse{}, err
	}

	var c *models.Category
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		c, err = tx.Categories().FindByID(ctx, id)
		if err != nil {
			return notFound(err, "category %d not found", id)
		}
		c.Name = req.Name
		c.Description = req.Description
		return tx.Categories().Update(ctx, c)
	})
	if err != nil {
		return dto.CategoryResponse{}, unexpected(err)
	}
	return dto.ToCategoryResponse(*c), nil
}

func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if err := requireRole(ctx, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.store.Categories().Delete(ctx, id); err != nil {
		return notFound(err, "category %d not found", id)
	}
	s.log.WithField("category_id", id).Info("category deleted")
	return nil
}

// Books lists the live books of a category without their category ids.
func (s *CategoryService) Books(ctx context.Context, id uint) ([]dto.BookWithoutCategories, error) {
	if _, err := s.store.Categories().FindByID(ctx, id); err != nil {
		return nil, notFound(err, "category %d not found", id)
	}
	books, err := s.store.Books().FindByCategoryID(ctx, id)
	if err != nil {
		return nil, unexpected(err)
	}
	return dto.MapSlice(books, dto.ToBookWithoutCategories), nil
}
