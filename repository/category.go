package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/judyrop/bookstore/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return wrap("create category", r.db.WithContext(ctx).Omit("Books").Create(c).Error)
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name").Order("id").Find(&categories).Error
	return categories, wrap("list categories", err)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, wrap("find category", err)
	}
	return &c, nil
}

// FindByIDs loads the given categories. Callers compare lengths to detect
// unknown ids.
func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Category, error) {
	var categories []models.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error
	return categories, wrap("find categories", err)
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	return wrap("update category", r.db.WithContext(ctx).Omit("Books").Save(c).Error)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return wrap("delete category", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete category", ErrNotFound)
	}
	return nil
}
