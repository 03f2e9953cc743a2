package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/judyrop/bookstore/models"
)

type UserRepository struct {
	db *gorm.DB
}

// Create inserts the user and links the (already persisted) roles.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return wrap("create user", r.db.WithContext(ctx).Omit("Roles.*").Create(u).Error)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&u).Error; err != nil {
		return nil, wrap("find user by email", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&u, id).Error; err != nil {
		return nil, wrap("find user", err)
	}
	return &u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, wrap("check email", err)
}

// Roles loads roles by name.
func (r *UserRepository) Roles(ctx context.Context, names ...models.RoleName) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Where("name IN ?", names).Order("id").Find(&roles).Error
	return roles, wrap("find roles", err)
}

func (r *UserRepository) ReplaceRoles(ctx context.Context, u *models.User, roles []models.Role) error {
	if err := r.db.WithContext(ctx).Model(u).Association("Roles").Replace(roles); err != nil {
		return wrap("replace roles", err)
	}
	u.Roles = roles
	return nil
}
