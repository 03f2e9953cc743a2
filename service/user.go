package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/judyrop/bookstore/apperr"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
)

type UserService struct {
	store *repository.Store
	log   *logrus.Logger
}

func NewUserService(store *repository.Store, log *logrus.Logger) *UserService {
	return &UserService{store: store, log: log}
}

// Me returns the caller's profile.
func (s *UserService) Me(ctx context.Context) (dto.UserResponse, error) {
	user, err := currentUser(ctx, s.store)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.ToUserResponse(*user), nil
}

// AssignRoles replaces the roles of a user. Admin only.
func (s *UserService) AssignRoles(ctx context.Context, userID uint, req dto.AssignRolesRequest) (dto.UserResponse, error) {
	if err := requireRole(ctx, models.RoleAdmin); err != nil {
		return dto.UserResponse{}, err
	}
	if len(req.Roles) == 0 {
		return dto.UserResponse{}, apperr.InvalidField("roles", "must contain at least 1 element(s)")
	}
	names := make([]models.RoleName, 0, len(req.Roles))
	for _, r := range req.Roles {
		name, ok := models.ParseRoleName(r)
		if !ok {
			return dto.UserResponse{}, apperr.InvalidField("roles", "unknown role "+r)
		}
		names = append(names, name)
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		user, err = tx.Users().FindByID(ctx, userID)
		if err != nil {
			return notFound(err, "user %d not found", userID)
		}
		roles, err := tx.Users().Roles(ctx, names...)
		if err != nil {
			return err
		}
		return tx.Users().ReplaceRoles(ctx, user, roles)
	})
	if err != nil {
		return dto.UserResponse{}, unexpected(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "roles": names}).Info("roles assigned")
	return dto.ToUserResponse(*user), nil
}
