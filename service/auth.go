package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/judyrop/bookstore/apperr"
	"github.com/judyrop/bookstore/auth"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/metrics"
	"github.com/judyrop/bookstore/models"
	"github.com/judyrop/bookstore/repository"
)

const badCredentials = "invalid email or password"

// AuthService registers users and exchanges credentials for access tokens.
type AuthService struct {
	store    *repository.Store
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
	verifier auth.IDTokenVerifier
	log      *logrus.Logger
}

// NewAuthService wires the service. verifier may be nil, which disables
// ID-token login.
func NewAuthService(store *repository.Store, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, verifier auth.IDTokenVerifier, log *logrus.Logger) *AuthService {
	return &AuthService{store: store, hasher: hasher, tokens: tokens, verifier: verifier, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := dto.Validate(req); err != nil {
		return dto.UserResponse{}, err
	}
	if req.Password != req.RepeatPassword {
		return dto.UserResponse{}, apperr.InvalidField("repeat_password", "passwords do not match")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return dto.UserResponse{}, unexpected(err)
	}

	var user models.User
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Users().EmailExists(ctx, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("email %s is already registered", req.Email)
		}
		roles, err := tx.Users().Roles(ctx, models.RoleUser)
		if err != nil {
			return err
		}
		if len(roles) == 0 {
			return errors.New("default role USER is not seeded")
		}
		user = models.User{
			Email:           req.Email,
			Password:        hash,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			ShippingAddress: strings.TrimSpace(req.ShippingAddress),
			Roles:           roles,
		}
		return conflict(tx.Users().Create(ctx, &user), "email %s is already registered", req.Email)
	})
	if err != nil {
		return dto.UserResponse{}, unexpected(err)
	}

	metrics.RecordRegistration()
	s.log.WithFields(logrus.Fields{"user_id": user.ID}).Info("user registered")
	return dto.ToUserResponse(user), nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	user, err := s.store.Users().FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return dto.LoginResponse{}, apperr.Authentication(badCredentials)
	}
	if err != nil {
		return dto.LoginResponse{}, unexpected(err)
	}

	ok, err := s.hasher.Matches(user.Password, req.Password)
	if err != nil {
		return dto.LoginResponse{}, unexpected(err)
	}
	if !ok {
		return dto.LoginResponse{}, apperr.Authentication(badCredentials)
	}
	return s.issue(*user)
}

// LoginWithIDToken accepts an ID token from the configured identity provider
// and issues a local access token for the user with the same email.
func (s *AuthService) LoginWithIDToken(ctx context.Context, req dto.IDTokenLoginRequest) (dto.LoginResponse, error) {
	if s.verifier == nil {
		return dto.LoginResponse{}, apperr.Authentication("external login is not enabled")
	}
	email, err := s.verifier.VerifiedEmail(ctx, req.IDToken)
	if err != nil {
		s.log.WithError(err).Warn("id token rejected")
		return dto.LoginResponse{}, apperr.Authentication("invalid id token")
	}
	user, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return dto.LoginResponse{}, apperr.Authentication("no account for " + email)
	}
	if err != nil {
		return dto.LoginResponse{}, unexpected(err)
	}
	return s.issue(*user)
}

func (s *AuthService) issue(user models.User) (dto.LoginResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return dto.LoginResponse{}, unexpected(err)
	}
	return dto.LoginResponse{Token: token}, nil
}
