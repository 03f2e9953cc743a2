package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/judyrop/bookstore/api"
	"github.com/judyrop/bookstore/auth"
	"github.com/judyrop/bookstore/config"
	"github.com/judyrop/bookstore/database"
	"github.com/judyrop/bookstore/logging"
	"github.com/judyrop/bookstore/repository"
	"github.com/judyrop/bookstore/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg.DBDriver, cfg.DSN, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	ctx := context.Background()
	if err := database.SeedRoles(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to seed roles")
	}
	hasher := auth.NewPasswordHasher()
	if cfg.AdminEmail != "" {
		created, err := database.EnsureAdmin(ctx, db, hasher, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.WithError(err).Fatal("failed to bootstrap admin")
		}
		if created {
			log.WithField("email", cfg.AdminEmail).Info("admin account created")
		}
	}

	var verifier auth.IDTokenVerifier
	if cfg.OIDCIssuer != "" {
		v, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			log.WithError(err).Fatal("failed to discover OIDC provider")
		}
		verifier = v
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	r := SetupRouter(db, hasher, tokens, verifier, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-stop.Done()
	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// SetupRouter wires the repositories and services on top of db and returns
// the HTTP router. verifier may be nil when ID-token login is disabled.
func SetupRouter(db *gorm.DB, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, verifier auth.IDTokenVerifier, log *logrus.Logger) *gin.Engine {
	store := repository.NewStore(db)
	return api.NewRouter(api.Services{
		Auth:       service.NewAuthService(store, hasher, tokens, verifier, log),
		Users:      service.NewUserService(store, log),
		Books:      service.NewBookService(store, log),
		Categories: service.NewCategoryService(store, log),
		Carts:      service.NewCartService(store, log),
		Orders:     service.NewOrderService(store, time.Now, log),
	}, tokens, log)
}
