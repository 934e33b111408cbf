// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, token verification and
// admin seeding.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
	"github.com/molyneaux/vehicle-photo-api/internal/dbx"
	"github.com/molyneaux/vehicle-photo-api/internal/logging"
	"github.com/molyneaux/vehicle-photo-api/internal/server/auth"
	"github.com/molyneaux/vehicle-photo-api/internal/server/config"
	"github.com/molyneaux/vehicle-photo-api/internal/server/models"
	"github.com/molyneaux/vehicle-photo-api/internal/server/repositories/repomanager"
)

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint an access token
// - CurrentUser: resolve a bearer token to a stored user
// - EnsureUser: idempotent user creation for admin seeding
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		logger:                      logger.With("module", "users"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
	}
}

// Register creates a user with a bcrypt hash of password. A taken username
// yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	return s.create(ctx, s.db, username, password)
}

// Authenticate returns the user whose stored hash matches password.
// Unknown users and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep the response time of unknown users close to known ones
			auth.CheckPassword(s.getDummyHash(), password)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(user.HashedPassword, password) {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(user.UserName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		return "", common.ErrorInternal
	}
	return token, nil
}

// CurrentUser verifies token and loads its subject. A token whose user no
// longer exists is rejected like a bad token.
func (s *UserService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	username, err := auth.SubjectFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}
	return user, nil
}

// EnsureUser creates username with password unless it already exists. The
// lookup and insert share one transaction. created reports whether a new
// row was written; an existing user keeps its password.
func (s *UserService) EnsureUser(ctx context.Context, username, password string) (user *models.User, created bool, err error) {
	if username == "" || password == "" {
		return nil, false, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := s.repomanager.Users(tx).GetUserByLogin(ctx, username)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		user, err = s.create(ctx, tx, username, password)
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

// --- helpers below ---

func (s *UserService) create(ctx context.Context, db dbx.DBTX, username, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	u, err := s.repomanager.Users(db).Create(ctx, &models.User{UserName: username, HashedPassword: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "user insert failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("not-a-real-password", s.bcryptCost)
	})
	return s.dummyHash
}
