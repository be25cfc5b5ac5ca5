// Package services contains server-side business logic. This file implements
// UserService, the identity provider: sign-up, sign-in, sign-out, token
// refresh and profile updates, each publishing an identity change.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/dbx"
	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/auth"
	"github.com/dmitrijs2005/travelog/internal/server/config"
	"github.com/dmitrijs2005/travelog/internal/server/identity"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token together with the identity they were issued for.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
}

// IdentityEvents is the identity-change stream UserService feeds.
type IdentityEvents interface {
	identity.Publisher
	identity.Subscriber
}

// UserService provides the identity provider operations.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	events                       IdentityEvents
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	minPasswordLength            int
	bcryptCost                   int
	now                          func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, events IdentityEvents,
	logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		events:                       events,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		minPasswordLength:            cfg.MinPasswordLength,
		bcryptCost:                   bcrypt.DefaultCost,
		now:                          time.Now,
	}
}

// SignUp creates an account with displayName set and signs it in.
func (s *UserService) SignUp(ctx context.Context, email, password, displayName string) (*TokenPair, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, common.ErrInvalidEmail
	}
	if len(password) < s.minPasswordLength {
		return nil, fmt.Errorf("%w: at least %d characters", common.ErrPasswordTooShort, s.minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Email: email, DisplayName: strings.TrimSpace(displayName), PasswordHash: hash}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", u.ID)
	return s.signedIn(ctx, u)
}

// SignIn verifies the password and mints a token pair.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}
	return s.signedIn(ctx, user)
}

// SignOut revokes every refresh token of userID and publishes the change,
// which logs out access tokens that are still unexpired.
func (s *UserService) SignOut(ctx context.Context, userID string) error {
	if err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error deleting refresh tokens: %w", err)
	}
	if err := s.events.Publish(ctx, identity.Change{Kind: identity.SignedOut, UserID: userID}); err != nil {
		return err
	}
	s.logger.Info(ctx, "user signed out", "user_id", userID)
	return nil
}

// Refresh validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*TokenPair, error) {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return nil, fmt.Errorf("error loading user: %w", err)
		}
		return s.generateTokenPair(ctx, user, tx)
	})
}

// UpdateDisplayName persists name and publishes the profile change.
func (s *UserService) UpdateDisplayName(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.ErrEmptyDisplayName
	}
	if err := s.repomanager.Users(s.db).UpdateDisplayName(ctx, userID, name); err != nil {
		return fmt.Errorf("error updating display name: %w", err)
	}
	return s.events.Publish(ctx, identity.Change{Kind: identity.ProfileUpdated, UserID: userID, DisplayName: name})
}

// Subscribe exposes the identity-change stream.
func (s *UserService) Subscribe(ctx context.Context, onChange func(identity.Change)) (func(), error) {
	return s.events.Subscribe(ctx, onChange)
}

// --- helpers below ---

func (s *UserService) signedIn(ctx context.Context, user *models.User) (*TokenPair, error) {
	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, err
	}
	change := identity.Change{Kind: identity.SignedIn, UserID: user.ID, DisplayName: user.DisplayName}
	if err := s.events.Publish(ctx, change); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.DisplayName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
		DisplayName:  user.DisplayName,
	}, nil
}
