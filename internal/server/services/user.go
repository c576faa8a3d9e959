// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, refresh token rotation and
// resolving the caller of a request from its access token.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/cryptox"
	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/auth"
	"github.com/dmitrijs2005/containerhub/internal/server/models"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/repomanager"
)

const TokenTypeBearer = common.BearerScheme

var checkPassword = cryptox.CheckPassword

var (
	placeholderOnce sync.Once
	placeholder     string
)

// placeholderHash is compared against when the login email is unknown. It is
// built on first use so it carries the current cryptox.HashCost.
func placeholderHash() string {
	placeholderOnce.Do(func() {
		placeholder, _ = cryptox.HashPassword("containerhub-placeholder")
	})
	return placeholder
}

var emailRe = regexp.MustCompile(`^[\w\.-]+@[\w\.-]+\.\w+$`)

// ValidEmail reports whether email has the accepted address shape.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a token pair
// - Refresh: rotate the stored refresh token and mint a new pair
// - ResolveCurrentUser: map an access token to its user
type UserService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	tokens      *auth.Issuer
	logger      logging.Logger
}

// NewUserService constructs a UserService. db may be nil for in-memory
// repositories.
func NewUserService(db dbx.DBTX, m repomanager.RepositoryManager, tokens *auth.Issuer, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		logger:      logger.With("module", "users"),
	}
}

// Register creates a user. The password is stored only as a bcrypt hash and
// an existing email is never overwritten.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if !ValidEmail(email) {
		return nil, common.ErrInvalidEmail
	}
	if password == "" {
		return nil, fmt.Errorf("%w: empty password", common.ErrorInvalidInput)
	}
	if len(password) > common.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password longer than %d bytes", common.ErrorInvalidInput, common.MaxPasswordBytes)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorConflict
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies credentials and, on success, returns a new TokenPair whose
// refresh token replaces the one stored for the user.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Unknown emails pay for a hash comparison too, so response
			// time does not reveal which accounts exist.
			checkPassword(placeholderHash(), password)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	return s.issuePair(ctx, user.ID)
}

// Refresh exchanges the user's current refresh token for a new pair. The
// presented token must verify with the refresh secret and equal the stored
// one. Concurrent refreshes of the same token both succeed; the stored value
// is whichever write landed last.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, common.ErrorUnauthorized
	}

	return s.issuePair(ctx, user.ID)
}

// ResolveCurrentUser returns the user an access token was issued to.
func (s *UserService) ResolveCurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	return user, nil
}

func (s *UserService) issuePair(ctx context.Context, userID int64) (*models.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: issue access token: %v", common.ErrorInternal, err)
	}
	refresh, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: issue refresh token: %v", common.ErrorInternal, err)
	}

	if err := s.repomanager.Users(s.db).SetRefreshToken(ctx, userID, &refresh); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: TokenTypeBearer}, nil
}
