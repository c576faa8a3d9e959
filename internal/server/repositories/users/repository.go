package users

import (
	"context"

	"github.com/dmitrijs2005/containerhub/internal/server/models"
)

// Repository is the credential store.
type Repository interface {
	// Create inserts user and fills in its ID and CreatedAt. A taken email
	// yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// List returns users ordered by id. A non-empty emailFilter keeps only
	// users whose email contains it, ignoring case.
	List(ctx context.Context, emailFilter string) ([]*models.User, error)
	// SetRefreshToken overwrites the stored refresh token; nil clears it.
	SetRefreshToken(ctx context.Context, id int64, token *string) error
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}
