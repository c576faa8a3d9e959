package containers

import (
	"context"

	"github.com/dmitrijs2005/containerhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, container *models.Container) (*models.Container, error)
	GetByID(ctx context.Context, id int64) (*models.Container, error)
	// ListByUser returns the user's containers in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]*models.Container, error)
	ListAll(ctx context.Context) ([]*models.Container, error)
}
