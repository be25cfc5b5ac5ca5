package users

import (
	"context"

	"github.com/dmitrijs2005/travelog/internal/server/models"
)

// Repository stores identity provider accounts.
type Repository interface {
	// Create inserts the user and fills in its ID and CreatedAt.
	// A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateDisplayName(ctx context.Context, id string, name string) error
}
