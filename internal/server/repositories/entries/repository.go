package entries

import (
	"context"

	"github.com/dmitrijs2005/travelog/internal/server/models"
)

// Repository is the Entry Store. IDs are assigned by the store. Every
// mutation of a missing entry yields common.ErrorNotFound.
type Repository interface {
	// List returns the whole collection in store order (creation order).
	List(ctx context.Context) ([]*models.Entry, error)
	Get(ctx context.Context, id string) (*models.Entry, error)
	// Create inserts the entry and fills in ID and CreatedAt.
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	Update(ctx context.Context, id string, patch models.EntryPatch) error
	SetDeleted(ctx context.Context, id string, deleted bool) error
	Delete(ctx context.Context, id string) error
	// AppendComment adds c at the end of the comment thread in a single
	// statement, so concurrent appends are never lost.
	AppendComment(ctx context.Context, id string, c models.Comment) error
}
