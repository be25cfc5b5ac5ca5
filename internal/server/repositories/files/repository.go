package files

import (
	"context"

	"github.com/dmitrijs2005/travelog/internal/server/models"
)

// Repository keeps a ledger of uploaded photo blobs so that blobs left
// behind by a failed permanent delete can be found later.
type Repository interface {
	Record(ctx context.Context, file *models.File) error
	MarkOrphaned(ctx context.Context, url string) error
	Forget(ctx context.Context, url string) error
	ListOrphaned(ctx context.Context) ([]*models.File, error)
}
