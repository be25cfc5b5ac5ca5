// Package files provides the PostgreSQL-backed ledger of uploaded photo blobs.
package files

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/travelog/internal/dbx"
	"github.com/dmitrijs2005/travelog/internal/server/models"
)

// PostgresRepository implements file bookkeeping over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Record upserts the row for an uploaded blob by storage key.
func (r *PostgresRepository) Record(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (storage_key, url, size, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (storage_key)
		DO UPDATE SET
			url = EXCLUDED.url,
			size = EXCLUDED.size,
			status = EXCLUDED.status
	`
	status := file.Status
	if status == "" {
		status = models.FileStatusUploaded
	}
	if _, err := r.db.ExecContext(ctx, query, file.StorageKey, file.URL, file.Size, status); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// MarkOrphaned flags the blob at url as no longer referenced by any entry.
// Unknown URLs (uploads made before the ledger existed) are ignored.
func (r *PostgresRepository) MarkOrphaned(ctx context.Context, url string) error {
	query := `UPDATE files SET status = $2 WHERE url = $1`
	if _, err := r.db.ExecContext(ctx, query, url, models.FileStatusOrphaned); err != nil {
		return fmt.Errorf("failed to mark orphaned: %w", err)
	}
	return nil
}

// Forget drops the ledger row after the blob itself is gone.
func (r *PostgresRepository) Forget(ctx context.Context, url string) error {
	query := `DELETE FROM files WHERE url = $1`
	if _, err := r.db.ExecContext(ctx, query, url); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListOrphaned returns blobs whose deletion failed.
func (r *PostgresRepository) ListOrphaned(ctx context.Context) ([]*models.File, error) {
	query := `SELECT storage_key, url, size, status, created_at FROM files
		WHERE status = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, models.FileStatusOrphaned)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.StorageKey, &item.URL, &item.Size, &item.Status, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
