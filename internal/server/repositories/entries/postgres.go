// Package entries provides the PostgreSQL-backed Entry Store.
package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/dbx"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// invalidTextRepresentation is returned by PostgreSQL for a malformed UUID.
const invalidTextRepresentation = "22P02"

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, location, date, comment, photo_url, author, is_deleted, comments, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var (
		item     models.Entry
		comments []byte
	)
	if err := s.Scan(&item.ID, &item.Location, &item.Date, &item.Comment, &item.PhotoURL,
		&item.Author, &item.IsDeleted, &comments, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.Comments = []models.Comment{}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &item.Comments); err != nil {
			return nil, fmt.Errorf("decode comments: %w", err)
		}
	}
	return &item, nil
}

// List returns every entry, deleted or not, ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM entries ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := []*models.Entry{}
	for rows.Next() {
		item, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns one entry or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM entries WHERE id = $1`

	item, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

// Create inserts a new entry. Comments start empty unless provided.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO entries (location, date, comment, photo_url, author, is_deleted, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	if entry.Comments == nil {
		entry.Comments = []models.Comment{}
	}
	comments, err := json.Marshal(entry.Comments)
	if err != nil {
		return nil, fmt.Errorf("encode comments: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		entry.Location, entry.Date, entry.Comment, entry.PhotoURL, entry.Author, entry.IsDeleted, comments,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// Update changes the non-nil fields of patch. photo_url is never touched.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.EntryPatch) error {
	query := `
		UPDATE entries SET
			location = COALESCE($2, location),
			date = COALESCE($3, date),
			comment = COALESCE($4, comment)
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, optional(patch.Location), optional(patch.Date), optional(patch.Comment))
}

// SetDeleted moves an entry between the active and the trash partition.
func (r *PostgresRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	query := `UPDATE entries SET is_deleted = $2 WHERE id = $1`
	return r.execOne(ctx, query, id, deleted)
}

// Delete removes the entry for good.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM entries WHERE id = $1`
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) AppendComment(ctx context.Context, id string, c models.Comment) error {
	query := `UPDATE entries SET comments = comments || $2::jsonb WHERE id = $1`

	payload, err := json.Marshal([]models.Comment{c})
	if err != nil {
		return fmt.Errorf("encode comment: %w", err)
	}
	return r.execOne(ctx, query, id, payload)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
