package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/blobstore"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/repomanager"
)

// EntryService runs the Entry Store and Blob Store calls behind every
// journal action. It never reorders steps: uploads finish before documents
// are created, and blobs are deleted before their documents.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
}

func NewEntryService(db *sql.DB, repomanager repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: repomanager,
		blobs:       blobs,
		logger:      logger,
	}
}

func (s *EntryService) List(ctx context.Context) ([]*models.Entry, error) {
	return s.repomanager.Entries(s.db).List(ctx)
}

func (s *EntryService) Get(ctx context.Context, id string) (*models.Entry, error) {
	return s.repomanager.Entries(s.db).Get(ctx, id)
}

// Create uploads the photo and then creates the document pointing at it.
// No document is created when the upload fails.
func (s *EntryService) Create(ctx context.Context, draft models.Entry, up blobstore.Upload) (*models.Entry, error) {
	obj, err := s.blobs.Put(ctx, up)
	if err != nil {
		s.logger.Error(ctx, "photo upload failed", "name", up.Name, "err", err)
		return nil, fmt.Errorf("error uploading photo: %w", err)
	}

	fileRepo := s.repomanager.Files(s.db)
	if err := fileRepo.Record(ctx, &models.File{StorageKey: obj.Key, URL: obj.URL, Size: obj.Size}); err != nil {
		s.logger.Warn(ctx, "could not record uploaded file", "key", obj.Key, "err", err)
	}

	draft.ID = ""
	draft.PhotoURL = obj.URL
	draft.IsDeleted = false
	draft.Comments = []models.Comment{}

	entry, err := s.repomanager.Entries(s.db).Create(ctx, &draft)
	if err != nil {
		s.discardBlob(ctx, obj.URL)
		return nil, fmt.Errorf("error creating entry: %w", err)
	}
	s.logger.Info(ctx, "entry created", "id", entry.ID, "author", entry.Author)
	return entry, nil
}

func (s *EntryService) Update(ctx context.Context, id string, patch models.EntryPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if err := s.repomanager.Entries(s.db).Update(ctx, id, patch); err != nil {
		return fmt.Errorf("error updating entry: %w", err)
	}
	return nil
}

// SetDeleted moves an entry to the trash (true) or back (false). The photo
// is left alone.
func (s *EntryService) SetDeleted(ctx context.Context, id string, deleted bool) error {
	if err := s.repomanager.Entries(s.db).SetDeleted(ctx, id, deleted); err != nil {
		return fmt.Errorf("error setting deleted=%t: %w", deleted, err)
	}
	return nil
}

// PermanentlyDelete removes the photo and then the document. A failed photo
// delete is logged and recorded as an orphan; the document is deleted anyway.
func (s *EntryService) PermanentlyDelete(ctx context.Context, id, photoURL string) error {
	if photoURL != "" {
		s.discardBlob(ctx, photoURL)
	}
	if err := s.repomanager.Entries(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}
	s.logger.Info(ctx, "entry permanently deleted", "id", id)
	return nil
}

func (s *EntryService) AppendComment(ctx context.Context, id string, c models.Comment) error {
	if err := s.repomanager.Entries(s.db).AppendComment(ctx, id, c); err != nil {
		return fmt.Errorf("error appending comment: %w", err)
	}
	return nil
}

// Orphans lists blobs that outlived their documents.
func (s *EntryService) Orphans(ctx context.Context) ([]*models.File, error) {
	return s.repomanager.Files(s.db).ListOrphaned(ctx)
}

func (s *EntryService) discardBlob(ctx context.Context, url string) {
	fileRepo := s.repomanager.Files(s.db)
	if err := s.blobs.Delete(ctx, url); err != nil {
		s.logger.Warn(ctx, "photo delete failed, blob orphaned", "url", url, "err", err)
		if err := fileRepo.MarkOrphaned(ctx, url); err != nil {
			s.logger.Warn(ctx, "could not mark file orphaned", "url", url, "err", err)
		}
		return
	}
	if err := fileRepo.Forget(ctx, url); err != nil {
		s.logger.Warn(ctx, "could not forget deleted file", "url", url, "err", err)
	}
}
