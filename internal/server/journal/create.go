package journal

import (
	"context"
	"sync/atomic"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/blobstore"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/session"
)

// CreationForm collects a new entry and its photo.
type CreationForm struct {
	store  Store
	state  session.State
	logger logging.Logger

	Location string
	Date     string
	Comment  string
	Photo    *blobstore.Upload

	sent, total atomic.Int64
	onProgress  blobstore.ProgressFunc
}

func NewCreationForm(store Store, state session.State, logger logging.Logger) *CreationForm {
	return &CreationForm{store: store, state: state, logger: logger}
}

// Enabled reports whether the form accepts input at all.
func (f *CreationForm) Enabled() bool { return f.state.LoggedIn }

// OnProgress registers an observer for the photo upload.
func (f *CreationForm) OnProgress(fn blobstore.ProgressFunc) { f.onProgress = fn }

// Progress returns the last observed upload progress.
func (f *CreationForm) Progress() (sent, total int64) { return f.sent.Load(), f.total.Load() }

// Submit uploads the photo and then creates the entry. It is rejected with
// no side effects when logged out or without a photo. On success the form
// is reset.
func (f *CreationForm) Submit(ctx context.Context) (*models.Entry, error) {
	if err := f.state.RequireLogin(); err != nil {
		return nil, err
	}
	if f.Photo == nil || f.Photo.Body == nil {
		return nil, common.ErrPhotoRequired
	}

	up := *f.Photo
	up.Progress = func(sent, total int64) {
		f.sent.Store(sent)
		f.total.Store(total)
		if f.onProgress != nil {
			f.onProgress(sent, total)
		}
	}

	entry, err := f.store.Create(ctx, models.Entry{
		Location: f.Location,
		Date:     f.Date,
		Comment:  f.Comment,
		Author:   f.state.Author(),
	}, up)
	if err != nil {
		f.logger.Error(ctx, "entry creation failed", "err", err)
		return nil, err
	}

	f.Reset()
	return entry, nil
}

// Reset empties every field and deselects the photo.
func (f *CreationForm) Reset() {
	f.Location, f.Date, f.Comment = "", "", ""
	f.Photo = nil
}
