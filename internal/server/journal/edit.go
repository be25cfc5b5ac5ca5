package journal

import (
	"context"

	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/session"
)

// EditForm loads one entry and writes back location, date and comment.
// The photo, author, comments and trash flag are never changed here.
type EditForm struct {
	store  Store
	state  session.State
	logger logging.Logger

	ID       string
	Location string
	Date     string
	Comment  string
	PhotoURL string
}

func NewEditForm(store Store, state session.State, logger logging.Logger) *EditForm {
	return &EditForm{store: store, state: state, logger: logger}
}

// Load fills the form from the stored entry.
func (f *EditForm) Load(ctx context.Context, id string) (*models.Entry, error) {
	e, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.ID, f.Location, f.Date, f.Comment, f.PhotoURL = e.ID, e.Location, e.Date, e.Comment, e.PhotoURL
	return e, nil
}

// Submit saves the editable fields.
func (f *EditForm) Submit(ctx context.Context) error {
	if err := f.state.RequireLogin(); err != nil {
		return err
	}
	err := f.store.Update(ctx, f.ID, models.EntryPatch{
		Location: &f.Location,
		Date:     &f.Date,
		Comment:  &f.Comment,
	})
	if err != nil {
		f.logger.Error(ctx, "entry update failed", "id", f.ID, "err", err)
		return err
	}
	return nil
}
