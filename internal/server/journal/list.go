package journal

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/session"
)

// ViewMode selects how the list is rendered. It has no effect on data.
type ViewMode string

const (
	ViewGallery ViewMode = "gallery"
	ViewList    ViewMode = "list"
)

// ParseViewMode returns ViewList for "list" and ViewGallery otherwise.
func ParseViewMode(s string) ViewMode {
	if strings.EqualFold(s, string(ViewList)) {
		return ViewList
	}
	return ViewGallery
}

// ListController loads the whole collection, splits it into the active and
// trash partitions and filters the shown partition by a search term.
type ListController struct {
	store  Store
	state  session.State
	logger logging.Logger

	active []*models.Entry
	trash  []*models.Entry

	showTrash  bool
	term       string
	mode       ViewMode
	sortByDate bool
}

// NewListController builds a controller and performs the initial load.
func NewListController(ctx context.Context, store Store, state session.State, logger logging.Logger) (*ListController, error) {
	lc := &ListController{store: store, state: state, logger: logger, mode: ViewGallery}
	if err := lc.Load(ctx); err != nil {
		return nil, err
	}
	return lc, nil
}

// Load replaces both partitions with a fresh read of the store.
func (lc *ListController) Load(ctx context.Context) error {
	all, err := lc.store.List(ctx)
	if err != nil {
		lc.logger.Error(ctx, "loading entries failed", "err", err)
		return fmt.Errorf("error loading entries: %w", err)
	}
	active := make([]*models.Entry, 0, len(all))
	trash := make([]*models.Entry, 0)
	for _, e := range all {
		if e.IsDeleted {
			trash = append(trash, e)
		} else {
			active = append(active, e)
		}
	}
	lc.active, lc.trash = active, trash
	return nil
}

func (lc *ListController) SetSearchTerm(term string) { lc.term = term }
func (lc *ListController) SearchTerm() string        { return lc.term }

func (lc *ListController) ToggleTrashView()        { lc.showTrash = !lc.showTrash }
func (lc *ListController) ShowTrash(show bool)     { lc.showTrash = show }
func (lc *ListController) ShowingTrash() bool      { return lc.showTrash }
func (lc *ListController) SetViewMode(m ViewMode)  { lc.mode = m }
func (lc *ListController) ViewMode() ViewMode      { return lc.mode }
func (lc *ListController) SortByDate(on bool)      { lc.sortByDate = on }
func (lc *ListController) Active() []*models.Entry { return lc.active }
func (lc *ListController) Trash() []*models.Entry  { return lc.trash }

func (lc *ListController) partition() []*models.Entry {
	if lc.showTrash {
		return lc.trash
	}
	return lc.active
}

// Visible returns the shown partition filtered by the search term. The
// match is a case-insensitive substring test on location or comment.
func (lc *ListController) Visible() []*models.Entry {
	term := strings.ToLower(lc.term)
	out := make([]*models.Entry, 0, len(lc.partition()))
	for _, e := range lc.partition() {
		if term == "" ||
			strings.Contains(strings.ToLower(e.Location), term) ||
			strings.Contains(strings.ToLower(e.Comment), term) {
			out = append(out, e)
		}
	}
	if lc.sortByDate {
		slices.SortStableFunc(out, func(a, b *models.Entry) int {
			return strings.Compare(b.Date, a.Date)
		})
	}
	return out
}

// NoResults reports whether nothing is shown.
func (lc *ListController) NoResults() bool {
	return len(lc.Visible()) == 0
}

// Find looks id up in both partitions.
func (lc *ListController) Find(id string) *models.Entry {
	for _, p := range [][]*models.Entry{lc.active, lc.trash} {
		for _, e := range p {
			if e.ID == id {
				return e
			}
		}
	}
	return nil
}

// SoftDelete moves id to the trash and reloads. The photo stays.
func (lc *ListController) SoftDelete(ctx context.Context, id string, c Confirmer) error {
	if err := lc.state.RequireLogin(); err != nil {
		return err
	}
	if err := confirm(ctx, c, PromptSoftDelete); err != nil {
		return err
	}
	if err := lc.store.SetDeleted(ctx, id, true); err != nil {
		lc.logger.Error(ctx, "soft delete failed", "id", id, "err", err)
		return err
	}
	return lc.Load(ctx)
}

// Restore moves id back to the active partition and reloads.
func (lc *ListController) Restore(ctx context.Context, id string, c Confirmer) error {
	if err := lc.state.RequireLogin(); err != nil {
		return err
	}
	if err := confirm(ctx, c, PromptRestore); err != nil {
		return err
	}
	if err := lc.store.SetDeleted(ctx, id, false); err != nil {
		lc.logger.Error(ctx, "restore failed", "id", id, "err", err)
		return err
	}
	return lc.Load(ctx)
}

// PermanentlyDelete removes the photo at photoURL and the document, then
// reloads. A failing photo delete does not stop the document delete.
func (lc *ListController) PermanentlyDelete(ctx context.Context, id, photoURL string, c Confirmer) error {
	if err := lc.state.RequireLogin(); err != nil {
		return err
	}
	if err := confirm(ctx, c, PromptPermanentlyDelete); err != nil {
		return err
	}
	if err := lc.store.PermanentlyDelete(ctx, id, photoURL); err != nil {
		lc.logger.Error(ctx, "permanent delete failed", "id", id, "err", err)
		return err
	}
	return lc.Load(ctx)
}
