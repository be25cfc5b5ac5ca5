package journal

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/session"
	"github.com/dmitrijs2005/travelog/internal/timex"
)

// Reloader is implemented by ListController.
type Reloader interface {
	Load(ctx context.Context) error
}

// Overlay shows one entry with its comment thread and accepts new comments.
type Overlay struct {
	store  Store
	list   Reloader
	state  session.State
	logger logging.Logger
	now    func() time.Time

	open  bool
	entry *models.Entry
	input string
}

// NewOverlay creates a closed overlay. list may be nil when no list view
// needs to be refreshed.
func NewOverlay(store Store, list Reloader, state session.State, logger logging.Logger) *Overlay {
	return &Overlay{store: store, list: list, state: state, logger: logger, now: time.Now}
}

// Open shows entry. The overlay works on its own copy of the comments.
func (o *Overlay) Open(entry *models.Entry) {
	cp := *entry
	cp.Comments = append([]models.Comment{}, entry.Comments...)
	o.entry = &cp
	o.open = true
}

// Close hides the overlay and drops pending input.
func (o *Overlay) Close() {
	o.open = false
	o.entry = nil
	o.input = ""
}

func (o *Overlay) IsOpen() bool         { return o.open }
func (o *Overlay) Entry() *models.Entry { return o.entry }
func (o *Overlay) SetInput(text string) { o.input = text }
func (o *Overlay) Input() string        { return o.input }

// AddComment appends the pending input to the open entry. The new comment
// shows up in Entry right away and is taken back out if the store rejects
// it. On success the input is cleared and the list reloads.
func (o *Overlay) AddComment(ctx context.Context) error {
	if !o.open {
		return common.ErrorNotFound
	}
	text := strings.TrimSpace(o.input)
	if text == "" {
		return common.ErrEmptyComment
	}
	if err := o.state.RequireLogin(); err != nil {
		return err
	}

	c := models.Comment{
		Text:      text,
		Author:    o.state.Author(),
		CreatedAt: timex.Today(o.now),
	}

	n := len(o.entry.Comments)
	o.entry.Comments = append(o.entry.Comments, c)

	if err := o.store.AppendComment(ctx, o.entry.ID, c); err != nil {
		o.entry.Comments = o.entry.Comments[:n:n]
		o.logger.Error(ctx, "adding comment failed", "id", o.entry.ID, "err", err)
		return err
	}

	o.input = ""
	if o.list != nil {
		return o.list.Load(ctx)
	}
	return nil
}
