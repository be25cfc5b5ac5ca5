// Package journal holds the view controllers of the travel journal: the
// entry list with its trash partition and search, the comment overlay, and
// the creation and edit forms. Controllers are per request; every one of
// them is handed the caller's session.State explicitly.
package journal

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/server/blobstore"
	"github.com/dmitrijs2005/travelog/internal/server/models"
)

// Store is what the controllers need from the entry service.
type Store interface {
	List(ctx context.Context) ([]*models.Entry, error)
	Get(ctx context.Context, id string) (*models.Entry, error)
	Create(ctx context.Context, draft models.Entry, up blobstore.Upload) (*models.Entry, error)
	Update(ctx context.Context, id string, patch models.EntryPatch) error
	SetDeleted(ctx context.Context, id string, deleted bool) error
	PermanentlyDelete(ctx context.Context, id, photoURL string) error
	AppendComment(ctx context.Context, id string, c models.Comment) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Confirmed is a Confirmer whose answer is already known, e.g. from a
// confirm=true request parameter.
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) bool { return bool(c) }

// Prompts shown before destructive actions.
const (
	PromptSoftDelete        = "Move this entry to the trash?"
	PromptRestore           = "Restore this entry?"
	PromptPermanentlyDelete = "Delete this entry forever? This cannot be undone."
)

func confirm(ctx context.Context, c Confirmer, prompt string) error {
	if c == nil || !c.Confirm(ctx, prompt) {
		return common.ErrNotConfirmed
	}
	return nil
}

// Notice returns the user-facing message for err. Failures that are not
// validation errors get a generic message.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Please log in first."
	case errors.Is(err, common.ErrPhotoRequired):
		return "Please choose a photo."
	case errors.Is(err, common.ErrEmptyComment):
		return "Please enter a comment."
	case errors.Is(err, common.ErrNotConfirmed):
		return "Action cancelled."
	case errors.Is(err, common.ErrPasswordTooShort):
		return "Password is too short."
	case errors.Is(err, common.ErrInvalidEmail):
		return "Please enter a valid email."
	case errors.Is(err, common.ErrEmptyDisplayName):
		return "Please enter a display name."
	case errors.Is(err, common.ErrorNotFound):
		return "Entry not found."
	default:
		return "Something went wrong. Please try again."
	}
}
