// Package session holds the per-request authentication view and the
// registry that keeps it in step with identity changes.
package session

import (
	"context"

	"github.com/dmitrijs2005/travelog/internal/common"
)

// State is what every view reads: whether someone is logged in and the
// name comments and entries are attributed to. The zero value is logged out.
type State struct {
	LoggedIn bool   `json:"isLoggedIn"`
	UserID   string `json:"-"`
	UserName string `json:"userName,omitempty"`
}

// Anonymous is the logged-out state.
var Anonymous = State{}

// Author returns the display name to stamp on content, or the anonymous
// sentinel when there is none.
func (s State) Author() string {
	if s.LoggedIn && s.UserName != "" {
		return s.UserName
	}
	return common.AnonymousAuthor
}

// RequireLogin returns common.ErrNotAuthenticated for a logged-out state.
func (s State) RequireLogin() error {
	if !s.LoggedIn {
		return common.ErrNotAuthenticated
	}
	return nil
}

type ctxKey struct{}

// WithState returns a copy of ctx carrying s.
func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the state stored by WithState, or Anonymous.
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(ctxKey{}).(State); ok {
		return s
	}
	return Anonymous
}
