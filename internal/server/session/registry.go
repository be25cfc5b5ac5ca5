package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/identity"
)

// Registry tracks the latest identity change per user. It is the only
// writer of session state; HTTP requests read from it through Resolve.
type Registry struct {
	mu        sync.RWMutex
	known     map[string]State
	revoked   map[string]time.Time
	observers map[int]func(State)
	nextID    int
	now       func() time.Time
	logger    logging.Logger
}

func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{
		known:     make(map[string]State),
		revoked:   make(map[string]time.Time),
		observers: make(map[int]func(State)),
		now:       time.Now,
		logger:    logger,
	}
}

// Follow subscribes the registry to src. The returned function releases
// the subscription and must be called once on shutdown.
func (r *Registry) Follow(ctx context.Context, src identity.Subscriber) (func(), error) {
	return src.Subscribe(ctx, func(c identity.Change) {
		r.Apply(ctx, c)
	})
}

// Apply records c and notifies observers. A sign-out also revokes every
// access token of the user issued before it.
func (r *Registry) Apply(ctx context.Context, c identity.Change) {
	s := State{LoggedIn: c.LoggedIn(), UserID: c.UserID}
	if s.LoggedIn {
		s.UserName = c.DisplayName
	}

	r.mu.Lock()
	r.known[c.UserID] = s
	if c.Kind == identity.SignedOut {
		// Tokens carry millisecond issue times.
		r.revoked[c.UserID] = r.now().Truncate(time.Millisecond)
	}
	observers := make([]func(State), 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	r.mu.Unlock()

	r.logger.Debug(ctx, "identity change applied", "user_id", c.UserID, "kind", string(c.Kind))

	for _, fn := range observers {
		fn(s)
	}
}

// Lookup returns the last recorded state of userID.
func (r *Registry) Lookup(userID string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.known[userID]
	return s, ok
}

// Resolve turns verified token claims into the request's State. A token
// issued before the user's last sign-out is logged out even after a later
// sign-in; a newer display name wins over the one in the token.
func (r *Registry) Resolve(userID, tokenName string, issuedAt time.Time) State {
	if userID == "" {
		return Anonymous
	}

	r.mu.RLock()
	s, ok := r.known[userID]
	revokedAt, revoked := r.revoked[userID]
	r.mu.RUnlock()

	if revoked && issuedAt.Before(revokedAt) {
		return Anonymous
	}
	if !ok {
		return State{LoggedIn: true, UserID: userID, UserName: tokenName}
	}
	if !s.LoggedIn {
		return Anonymous
	}
	return s
}

// Subscribe registers fn for every applied change.
func (r *Registry) Subscribe(fn func(State)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.observers[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.observers, id)
			r.mu.Unlock()
		})
	}
}
