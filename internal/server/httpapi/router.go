// Package httpapi exposes the travel journal over HTTP with gin. Handlers
// build a journal controller per request, handing it the caller's session.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/journal"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// EntryService is the entry store plus the orphaned photo ledger.
type EntryService interface {
	journal.Store
	Orphans(ctx context.Context) ([]*models.File, error)
}

// UserService is the identity provider.
type UserService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*services.TokenPair, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, error)
	SignOut(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	UpdateDisplayName(ctx context.Context, userID, name string) error
}

// Options tunes the router.
type Options struct {
	Secret        []byte
	MaxUploadSize int64
	AccessTTL     time.Duration
	SecureCookie  bool
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(entries EntryService, users UserService, sessions SessionResolver,
	logger logging.Logger, opts Options) *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery(), requestLogger(logger), cors.Default(),
		sessionMiddleware(opts.Secret, sessions, logger))
	e.SetHTMLTemplate(loadTemplates())

	root := e.Group("/")
	registerHome(root)
	registerPhotos(root, entries, logger)
	registerTour(root, entries, logger, opts.MaxUploadSize)
	registerEdit(root, entries, logger)
	registerLogin(root, users, logger, opts)
	return e
}
