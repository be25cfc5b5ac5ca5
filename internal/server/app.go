// Package server wires the travelog server together: configuration, the
// PostgreSQL store and its migrations, the S3 photo store, the identity
// event bus, and the HTTP and gRPC endpoints. It also handles graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/blobstore"
	"github.com/dmitrijs2005/travelog/internal/server/config"
	"github.com/dmitrijs2005/travelog/internal/server/httpapi"
	"github.com/dmitrijs2005/travelog/internal/server/identity"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/travelog/internal/server/services"
	"github.com/dmitrijs2005/travelog/internal/server/session"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/travelog/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	bus          *identity.Bus
	sessions     *session.Registry
	userService  *services.UserService
	entryService *services.EntryService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	blobs, err := blobstore.NewS3Store(ctx, blobstore.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
		PublicURL:    c.S3PublicURL,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("blob store bucket error: %w", err)
	}

	bus := identity.NewBus(logger)

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		bus:          bus,
		sessions:     session.NewRegistry(logger.With("module", "session")),
		userService:  services.NewUserService(db, rm, bus, logger.With("module", "users"), c),
		entryService: services.NewEntryService(db, rm, blobs, logger.With("module", "entries")),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db, app.sessions, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	if !strings.EqualFold(app.config.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpapi.NewRouter(app.entryService, app.userService, app.sessions,
		app.logger.With("module", "http_server"), httpapi.Options{
			Secret:        []byte(app.config.SecretKey),
			MaxUploadSize: app.config.MaxUploadSize,
			AccessTTL:     app.config.AccessTokenValidityDuration,
			SecureCookie:  app.config.SecureCookie,
		})

	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown error", "err", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	unfollow, err := app.sessions.Follow(ctx, app.userService)
	if err != nil {
		app.logger.Error(ctx, "identity subscription failed", "err", err)
		return
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	unfollow()
	if err := app.bus.Close(); err != nil {
		app.logger.Error(ctx, "closing identity bus", "err", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "err", err)
	}
	app.logger.Info(ctx, "App stopped")
}
