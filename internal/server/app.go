// Package server wires the gophtasks server together: database and
// migrations, services, the attachment store, and the HTTP and gRPC
// endpoints, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/httpapi"
	"github.com/dmitrijs2005/gophtasks/internal/server/password"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/dmitrijs2005/gophtasks/internal/server/storage"

	gs "github.com/dmitrijs2005/gophtasks/internal/server/grpc"
)

// test seams
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newPresigner         = func(ctx context.Context, cfg storage.S3Config) (storage.Presigner, error) {
		return storage.NewS3Presigner(ctx, cfg)
	}
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	resolver    *auth.Resolver
	userService *services.UserService
	taskService *services.TaskService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	tokens, err := auth.NewTokenManager(c.TokenConfig())
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	presigner, err := newPresigner(ctx, storage.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("attachment store: %w", err)
	}

	us, err := services.NewUserService(db, rm, password.NewHasher(c.BcryptCost), tokens, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	ts := services.NewTaskService(db, rm, presigner, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		resolver:    auth.NewResolver(tokens, us),
		userService: us,
		taskService: ts,
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

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.taskService, app.resolver)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	h := httpapi.NewHandler(app.userService, app.taskService, app.resolver, app.db, app.logger)
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, h, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives or either server fails, then closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

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

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
