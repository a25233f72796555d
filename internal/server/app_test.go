package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophtasks/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubManager struct {
	migrateErr error
}

func (m *stubManager) RunMigrations(context.Context, *sql.DB) error { return m.migrateErr }
func (m *stubManager) Users(db dbx.DBTX) users.Repository           { return users.NewPostgresRepository(db) }
func (m *stubManager) Tasks(db dbx.DBTX) tasks.Repository           { return tasks.NewPostgresRepository(db) }

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.BcryptCost = 4
	c.LogLevel = "error"
	return c
}

func withSeams(t *testing.T, rm repomanager.RepositoryManager) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	origOpen, origRM := openDB, newRepositoryManager
	t.Cleanup(func() {
		openDB, newRepositoryManager = origOpen, origRM
	})

	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
	return mock
}

func TestNewApp_Success(t *testing.T) {
	withSeams(t, &stubManager{})

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	assert.NotNil(t, app.userService)
	assert.NotNil(t, app.taskService)
	assert.NotNil(t, app.resolver)
}

func TestNewApp_MigrationError(t *testing.T) {
	mock := withSeams(t, &stubManager{migrateErr: errors.New("boom")})
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations")
}

func TestNewApp_BadTokenConfig(t *testing.T) {
	c := testConfig()
	c.TokenAlgorithm = "RS256"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestNewApp_PresignerError(t *testing.T) {
	mock := withSeams(t, &stubManager{})
	mock.ExpectClose()

	orig := newPresigner
	t.Cleanup(func() { newPresigner = orig })
	newPresigner = func(context.Context, storage.S3Config) (storage.Presigner, error) {
		return nil, errors.New("no store")
	}

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attachment store")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	mock := withSeams(t, &stubManager{})
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
