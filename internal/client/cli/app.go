package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/client/services"
	"github.com/dmitrijs2005/gophtasks/internal/filex"
)

type App struct {
	config      *config.Config
	db          *sql.DB
	authService services.AuthService
	taskService services.TaskService
	userName    string
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp opens the session database and connects to the server. The gRPC
// connection is lazy, so an unreachable server is reported by the first call.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := filex.EnsureParentDir(c.SessionDBPath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, db, services.NewAuthService(apiClient, db), services.NewTaskService(apiClient), os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, db *sql.DB, as services.AuthService, ts services.TaskService, in io.Reader, out io.Writer) *App {
	return &App{
		config:      c,
		db:          db,
		authService: as,
		taskService: ts,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) status() string {
	if a.userName == "" {
		return ""
	}
	return " (" + a.userName + ")"
}

// withTimeout bounds one server round trip.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// Run restores a stored session, if any, and serves the REPL until exit or
// end of input.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	fmt.Fprintln(a.out, "Welcome to gophtasks CLI (type 'help' for commands)")

	name, err := a.authService.Restore(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", describe(err))
	}
	if name != "" {
		a.userName = name
		fmt.Fprintf(a.out, "Logged in as %s\n", name)
	}

	runREPL(ctx, a, a.status, a.reader, a.out)
	return nil
}

func (a *App) close() {
	_ = a.authService.Close()
	if a.db != nil {
		_ = a.db.Close()
	}
}
