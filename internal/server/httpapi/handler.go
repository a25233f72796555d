// Package httpapi exposes the REST interface of gophtasks on top of echo.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/labstack/echo/v4"
)

// Users is the account API the handlers depend on.
type Users interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.Token, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

// Tasks is the task API the handlers depend on.
type Tasks interface {
	Create(ctx context.Context, userID int64, description string) (*models.Task, error)
	List(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error)
	Get(ctx context.Context, userID, id int64) (*models.Task, error)
	Update(ctx context.Context, userID, id int64, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, userID, id int64) error
	AttachmentUploadURL(ctx context.Context, userID, id int64) (string, error)
	AttachmentDownloadURL(ctx context.Context, userID, id int64) (string, error)
}

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const (
	msgCredentials     = "Could not validate credentials"
	msgBadLogin        = "Incorrect username or password"
	msgUsernameTaken   = "Username already registered"
	msgTaskNotFound    = "Task not found"
	msgNotFound        = "Not found"
	msgInternal        = "Internal server error"
	msgInvalidBody     = "Invalid request body"
	msgWelcome         = "Welcome to Task Management System API"
	wwwAuthenticate    = "WWW-Authenticate"
	wwwAuthenticateVal = "Bearer"
)

type Handler struct {
	users  Users
	tasks  Tasks
	auth   Authenticator
	db     Pinger
	logger logging.Logger
}

func NewHandler(us Users, ts Tasks, a Authenticator, db Pinger, l logging.Logger) *Handler {
	return &Handler{users: us, tasks: ts, auth: a, db: db, logger: l.With("module", "http")}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.HandleRoot)
	e.GET("/healthz", h.HandleHealth)

	g := e.Group("/api/v1")
	g.POST("/register", h.HandleRegister)
	g.POST("/login", h.HandleLogin)

	protected := g.Group("")
	protected.Use(h.AuthMiddleware)
	protected.GET("/users/me", h.HandleMe)
	protected.DELETE("/users/me", h.HandleDeleteMe)
	protected.POST("/tasks", h.HandleCreateTask)
	protected.GET("/tasks", h.HandleListTasks)
	protected.GET("/tasks/:id", h.HandleGetTask)
	protected.PUT("/tasks/:id", h.HandleUpdateTask)
	protected.PATCH("/tasks/:id", h.HandleUpdateTask)
	protected.DELETE("/tasks/:id", h.HandleDeleteTask)
	protected.POST("/tasks/:id/attachment", h.HandleAttachmentUpload)
	protected.GET("/tasks/:id/attachment", h.HandleAttachmentDownload)
}

type credentials struct {
	Username  string `json:"username" form:"username"`
	Password  string `json:"password" form:"password"`
	GrantType string `json:"grant_type" form:"grant_type"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type taskRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type taskResponse struct {
	ID            int64  `json:"id"`
	Description   string `json:"description"`
	Completed     bool   `json:"completed"`
	UserID        int64  `json:"user_id"`
	HasAttachment bool   `json:"has_attachment"`
}

type detail struct {
	Detail string `json:"detail"`
}

func toTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:            t.ID,
		Description:   t.Description,
		Completed:     t.Completed,
		UserID:        t.UserID,
		HasAttachment: t.HasAttachment(),
	}
}

func (h *Handler) HandleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": msgWelcome})
}

func (h *Handler) HandleHealth(c echo.Context) error {
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		h.logger.Error(c.Request().Context(), "health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleRegister(c echo.Context) error {
	var body credentials
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, msgInvalidBody, err)
	}

	u, err := h.users.Register(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return h.Error(c, http.StatusBadRequest, msgUsernameTaken, nil)
		}
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, userResponse{ID: u.ID, Username: u.Username})
}

// HandleLogin accepts the OAuth2 password form as well as a JSON body.
func (h *Handler) HandleLogin(c echo.Context) error {
	var body credentials
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, msgInvalidBody, err)
	}

	tok, err := h.users.Login(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return h.unauthorized(c, msgBadLogin)
		}
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   int64(tok.ExpiresIn.Seconds()),
	})
}

func (h *Handler) HandleMe(c echo.Context) error {
	u := currentUser(c)
	return c.JSON(http.StatusOK, userResponse{ID: u.ID, Username: u.Username})
}

func (h *Handler) HandleDeleteMe(c echo.Context) error {
	u := currentUser(c)
	if err := h.users.DeleteAccount(c.Request().Context(), u.ID); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) HandleCreateTask(c echo.Context) error {
	var body taskRequest
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, msgInvalidBody, err)
	}
	if body.Description == nil {
		return h.Error(c, http.StatusUnprocessableEntity, "description is required", nil)
	}

	t, err := h.tasks.Create(c.Request().Context(), currentUser(c).ID, *body.Description)
	if err != nil {
		return h.failTask(c, err)
	}
	return c.JSON(http.StatusOK, toTaskResponse(t))
}

func (h *Handler) HandleListTasks(c echo.Context) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, "skip must be an integer", nil)
	}
	limit, err := queryInt(c, "limit", services.DefaultListLimit)
	if err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, "limit must be an integer", nil)
	}

	list, err := h.tasks.List(c.Request().Context(), currentUser(c).ID, skip, limit)
	if err != nil {
		return h.failTask(c, err)
	}

	out := make([]taskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTaskResponse(t))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) HandleGetTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, "task id must be an integer", nil)
	}

	t, err := h.tasks.Get(c.Request().Context(), currentUser(c).ID, id)
	if err != nil {
		return h.failTask(c, err)
	}
	return c.JSON(http.StatusOK, toTaskResponse(t))
}

func (h *Handler) HandleUpdateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, "task id must be an integer", nil)
	}

	var body taskRequest
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, msgInvalidBody, err)
	}

	upd := models.TaskUpdate{Description: body.Description, Completed: body.Completed}
	t, err := h.tasks.Update(c.Request().Context(), currentUser(c).ID, id, upd)
	if err != nil {
		return h.failTask(c, err)
	}
	return c.JSON(http.StatusOK, toTaskResponse(t))
}

func (h *Handler) HandleDeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, "task id must be an integer", nil)
	}

	if err := h.tasks.Delete(c.Request().Context(), currentUser(c).ID, id); err != nil {
		return h.failTask(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (h *Handler) HandleAttachmentUpload(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, "task id must be an integer", nil)
	}

	url, err := h.tasks.AttachmentUploadURL(c.Request().Context(), currentUser(c).ID, id)
	if err != nil {
		return h.failTask(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"upload_url": url, "method": http.MethodPut})
}

func (h *Handler) HandleAttachmentDownload(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return h.Error(c, http.StatusUnprocessableEntity, "task id must be an integer", nil)
	}

	url, err := h.tasks.AttachmentDownloadURL(c.Request().Context(), currentUser(c).ID, id)
	if err != nil {
		return h.failTask(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"download_url": url})
}

func taskID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// fail maps service errors to HTTP responses.
func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
		return h.Error(c, http.StatusUnprocessableEntity, msg, nil)
	case errors.Is(err, common.ErrorNotFound):
		return h.Error(c, http.StatusNotFound, msgNotFound, nil)
	case errors.Is(err, common.ErrorUnauthorized):
		return h.unauthorized(c, msgCredentials)
	case errors.Is(err, common.ErrorAlreadyExists):
		return h.Error(c, http.StatusConflict, "Already exists", nil)
	default:
		return h.Error(c, http.StatusInternalServerError, msgInternal, err)
	}
}

// failTask is fail for the task routes, where a missing row is a task.
func (h *Handler) failTask(c echo.Context, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return h.Error(c, http.StatusNotFound, msgTaskNotFound, nil)
	}
	return h.fail(c, err)
}

func (h *Handler) unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(wwwAuthenticate, wwwAuthenticateVal)
	return h.Error(c, http.StatusUnauthorized, msg, nil)
}

// Error writes {"detail": msg}. err, when given, is logged and never sent
// to the client.
func (h *Handler) Error(c echo.Context, code int, msg string, err error) error {
	if err != nil {
		h.logger.Error(c.Request().Context(), msg, "status", code, "error", err)
	}
	return c.JSON(code, detail{Detail: msg})
}
