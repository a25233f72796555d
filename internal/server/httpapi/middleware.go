package httpapi

import (
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const userKey = "user"

// AuthMiddleware resolves the bearer token and stores the user in the
// echo context. Every failure looks the same to the client.
func (h *Handler) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := auth.ParseBearer(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return h.unauthorized(c, msgCredentials)
		}

		user, err := h.auth.Resolve(c.Request().Context(), token)
		if err != nil {
			return h.fail(c, err)
		}

		c.Set(userKey, user)
		return next(c)
	}
}

func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

// RequestLogger logs one line per request and tags the response with a
// request id, reusing the caller's X-Request-ID when present.
func RequestLogger(l logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			if err := next(c); err != nil {
				c.Error(err)
			}

			l.Info(c.Request().Context(), "http request",
				"request_id", rid,
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"duration", time.Since(start),
			)
			return nil
		}
	}
}
