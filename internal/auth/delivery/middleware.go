package delivery

import (
	"errors"
	"strings"

	authdomain "todo-backend/internal/auth/domain"
	"todo-backend/internal/auth/guard"
	"todo-backend/internal/auth/usecase"
	"todo-backend/pkg/cookie"
	"todo-backend/pkg/logging"
	"todo-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserKey   = "user"
	ContextUserIDKey = "userID"
)

// SessionMiddleware resolves the request identity from the access token
// (cookie, then bearer header) or else the refresh token cookie. It never
// rejects a request: when nothing resolves, the handler runs without a user.
func SessionMiddleware(authUsecase usecase.AuthUsecase, cookies *cookie.Manager, log logging.Logger) gin.HandlerFunc {
	log = log.With("component", "session")

	return func(c *gin.Context) {
		accessToken := cookies.Get(c, cookie.AccessTokenName)
		if accessToken == "" {
			accessToken = bearerToken(c.GetHeader("Authorization"))
		}
		refreshToken := cookies.Get(c, cookie.RefreshTokenName)

		user, err := authUsecase.ResolveIdentity(c.Request.Context(), accessToken, refreshToken)
		if err != nil {
			if errors.Is(err, usecase.ErrNoCredentials) {
				log.Debug(c.Request.Context(), "anonymous request", "path", c.Request.URL.Path)
			} else {
				log.Warn(c.Request.Context(), "session not resolved", "path", c.Request.URL.Path, "error", err)
			}
			c.Next()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the identity resolved by SessionMiddleware, if any.
func CurrentUser(c *gin.Context) (*authdomain.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*authdomain.User)
	return user, ok && user != nil
}

// RequireAuth rejects requests that SessionMiddleware could not bind to a user.
func RequireAuth(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := CurrentUser(c)
		if _, err := guard.RequireIdentity(user); err != nil {
			response.Error(c, log, err)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
