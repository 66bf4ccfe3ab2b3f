package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/schoolhub/internal/actorctx"
	"github.com/geocoder89/schoolhub/internal/auth"
	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type AccessGuard interface {
	ResolveCurrentUser(ctx context.Context, token string) (user.User, error)
	RequireRole(u user.User, allowed ...user.Role) error
}

type AuthMiddleware struct {
	guard AccessGuard
	log   *slog.Logger
}

func NewAuthMiddleware(guard AccessGuard, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{guard: guard, log: log}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthenticated(c, "Missing or invalid Authorization header")
			return
		}

		u, err := m.guard.ResolveCurrentUser(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				abortUnauthenticated(c, "Could not validate credentials")
				return
			}

			m.log.ErrorContext(c.Request.Context(), "resolve current user failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":      "internal_error",
					"message":   "Could not validate credentials",
					"requestId": c.GetString(CtxRequestID),
				},
			})
			return
		}

		// Stash the identity for handlers and the actor for log lines
		c.Set(ctxUserKey, u)
		c.Request = c.Request.WithContext(actorctx.WithUsername(c.Request.Context(), u.Username))

		c.Next()
	}
}

// CurrentUser returns the user RequireAuth resolved for this request.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

// bearerToken accepts any casing of the scheme, as RFC 6750 allows.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":      "unauthorized",
			"message":   message,
			"requestId": c.GetString(CtxRequestID),
		},
	})
}
