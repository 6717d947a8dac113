package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voxdesk-app/voxdesk/errors"
	"github.com/voxdesk-app/voxdesk/pkg/jwt"
)

// tenantIDKey is the echo context key the middleware stores the
// authenticated tenant (owner user) id under.
const tenantIDKey = "tenant_id"

// AuthMiddleware resolves the tenant identity from the access token.
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *jwt.Manager, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Authenticate validates the JWT and stores the tenant id in the request
// context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c.Request())
		if token == "" {
			return respondAppError(c, errors.ErrUnauthenticated())
		}

		claims, err := m.jwtManager.ValidateAccessToken(token)
		if err != nil {
			m.logger.Warn("rejected access token",
				zap.String("path", c.Path()),
				zap.Error(err))
			return respondAppError(c, errors.ErrInvalidToken())
		}

		c.Set(tenantIDKey, claims.UserID)
		return next(c)
	}
}

// TenantID returns the authenticated tenant id stored by Authenticate.
func TenantID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(tenantIDKey).(uuid.UUID)
	return id, ok
}

// extractToken reads the bearer token from the Authorization header, with
// the access_token cookie as fallback for browser sessions.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	cookie, err := r.Cookie("access_token")
	if err == nil {
		return cookie.Value
	}
	return ""
}

func respondAppError(c echo.Context, appErr errors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
