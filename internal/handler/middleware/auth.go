package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"install-scheduler/internal/domain/user"
	"install-scheduler/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingToken = errors.New("access token required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenValidator resolves a bearer token issued by the storefront identity provider.
type TokenValidator interface {
	Authenticate(token string) (user.Requester, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
}

const ctxRequesterKey = "requester"

func NewAuthMiddleware(tokenValidator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, ErrMissingToken, "Access token required", nil)
			return
		}

		requester, err := m.tokenValidator.Authenticate(token)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "token rejected", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, errors.Join(ErrInvalidToken, err), "Invalid or expired token", nil)
			return
		}

		c.Set(ctxRequesterKey, requester)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := GetRequester(c)
		if !ok {
			httperr.AbortWithError(c, http.StatusUnauthorized, ErrMissingToken, "Access token required", nil)
			return
		}
		for _, r := range roles {
			if requester.Role == r {
				c.Next()
				return
			}
		}
		httperr.AbortWithError(c, http.StatusForbidden, errors.New("role "+requester.Role.String()+" not allowed"), "Insufficient permissions", nil)
	}
}

func GetRequester(c *gin.Context) (user.Requester, bool) {
	v, exists := c.Get(ctxRequesterKey)
	if !exists {
		return user.Requester{}, false
	}
	r, ok := v.(user.Requester)
	return r, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}
