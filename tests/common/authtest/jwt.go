//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"install-scheduler/internal/domain/user"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// JWTHelper signs tokens the way the storefront identity service does.
type JWTHelper struct {
	service *jwt.Service
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{service: jwt.NewService(cfg.Secret, cfg.Issuer)}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := h.service.Issue(userID, role, 15*time.Minute)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := h.service.Issue(userID, role, -time.Minute)
	require.NoError(t, err)
	return token
}

// Customer returns a fresh customer id and a token for it.
func (h *JWTHelper) Customer(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	return id, h.GenerateToken(t, id, user.RoleCustomer)
}

func (h *JWTHelper) Admin(t *testing.T) string {
	t.Helper()
	return h.GenerateToken(t, uuid.New(), user.RoleAdmin)
}
