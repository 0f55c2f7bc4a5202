//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"install-scheduler/internal/domain/user"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims gojwt.Claims) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	svc := jwt.NewService(secret, "storefront")
	techID := uuid.New()

	t.Run("success: issued token resolves to the requester", func(t *testing.T) {
		token, err := svc.Issue(techID, user.RoleTechnician, time.Minute)
		require.NoError(t, err)

		got, err := svc.Authenticate(token)
		require.NoError(t, err)
		assert.Equal(t, user.Requester{ID: techID, Role: user.RoleTechnician}, got)
	})

	t.Run("success: subject is used when user_id is absent", func(t *testing.T) {
		token := sign(t, gojwt.MapClaims{
			"sub":  techID.String(),
			"role": "admin",
			"iss":  "storefront",
			"exp":  time.Now().Add(time.Minute).Unix(),
		})

		got, err := svc.Authenticate(token)
		require.NoError(t, err)
		assert.Equal(t, techID, got.ID)
		assert.True(t, got.IsAdmin())
	})

	expired, err := svc.Issue(techID, user.RoleCustomer, -time.Hour)
	require.NoError(t, err)
	foreign, err := jwt.NewService("other-secret", "storefront").Issue(techID, user.RoleCustomer, time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := jwt.NewService(secret, "elsewhere").Issue(techID, user.RoleCustomer, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "expired", token: expired, want: jwt.ErrExpiredToken},
		{name: "signed with another key", token: foreign, want: jwt.ErrInvalidToken},
		{name: "wrong issuer", token: wrongIssuer, want: jwt.ErrInvalidToken},
		{name: "garbage", token: "not.a.jwt", want: jwt.ErrInvalidToken},
		{name: "no expiry", token: sign(t, gojwt.MapClaims{"sub": techID.String(), "role": "customer", "iss": "storefront"}), want: jwt.ErrInvalidToken},
		{name: "unknown role", token: sign(t, gojwt.MapClaims{
			"sub": techID.String(), "role": "root", "iss": "storefront", "exp": time.Now().Add(time.Minute).Unix(),
		}), want: jwt.ErrInvalidToken},
		{name: "subject not a uuid", token: sign(t, gojwt.MapClaims{
			"sub": "alice", "role": "customer", "iss": "storefront", "exp": time.Now().Add(time.Minute).Unix(),
		}), want: jwt.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run("error: "+tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(tt.token)
			assert.True(t, errs.Is(err, tt.want), "expected %v but got %v", tt.want, err)
		})
	}
}
