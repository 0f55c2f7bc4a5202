package jwt

import (
	"time"

	"install-scheduler/internal/domain/user"
	"install-scheduler/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errs.New("invalid token")
	ErrExpiredToken = errs.New("token expired")
)

// Tolerated clock drift against the storefront identity service.
const leeway = 30 * time.Second

// Claims mirrors the storefront access token. Older tokens carry the user only in sub.
type Claims struct {
	UserID uuid.UUID `json:"user_id,omitzero"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// Service verifies HS256 access tokens. Issue exists for tests and tooling only.
type Service struct {
	secret []byte
	issuer string
}

func NewService(secret, issuer string) *Service {
	return &Service{secret: []byte(secret), issuer: issuer}
}

func (s *Service) Issue(userID uuid.UUID, role user.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate resolves a bearer token into the caller it was issued for.
func (s *Service) Authenticate(token string) (user.Requester, error) {
	claims, err := s.parse(token)
	if err != nil {
		return user.Requester{}, err
	}

	id := claims.UserID
	if id == uuid.Nil {
		if id, err = uuid.Parse(claims.Subject); err != nil {
			return user.Requester{}, errs.Wrap(ErrInvalidToken, "subject is not a user id")
		}
	}
	role, err := user.NewRole(claims.Role)
	if err != nil {
		return user.Requester{}, errs.Wrapf(ErrInvalidToken, "role %q", claims.Role)
	}
	return user.Requester{ID: id, Role: role}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return s.secret, nil }, opts...); err != nil {
		if errs.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, errs.Mark(err, ErrInvalidToken)
	}
	return claims, nil
}
