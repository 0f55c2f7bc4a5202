package user

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleTechnician, RoleAdmin:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Requester is the authenticated caller as resolved by the identity provider.
type Requester struct {
	ID   uuid.UUID
	Role Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// CanActFor reports whether the requester may act on a resource owned by ownerID.
func (r Requester) CanActFor(ownerID uuid.UUID) bool {
	return r.IsAdmin() || r.ID == ownerID
}
