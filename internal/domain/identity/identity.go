package identity

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("identity: user not found")
	ErrInvalidRole    = errors.New("identity: unknown role")
	ErrForbidden      = errors.New("identity: not authorized")
	ErrSelfRoleChange = errors.New("identity: cannot change own role")
	ErrLookupPending  = errors.New("identity: authorization pending")
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleUser:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

// Decision is the tri-state outcome of an authorization check. A check whose
// role lookup has not resolved is Pending, never a default allow or deny.
type Decision int

const (
	DecisionPending Decision = iota
	DecisionUnauthorized
	DecisionAuthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionAuthorized:
		return "authorized"
	case DecisionUnauthorized:
		return "unauthorized"
	default:
		return "pending"
	}
}

// Scope names a gated capability.
type Scope string

const (
	ScopeCheckout Scope = "checkout"
	ScopeAdmin    Scope = "admin"
)

// Session is the resolved caller identity for one request.
type Session struct {
	Authenticated bool
	UserID        string
	Email         string
}

// User is a storefront account with its assigned role. Accounts without an
// explicit role record default to RoleUser.
type User struct {
	ID       string
	Email    string
	FullName string
	Role     Role
}

// UserRepository is the external role lookup collaborator.
type UserRepository interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Save(ctx context.Context, u *User) error
}
