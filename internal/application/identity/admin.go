package identity

import (
	"context"
	"fmt"

	domain "github.com/chronomart/storefront/internal/domain/identity"
	"github.com/chronomart/storefront/internal/observability"
	"github.com/chronomart/storefront/internal/observability/logctx"
)

const componentAdmin = "admin_service"

// Admin implements the console operations for role assignment. Every
// operation is gated on the admin scope.
type Admin struct {
	users domain.UserRepository
	gate  *Gate
	log   observability.Logger
}

func NewAdmin(users domain.UserRepository, gate *Gate, tel observability.Observability) *Admin {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Admin{
		users: users,
		gate:  gate,
		log:   tel.Logger().With(observability.F("component", componentAdmin)),
	}
}

func (a *Admin) ListUsers(ctx context.Context, actor domain.Session) ([]domain.User, error) {
	if err := a.require(ctx, actor); err != nil {
		return nil, err
	}
	return a.users.List(ctx)
}

// UpdateRole assigns a role to a user. Changing one's own role is rejected so
// an admin cannot lock themselves out mid-session.
func (a *Admin) UpdateRole(ctx context.Context, actor domain.Session, userID string, role domain.Role) error {
	if err := a.require(ctx, actor); err != nil {
		return err
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return err
	}
	if userID == actor.UserID {
		return domain.ErrSelfRoleChange
	}

	user, err := a.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	user.Role = role
	if err := a.users.Save(ctx, user); err != nil {
		return fmt.Errorf("identity: save role: %w", err)
	}

	logctx.FromOr(ctx, a.log).Info("role_updated",
		observability.F("actor_id", actor.UserID),
		observability.F("user_id", userID),
		observability.F("role", string(role)),
	)
	return nil
}

// GrantAdminByEmail promotes the account with the given email to admin.
func (a *Admin) GrantAdminByEmail(ctx context.Context, actor domain.Session, email string) error {
	if err := a.require(ctx, actor); err != nil {
		return err
	}
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.ID == actor.UserID {
		return domain.ErrSelfRoleChange
	}
	user.Role = domain.RoleAdmin
	if err := a.users.Save(ctx, user); err != nil {
		return fmt.Errorf("identity: save role: %w", err)
	}

	logctx.FromOr(ctx, a.log).Info("admin_granted",
		observability.F("actor_id", actor.UserID),
		observability.F("user_id", user.ID),
	)
	return nil
}

func (a *Admin) require(ctx context.Context, actor domain.Session) error {
	switch a.gate.Authorize(ctx, actor, domain.ScopeAdmin) {
	case domain.DecisionAuthorized:
		return nil
	case domain.DecisionPending:
		return domain.ErrLookupPending
	default:
		return domain.ErrForbidden
	}
}
