package identity

import (
	"context"
	"errors"

	domain "github.com/chronomart/storefront/internal/domain/identity"
	"github.com/chronomart/storefront/internal/observability"
	"github.com/chronomart/storefront/internal/observability/logctx"
)

const componentGate = "role_gate"

// Gate resolves authorization decisions from the role lookup collaborator.
// Resolution may fail transiently; a failed lookup yields DecisionPending so
// callers never treat an unresolved check as allowed or denied.
type Gate struct {
	users domain.UserRepository
	log   observability.Logger
}

func NewGate(users domain.UserRepository, tel observability.Observability) *Gate {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Gate{
		users: users,
		log:   tel.Logger().With(observability.F("component", componentGate)),
	}
}

func (g *Gate) Authorize(ctx context.Context, sess domain.Session, scope domain.Scope) domain.Decision {
	if !sess.Authenticated || sess.UserID == "" {
		return domain.DecisionUnauthorized
	}

	switch scope {
	case domain.ScopeCheckout:
		// Any authenticated account may check out.
		return domain.DecisionAuthorized
	case domain.ScopeAdmin:
		user, err := g.users.Get(ctx, sess.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			// No role record means the default role, which is not admin.
			return domain.DecisionUnauthorized
		}
		if err != nil {
			logger := logctx.FromOr(ctx, g.log)
			logger.Warn("role_lookup_failed",
				observability.F("user_id", sess.UserID),
				observability.F("error", err.Error()),
			)
			return domain.DecisionPending
		}
		if user.Role == domain.RoleAdmin {
			return domain.DecisionAuthorized
		}
		return domain.DecisionUnauthorized
	default:
		return domain.DecisionUnauthorized
	}
}
