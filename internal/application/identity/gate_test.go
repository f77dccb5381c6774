package identity

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/chronomart/storefront/internal/domain/identity"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	getErr  error
	saveErr error
}

func newFakeUsers(users ...domain.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[string]domain.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Get(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) List(context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUsers) Save(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.byID[u.ID] = *u
	return nil
}

func adminSession() domain.Session {
	return domain.Session{Authenticated: true, UserID: "u-admin", Email: "admin@example.com"}
}

func adminUser() domain.User {
	return domain.User{ID: "u-admin", Email: "admin@example.com", Role: domain.RoleAdmin}
}

func TestAuthorizeUnauthenticated(t *testing.T) {
	gate := NewGate(newFakeUsers(), nil)

	d := gate.Authorize(context.Background(), domain.Session{}, domain.ScopeCheckout)
	assert.Equal(t, domain.DecisionUnauthorized, d)

	d = gate.Authorize(context.Background(), domain.Session{}, domain.ScopeAdmin)
	assert.Equal(t, domain.DecisionUnauthorized, d)
}

func TestAuthorizeCheckoutAnyAuthenticatedAccount(t *testing.T) {
	gate := NewGate(newFakeUsers(), nil)

	sess := domain.Session{Authenticated: true, UserID: "u-1"}
	assert.Equal(t, domain.DecisionAuthorized, gate.Authorize(context.Background(), sess, domain.ScopeCheckout))
}

func TestAuthorizeAdminByRole(t *testing.T) {
	users := newFakeUsers(
		adminUser(),
		domain.User{ID: "u-mod", Email: "mod@example.com", Role: domain.RoleModerator},
	)
	gate := NewGate(users, nil)
	ctx := context.Background()

	assert.Equal(t, domain.DecisionAuthorized,
		gate.Authorize(ctx, adminSession(), domain.ScopeAdmin))

	mod := domain.Session{Authenticated: true, UserID: "u-mod"}
	assert.Equal(t, domain.DecisionUnauthorized, gate.Authorize(ctx, mod, domain.ScopeAdmin))

	unknown := domain.Session{Authenticated: true, UserID: "u-nobody"}
	assert.Equal(t, domain.DecisionUnauthorized, gate.Authorize(ctx, unknown, domain.ScopeAdmin))
}

// A failed role lookup must resolve to pending, never to allow or deny.
func TestAuthorizeLookupFailureIsPending(t *testing.T) {
	users := newFakeUsers(adminUser())
	users.getErr = errors.New("upstream timeout")
	gate := NewGate(users, nil)

	d := gate.Authorize(context.Background(), adminSession(), domain.ScopeAdmin)
	assert.Equal(t, domain.DecisionPending, d)
}
