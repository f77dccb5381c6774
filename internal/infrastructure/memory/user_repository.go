package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domain "github.com/chronomart/storefront/internal/domain/identity"
)

// UserRepository is the in-memory role lookup collaborator.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func NewUserRepository(seed ...domain.User) *UserRepository {
	r := &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
	for i := range seed {
		u := seed[i]
		r.byID[u.ID] = &u
		r.byEmail[strings.ToLower(u.Email)] = u.ID
	}
	return r
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	_ = ctx
	if u == nil || u.ID == "" {
		return domain.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *u
	r.byID[u.ID] = &clone
	if u.Email != "" {
		r.byEmail[strings.ToLower(u.Email)] = u.ID
	}
	return nil
}
