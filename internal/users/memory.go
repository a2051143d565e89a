package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory [Repository] used by tests and DSN-less
// development runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*User
	byName map[string]string
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]*User),
		byName: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored := *user
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.byID[stored.ID] = &stored
	r.byName[stored.UserName] = stored.ID

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetByUserName(_ context.Context, userName string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[userName]
	if !ok {
		return nil, ErrNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *MemoryRepository) ListForm(_ context.Context) ([]FormView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]FormView, 0, len(r.byID))
	for _, u := range r.byID {
		views = append(views, FormView{
			ID:        u.ID,
			UserName:  u.UserName,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].CreatedAt.Before(views[j].CreatedAt) })

	return views, nil
}
