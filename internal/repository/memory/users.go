package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/b-cinema/internal/cascade"
	"github.com/iliyamo/b-cinema/internal/model"
	"github.com/iliyamo/b-cinema/internal/repository"
)

// UserRepo stores accounts.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.allocate("users")
	u.CreatedAt = time.Now().UTC()
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uint64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// sorted returns the users accepted by keep ordered by id.
func (r *UserRepo) sorted(keep func(model.User) bool) []model.User {
	var out []model.User
	for _, u := range r.s.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *UserRepo) GetSystem(_ context.Context) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	found := r.sorted(func(u model.User) bool { return u.IsSystem })
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r *UserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) FindByCredentials(_ context.Context, email, passwordHash string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	found := r.sorted(func(u model.User) bool { return u.Email == email && u.PasswordHash == passwordHash })
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r *UserRepo) ListManageable(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(u model.User) bool { return !u.IsSystem }), nil
}

func (r *UserRepo) CountManageable(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, u := range r.s.users {
		if !u.IsSystem {
			n++
		}
	}
	return n, nil
}

func (r *UserRepo) Update(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name, cur.Email, cur.Role, cur.PasswordHash = u.Name, u.Email, u.Role, u.PasswordHash
	r.s.users[u.ID] = cur
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	p, err := cascade.UserDelete(r.s.graph(), id)
	if errors.Is(err, cascade.ErrRestricted) {
		return repository.ErrConflict
	}
	if err != nil {
		return err
	}
	r.s.apply(p)
	return nil
}
