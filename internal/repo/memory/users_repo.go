package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/schoolhub/internal/domain/user"
)

type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUniqueLocked(0, u.Username, u.Email); err != nil {
		return user.User{}, err
	}

	now := time.Now().UTC()
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Username == username {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListUsersFilter) ([]user.User, int, error) {
	r.mu.RLock()
	all := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		all = append(all, u)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return page(all, filter.Offset, filter.Limit), len(all), nil
}

func (r *UsersRepo) Update(ctx context.Context, id int64, patch user.Patch) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	patch.Apply(&u)

	if err := r.checkUniqueLocked(id, u.Username, u.Email); err != nil {
		return user.User{}, err
	}

	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	delete(r.items, id)

	return u, nil
}

func (r *UsersRepo) checkUniqueLocked(selfID int64, username, email string) error {
	for id, existing := range r.items {
		if id == selfID {
			continue
		}
		if existing.Username == username {
			return user.ErrUsernameTaken
		}
		if existing.Email == email {
			return user.ErrEmailTaken
		}
	}

	return nil
}
