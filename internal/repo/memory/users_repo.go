package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alciverdev/farmatup-API/internal/domain/user"
	"github.com/alciverdev/farmatup-API/internal/repo/postgres"
)

// UsersRepo mirrors the postgres repo semantics in process memory,
// including its sentinel errors, so handlers and tests are interchangeable.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID: 1,
		items:  make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, p user.CreateUserParams) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if u.Email == p.Email {
			return user.User{}, postgres.ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           r.nextID,
		Fullname:     p.Fullname,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		NumCel:       p.NumCel,
		IDType:       p.IDType,
		NumID:        p.NumID,
		Image:        p.Image,
		BranchID:     p.BranchID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.nextID++
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}
	return u, nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (r *UsersRepo) Update(_ context.Context, id int64, p user.UpdateUserParams) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}

	if p.Email != nil && *p.Email != u.Email {
		for _, other := range r.items {
			if other.ID != id && other.Email == *p.Email {
				return user.User{}, postgres.ErrEmailTaken
			}
		}
		u.Email = *p.Email
	}
	if p.Fullname != nil {
		u.Fullname = *p.Fullname
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.NumCel != nil {
		u.NumCel = *p.NumCel
	}
	if p.IDType != nil {
		u.IDType = *p.IDType
	}
	if p.NumID != nil {
		u.NumID = *p.NumID
	}
	if p.Image != nil {
		u.Image = p.Image
	}
	if p.BranchID != nil {
		u.BranchID = p.BranchID
	}
	if !p.Empty() {
		u.UpdatedAt = time.Now().UTC()
	}
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(_ context.Context, id int64) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}
	delete(r.items, id)

	return u, nil
}
