package repository

import (
	"context"
	"sync"
	"time"

	authdomain "todo-backend/internal/auth/domain"

	"github.com/google/uuid"
)

// memoryUserRepository keeps users in process memory. It backs the memory
// storage driver and the package tests.
type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*authdomain.User
	order []string // ids in insertion order
	now   func() time.Time
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		users: make(map[string]*authdomain.User),
		now:   time.Now,
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *authdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(user.UserName, user.Email, "") {
		return ErrDuplicateUser
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = clone(user)
	r.order = append(r.order, user.ID)
	return nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*authdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[id]; ok {
		return clone(u), nil
	}
	return nil, nil
}

func (r *memoryUserRepository) FindByUserName(_ context.Context, userName string) (*authdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.UserName == userName {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepository) FindByUserNameOrEmail(_ context.Context, userName, email string) (*authdomain.User, error) {
	if userName == "" && email == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if (userName != "" && u.UserName == userName) || (email != "" && u.Email == email) {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepository) FindAll(_ context.Context) ([]*authdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*authdomain.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, clone(r.users[id]))
	}
	return users, nil
}

func (r *memoryUserRepository) UpdateProfile(_ context.Context, id string, changes ProfileChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}

	var userName, email string
	if changes.UserName != nil {
		userName = *changes.UserName
	}
	if changes.Email != nil {
		email = *changes.Email
	}
	if r.taken(userName, email, id) {
		return ErrDuplicateUser
	}

	if changes.UserName != nil {
		u.UserName = *changes.UserName
	}
	if changes.FullName != nil {
		u.FullName = *changes.FullName
	}
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	u.UpdatedAt = r.now()
	return nil
}

func (r *memoryUserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.mutate(id, func(u *authdomain.User) {
		u.Password = passwordHash
	})
}

func (r *memoryUserRepository) SetRefreshToken(_ context.Context, id, token string, expiresAt time.Time) error {
	return r.mutate(id, func(u *authdomain.User) {
		u.RefreshToken = token
		u.RefreshTokenExpiresAt = &expiresAt
	})
}

func (r *memoryUserRepository) ClearRefreshToken(_ context.Context, id string) error {
	return r.mutate(id, func(u *authdomain.User) {
		u.RefreshToken = ""
		u.RefreshTokenExpiresAt = nil
	})
}

func (r *memoryUserRepository) ClearExpiredRefreshTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for _, u := range r.users {
		if u.RefreshToken != "" && u.RefreshTokenExpiresAt != nil && u.RefreshTokenExpiresAt.Before(now) {
			u.RefreshToken = ""
			u.RefreshTokenExpiresAt = nil
			u.UpdatedAt = r.now()
			cleared++
		}
	}
	return cleared, nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryUserRepository) mutate(id string, fn func(u *authdomain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = r.now()
	return nil
}

// taken reports whether userName or email belongs to a user other than exceptID.
// Callers must hold the lock.
func (r *memoryUserRepository) taken(userName, email, exceptID string) bool {
	for id, u := range r.users {
		if id == exceptID {
			continue
		}
		if (userName != "" && u.UserName == userName) || (email != "" && u.Email == email) {
			return true
		}
	}
	return false
}

func clone(u *authdomain.User) *authdomain.User {
	c := *u
	if u.RefreshTokenExpiresAt != nil {
		t := *u.RefreshTokenExpiresAt
		c.RefreshTokenExpiresAt = &t
	}
	return &c
}
