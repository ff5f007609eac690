// Package memory provides a process-local UserRepository for development runs
// and tests. Data does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/juniorseniors/users-api/internal/core/domain"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailInUse
		}
	}

	stored := clone(user)
	stored.ID = uuid.NewString()
	r.users[stored.ID] = stored
	return clone(stored), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) RedeemVerificationToken(_ context.Context, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if !u.Verify && u.VerificationToken == token {
			u.Verify = true
			u.VerificationToken = ""
			u.UpdatedAt = time.Now().UTC()
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) SetToken(_ context.Context, id, token string) error {
	return r.mutate(id, func(u *domain.User) { u.Token = token })
}

func (r *UserRepository) UpdateSubscription(_ context.Context, id string, sub domain.Subscription) (*domain.User, error) {
	var updated *domain.User
	err := r.mutate(id, func(u *domain.User) {
		u.Subscription = sub
		updated = clone(u)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *UserRepository) UpdateAvatarURL(_ context.Context, id, avatarURL string) error {
	return r.mutate(id, func(u *domain.User) { u.AvatarURL = avatarURL })
}

func (r *UserRepository) mutate(id string, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	fn(u)
	return nil
}
