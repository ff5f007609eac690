package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/juniorseniors/users-api/internal/core/domain"
	"github.com/juniorseniors/users-api/internal/core/ports"
)

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int

	createCalls int
	deleted     []string
	updateErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailInUse
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) RedeemVerificationToken(_ context.Context, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.VerificationToken == token && !u.Verify {
			u.VerificationToken = ""
			u.Verify = true
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Token = token
	return nil
}

func (r *stubUserRepo) UpdateSubscription(_ context.Context, id string, sub domain.Subscription) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Subscription = sub
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateAvatarURL(_ context.Context, id, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.AvatarURL = avatarURL
	return nil
}

// seed stores a user directly, bypassing Create bookkeeping.
func (r *stubUserRepo) seed(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
}

type stubMailer struct {
	sent   []ports.Mail
	err    error
	onSend func()
}

func (m *stubMailer) Send(_ context.Context, mail ports.Mail) error {
	if m.onSend != nil {
		m.onSend()
	}
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

var errTransport = errors.New("smtp: connection refused")
