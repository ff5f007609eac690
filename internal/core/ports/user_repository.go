package ports

import (
	"context"

	"github.com/juniorseniors/users-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Every method returns domain.ErrUserNotFound when no document matches.
type UserRepository interface {
	// Create inserts user and returns the stored copy with its generated ID.
	// A duplicate email yields domain.ErrEmailInUse.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// RedeemVerificationToken atomically marks the owner of token as verified
	// and clears the token.
	RedeemVerificationToken(ctx context.Context, token string) (*domain.User, error)

	SetToken(ctx context.Context, id, token string) error
	UpdateSubscription(ctx context.Context, id string, sub domain.Subscription) (*domain.User, error)
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) error
}
