package ports

import (
	"context"

	"github.com/juniorseniors/users-api/internal/core/domain"
)

// SignupInput carries a validated registration request.
type SignupInput struct {
	Email        string
	Password     string
	Subscription domain.Subscription
}

// AccountService covers registration, verification and session handling.
type AccountService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	VerifyEmail(ctx context.Context, verificationToken string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, userID string) error
	// Authenticate resolves a bearer token to the user currently holding it.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// ProfileService covers mutations an authenticated user makes to their account.
type ProfileService interface {
	UpdateSubscription(ctx context.Context, userID string, sub domain.Subscription) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID string, upload AvatarUpload) (string, error)
}
