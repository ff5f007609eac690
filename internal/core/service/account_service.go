package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/juniorseniors/users-api/internal/api/metrics"
	"github.com/juniorseniors/users-api/internal/core/domain"
	"github.com/juniorseniors/users-api/internal/core/ports"
)

const (
	mailKindSignup = "signup"
	mailKindResend = "resend"
)

// AccountService implements registration, email verification and sessions.
type AccountService struct {
	repo    ports.UserRepository
	mailer  ports.Mailer
	tokens  *TokenIssuer
	baseURL string
	log     zerolog.Logger
}

func NewAccountService(
	repo ports.UserRepository,
	mailer ports.Mailer,
	tokens *TokenIssuer,
	baseURL string,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:    repo,
		mailer:  mailer,
		tokens:  tokens,
		baseURL: baseURL,
		log:     log,
	}
}

// Signup creates an unverified account and mails its verification link. When
// the mail cannot be delivered the new account is deleted again so the
// address can sign up once the transport recovers.
func (s *AccountService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	sub := in.Subscription
	if sub == "" {
		sub = domain.SubscriptionStarter
	}
	if !sub.Valid() {
		return nil, domain.ErrInvalidSubscription
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("signup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:             in.Email,
		Password:          string(hash),
		Subscription:      sub,
		AvatarURL:         gravatarURL(in.Email),
		VerificationToken: newVerificationToken(),
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	if err := s.sendVerification(ctx, created.Email, created.VerificationToken, mailKindSignup); err != nil {
		// The rollback must outlive a client that hung up mid-send.
		if delErr := s.repo.Delete(context.WithoutCancel(ctx), created.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("user_id", created.ID).Msg("failed to roll back account after mail failure")
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	metrics.SignupsTotal.WithLabelValues(string(sub)).Inc()
	s.log.Info().Str("user_id", created.ID).Str("subscription", string(sub)).Msg("account created")
	return created, nil
}

// VerifyEmail redeems a verification token. A token can be redeemed once.
func (s *AccountService) VerifyEmail(ctx context.Context, verificationToken string) error {
	if verificationToken == "" {
		return domain.ErrUserNotFound
	}

	user, err := s.repo.RedeemVerificationToken(ctx, verificationToken)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	metrics.VerificationsTotal.Inc()
	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return nil
}

// ResendVerification mails the stored verification token again.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	if user.Verify {
		return domain.ErrAlreadyVerified
	}

	if err := s.sendVerification(ctx, user.Email, user.VerificationToken, mailKindResend); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	return nil
}

// Login checks credentials and stores a freshly issued session token on the
// user, replacing any previous one.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", domain.ErrInvalidCredentials
	}

	if !user.Verify {
		metrics.LoginsTotal.WithLabelValues("not_verified").Inc()
		return "", domain.ErrEmailNotVerified
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if err := s.repo.SetToken(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}

func (s *AccountService) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

// Authenticate accepts a token only while it is the one stored on its user,
// so logging out or in again revokes earlier tokens.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	userID, err := s.tokens.Parse(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("rejected bearer token")
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Token), []byte(token)) != 1 {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (s *AccountService) sendVerification(ctx context.Context, email, token, kind string) error {
	if err := s.mailer.Send(ctx, verificationMail(s.baseURL, email, token)); err != nil {
		metrics.VerificationMailsTotal.WithLabelValues(kind, metrics.ResultFailure).Inc()
		s.log.Error().Err(err).Str("kind", kind).Msg("verification mail failed")
		return fmt.Errorf("%w: %w", domain.ErrMailDelivery, err)
	}
	metrics.VerificationMailsTotal.WithLabelValues(kind, metrics.ResultSuccess).Inc()
	return nil
}
