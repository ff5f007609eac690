package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/juniorseniors/users-api/internal/core/domain"
	"github.com/juniorseniors/users-api/internal/core/ports"
)

const testBaseURL = "http://localhost:3000"

func newTestAccountService(repo *stubUserRepo, mailer *stubMailer) *AccountService {
	return NewAccountService(repo, mailer, NewTokenIssuer("secret", time.Hour), testBaseURL, zerolog.Nop())
}

// verifiedUser signs up email and redeems its verification token.
func verifiedUser(t *testing.T, svc *AccountService, repo *stubUserRepo, email, password string) *domain.User {
	t.Helper()
	user, err := svc.Signup(context.Background(), ports.SignupInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if err := svc.VerifyEmail(context.Background(), user.VerificationToken); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), user.ID)
	return stored
}

func TestAccountService_Signup_Success(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newTestAccountService(repo, mailer)

	user, err := svc.Signup(context.Background(), ports.SignupInput{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Verify {
		t.Fatalf("expected new account to be unverified")
	}
	if user.VerificationToken == "" {
		t.Fatalf("expected verification token to be set")
	}
	if user.Subscription != domain.SubscriptionStarter {
		t.Fatalf("expected default subscription starter, got %s", user.Subscription)
	}
	if user.Password == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if !strings.HasPrefix(user.AvatarURL, "//www.gravatar.com/avatar/") {
		t.Fatalf("unexpected default avatar: %s", user.AvatarURL)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.To != "a@b.com" || mail.Subject != verificationSubject {
		t.Fatalf("unexpected mail: %+v", mail)
	}
	wantLink := testBaseURL + "/api/users/verify/" + user.VerificationToken
	if !strings.Contains(mail.HTML, wantLink) {
		t.Fatalf("mail body missing link %q: %s", wantLink, mail.HTML)
	}
}

func TestAccountService_Signup_KeepsRequestedSubscription(t *testing.T) {
	svc := newTestAccountService(newStubUserRepo(), &stubMailer{})

	user, err := svc.Signup(context.Background(), ports.SignupInput{
		Email: "pro@b.com", Password: "secret1", Subscription: domain.SubscriptionPro,
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Subscription != domain.SubscriptionPro {
		t.Fatalf("expected pro, got %s", user.Subscription)
	}
}

func TestAccountService_Signup_InvalidSubscription(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAccountService(repo, &stubMailer{})

	_, err := svc.Signup(context.Background(), ports.SignupInput{
		Email: "a@b.com", Password: "secret1", Subscription: "platinum",
	})
	if !errors.Is(err, domain.ErrInvalidSubscription) {
		t.Fatalf("expected ErrInvalidSubscription, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("store must not be touched, got %d creates", repo.createCalls)
	}
}

func TestAccountService_Signup_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newTestAccountService(repo, mailer)

	if _, err := svc.Signup(context.Background(), ports.SignupInput{Email: "a@b.com", Password: "secret1"}); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	_, err := svc.Signup(context.Background(), ports.SignupInput{Email: "a@b.com", Password: "other12"})
	if !errors.Is(err, domain.ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected a single record, got %d", len(repo.users))
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected no mail for the duplicate, got %d mails", len(mailer.sent))
	}
}

func TestAccountService_Signup_MailFailureRollsBack(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAccountService(repo, &stubMailer{err: errTransport})

	_, err := svc.Signup(context.Background(), ports.SignupInput{Email: "a@b.com", Password: "secret1"})
	if !errors.Is(err, domain.ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}
	if !errors.Is(err, errTransport) {
		t.Fatalf("expected transport cause to be preserved, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatalf("expected account to be rolled back, %d remain", len(repo.users))
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected one compensating delete, got %d", len(repo.deleted))
	}
}

func TestAccountService_Signup_RollbackSurvivesCanceledRequest(t *testing.T) {
	repo := newStubUserRepo()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The client goes away while the mail is in flight.
	svc := newTestAccountService(repo, &stubMailer{err: errTransport, onSend: cancel})

	_, err := svc.Signup(ctx, ports.SignupInput{Email: "a@b.com", Password: "secret1"})
	if !errors.Is(err, domain.ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}
	if len(repo.users) != 0 || len(repo.deleted) != 1 {
		t.Fatalf("expected rollback despite canceled context, %d remain", len(repo.users))
	}
}

func TestAccountService_Login_TwiceRevokesFirstToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAccountService(repo, &stubMailer{})
	verifiedUser(t, svc, repo, "a@b.com", "secret1")

	first, err := svc.Login(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	second, err := svc.Login(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), first); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected first token to be revoked, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), second); err != nil {
		t.Fatalf("expected second token to authorize, got %v", err)
	}
}

func TestAccountService_VerifyEmail_OnlyOnce(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAccountService(repo, &stubMailer{})

	user, err := svc.Signup(context.Background(), ports.SignupInput{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if err := svc.VerifyEmail(context.Background(), user.VerificationToken); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), user.ID)
	if !stored.Verify || stored.VerificationToken != "" {
		t.Fatalf("expected verified with cleared token, got verify=%v token=%q", stored.Verify, stored.VerificationToken)
	}

	if err := svc.VerifyEmail(context.Background(), user.VerificationToken); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second redemption, got %v", err)
	}
}

func TestAccountService_VerifyEmail_EmptyToken(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(&domain.User{ID: "u1", Email: "a@b.com", Verify: true})
	svc := newTestAccountService(repo, &stubMailer{})

	if err := svc.VerifyEmail(context.Background(), ""); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_ResendVerification(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newTestAccountService(repo, mailer)

	user, err := svc.Signup(context.Background(), ports.SignupInput{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if err := svc.ResendVerification(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 mails, got %d", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[1].HTML, user.VerificationToken) {
		t.Fatalf("resent mail must carry the stored token")
	}
}

func TestAccountService_ResendVerification_Errors(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(&domain.User{ID: "u1", Email: "done@b.com", Verify: true})
	repo.seed(&domain.User{ID: "u2", Email: "pending@b.com", VerificationToken: "tok"})

	svc := newTestAccountService(repo, &stubMailer{})
	if err := svc.ResendVerification(context.Background(), "ghost@b.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.ResendVerification(context.Background(), "done@b.com"); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}

	failing := newTestAccountService(repo, &stubMailer{err: errTransport})
	if err := failing.ResendVerification(context.Background(), "pending@b.com"); !errors.Is(err, domain.ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery to surface, got %v", err)
	}
}

func TestAccountService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAccountService(repo, &stubMailer{})
	user := verifiedUser(t, svc, repo, "a@b.com", "secret1")

	token, err := svc.Login(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if stored.Token != token {
		t.Fatalf("expected token to be persisted on the user")
	}

	id, err := svc.tokens.Parse(token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if id != user.ID {
		t.Fatalf("expected token subject %s, got %s", user.ID, id)
	}
}

func TestAccountService_Login_InvalidCredentials(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAccountService(repo, &stubMailer{})
	verifiedUser(t, svc, repo, "a@b.com", "secret1")

	if _, err := svc.Login(context.Background(), "a@b.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost@b.com", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAccountService_Login_NotVerified(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAccountService(repo, &stubMailer{})

	user, err := svc.Signup(context.Background(), ports.SignupInput{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), "a@b.com", "secret1"); !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), user.ID)
	if stored.Token != "" {
		t.Fatalf("unverified user must not receive a session token")
	}
}

func TestAccountService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAccountService(repo, &stubMailer{})
	user := verifiedUser(t, svc, repo, "a@b.com", "secret1")

	token, err := svc.Login(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	got, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}

	if err := svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestAccountService_Authenticate_Rejects(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAccountService(repo, &stubMailer{})
	user := verifiedUser(t, svc, repo, "a@b.com", "secret1")

	foreign, err := NewTokenIssuer("other-secret", time.Hour).Issue(user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	orphan, err := svc.tokens.Issue("missing-user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	stale, err := svc.tokens.Issue(user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"unknown user":   orphan,
		"not the stored": stale,
	}
	for name, tok := range cases {
		if _, err := svc.Authenticate(context.Background(), tok); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}
