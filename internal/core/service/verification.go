package service

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/juniorseniors/users-api/internal/core/ports"
)

const verificationSubject = "Please verify your account"

// newVerificationToken returns a fresh one-time verification identifier.
func newVerificationToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// verificationLink is the absolute URL the user follows to redeem token.
func verificationLink(baseURL, token string) string {
	return strings.TrimSuffix(baseURL, "/") + "/api/users/verify/" + token
}

func verificationMail(baseURL, email, token string) ports.Mail {
	return ports.Mail{
		To:      email,
		Subject: verificationSubject,
		HTML: fmt.Sprintf(
			`<a target="_blank" href="%s">Click here to confirm your mail</a>`,
			verificationLink(baseURL, token),
		),
	}
}

// gravatarURL derives the default avatar for email.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("//www.gravatar.com/avatar/%x", sum)
}
