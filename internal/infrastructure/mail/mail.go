// Package mail contains the outbound transports behind ports.Mailer.
package mail

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/juniorseniors/users-api/internal/core/ports"
)

const (
	DriverSendGrid = "sendgrid"
	DriverSMTP     = "smtp"
	DriverLog      = "log"
)

// Config selects and configures a transport. From is the fixed sender for
// every message.
type Config struct {
	Driver         string
	From           string
	FromName       string
	SendGridAPIKey string
	SMTP           SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// New builds the Mailer named by cfg.Driver.
func New(cfg Config, log zerolog.Logger) (ports.Mailer, error) {
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("mail: sender address is required")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverSendGrid:
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.FromName, cfg.From)
	case DriverSMTP:
		return NewSMTPMailer(cfg.SMTP, cfg.From)
	case DriverLog, "":
		return NewLogMailer(cfg.From, log), nil
	default:
		return nil, fmt.Errorf("mail: unsupported driver %q", cfg.Driver)
	}
}
