package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/juniorseniors/users-api/internal/core/ports"
)

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	cfg  SMTPConfig
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig, from string) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("mail: smtp host and port are required")
	}
	return &SMTPMailer{cfg: cfg, from: from, send: smtp.SendMail}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg ports.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.from, []string{msg.To}, m.message(msg)); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func (m *SMTPMailer) message(msg ports.Mail) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
