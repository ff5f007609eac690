package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/juniorseniors/users-api/internal/core/ports"
)

// SendGridMailer delivers through the SendGrid v3 mail send API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGridMailer(apiKey, fromName, fromAddress string) (*SendGridMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("mail: sendgrid api key is required")
	}
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromAddress),
	}, nil
}

func (m *SendGridMailer) Send(ctx context.Context, msg ports.Mail) error {
	message := sgmail.NewSingleEmail(m.from, msg.Subject, sgmail.NewEmail("", msg.To), "", msg.HTML)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
