package ports

import "context"

// Mail is a single outbound HTML message. The sender is fixed by the
// transport configuration.
type Mail struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}
