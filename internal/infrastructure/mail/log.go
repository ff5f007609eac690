package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/juniorseniors/users-api/internal/core/ports"
)

// LogMailer writes messages to the log instead of delivering them. Used in
// development so verification links can be followed from the console.
type LogMailer struct {
	from string
	log  zerolog.Logger
}

func NewLogMailer(from string, log zerolog.Logger) *LogMailer {
	return &LogMailer{from: from, log: log}
}

func (m *LogMailer) Send(_ context.Context, msg ports.Mail) error {
	m.log.Info().
		Str("from", m.from).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("html", msg.HTML).
		Msg("mail not delivered (log driver)")
	return nil
}
