// Package mailer sends transactional email (order confirmations, shipping updates, contact forwards).
package mailer

import (
	"context"
	"errors"

	"github.com/junaidrashid-git/storefront-api/config"
	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("email has no recipient")

// Message is a rendered email
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Mailer delivers a message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns a Resend mailer, or a log-only mailer when no API key is configured
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.ResendAPIKey == "" {
		logger.Warn("mail.resend_api_key not set, emails will only be logged")
		return NewLogMailer(logger)
	}
	return NewResendMailer(cfg.ResendAPIKey, cfg.From, logger)
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}
	m.logger.Info("email not sent (log mailer)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("reply_to", msg.ReplyTo),
	)
	return nil
}
