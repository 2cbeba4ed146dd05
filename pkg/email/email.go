// Package email is the outbound mail side-channel. Delivery is always
// best-effort from the caller's point of view; nothing in the API waits on a
// message reaching a mailbox.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"unicode"
)

// Message is a plain-text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers via a plain SMTP relay.
type SMTPSender struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.From, msg.To, msg.Subject, msg.Body)
	if err := smtp.SendMail(s.Addr, s.Auth, s.From, []string{msg.To}, []byte(payload)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// WithLogging decorates a Sender so delivery failures are logged. Callers of
// the decorated sender can drop the error, keeping mail strictly best-effort.
func WithLogging(next Sender, logger *slog.Logger) Sender {
	return &loggingSender{next: next, logger: logger}
}

type loggingSender struct {
	next   Sender
	logger *slog.Logger
}

func (s *loggingSender) Send(ctx context.Context, msg Message) error {
	if err := s.next.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "email delivery failed",
			"to", msg.To,
			"subject", msg.Subject,
			"error", err,
		)
		return err
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. Used in
// development and tests.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.Logger.InfoContext(ctx, "email (not delivered)",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

// DeriveNameFromEmail guesses a first and last name from the local part of an
// address. Used to greet recipients in flows that only know an email.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
