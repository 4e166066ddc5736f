// AngelaMos | 2026
// mailer.go

package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/angelamos/identity-api/internal/config"
)

// Mailer delivers the two one-time-token emails the auth flows send.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

// New returns an SMTP-backed mailer when email is enabled, otherwise a
// logging stand-in so auth flows behave identically in development.
func New(cfg config.EmailConfig, baseURL string) Mailer {
	if !cfg.Enabled {
		return &LogMailer{baseURL: baseURL}
	}
	return &SMTPMailer{config: cfg, baseURL: baseURL}
}

type SMTPMailer struct {
	config  config.EmailConfig
	baseURL string
}

func (m *SMTPMailer) SendVerificationEmail(
	ctx context.Context,
	to, name, token string,
) error {
	link := verificationLink(m.baseURL, token)
	body := verificationBody(name, link)

	return m.send(ctx, to, "Verify your email address", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(
	ctx context.Context,
	to, name, token string,
) error {
	link := resetLink(m.baseURL, token)
	body := resetBody(name, link)

	return m.send(ctx, to, "Reset your password", body)
}

func (m *SMTPMailer) send(
	ctx context.Context,
	to, subject, body string,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth(
			"",
			m.config.Username,
			m.config.Password,
			m.config.Host,
		)
	}

	msg := buildMessage(m.config.From, to, subject, body)

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogMailer writes the links to the log instead of sending anything.
type LogMailer struct {
	baseURL string
}

func (m *LogMailer) SendVerificationEmail(
	_ context.Context,
	to, _, token string,
) error {
	slog.Info("verification email suppressed",
		"to", to,
		"link", verificationLink(m.baseURL, token),
	)
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(
	_ context.Context,
	to, _, token string,
) error {
	slog.Info("password reset email suppressed",
		"to", to,
		"link", resetLink(m.baseURL, token),
	)
	return nil
}

func verificationLink(baseURL, token string) string {
	return fmt.Sprintf(
		"%s/verify-email?token=%s",
		strings.TrimRight(baseURL, "/"),
		token,
	)
}

func resetLink(baseURL, token string) string {
	return fmt.Sprintf(
		"%s/reset-password?token=%s",
		strings.TrimRight(baseURL, "/"),
		token,
	)
}

func verificationBody(name, link string) string {
	return fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Welcome! Please verify your email address by visiting the link "+
			"below within 24 hours:\r\n\r\n%s\r\n\r\n"+
			"If you did not create an account, you can ignore this email.\r\n",
		name, link,
	)
}

func resetBody(name, link string) string {
	return fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"We received a request to reset your password. The link below is "+
			"valid for 1 hour:\r\n\r\n%s\r\n\r\n"+
			"If you did not request a reset, you can ignore this email and "+
			"your password will stay unchanged.\r\n",
		name, link,
	)
}
