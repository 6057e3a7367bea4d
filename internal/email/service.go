package email

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/health-navigator/internal/config"
)

type Service interface {
	SendConfirmation(ctx context.Context, email, name, token string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

// NewService returns an SMTP sender, or a sender that only logs when no
// SMTP host is configured.
func NewService(smtp config.SMTPConfig, confirmURL string) Service {
	if smtp.Host == "" {
		return &logService{confirmURL: confirmURL}
	}
	return &smtpService{
		dialer:     gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password),
		from:       smtp.From,
		confirmURL: confirmURL,
	}
}

type smtpService struct {
	dialer     *gomail.Dialer
	from       string
	confirmURL string
}

func (s *smtpService) SendConfirmation(ctx context.Context, email, name, token string) error {
	return s.SendCustom(ctx, email, "Confirm your Rural Health Navigator account",
		confirmationBody(name, confirmLink(s.confirmURL, token)))
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type logService struct {
	confirmURL string
}

func (s *logService) SendConfirmation(_ context.Context, email, _, token string) error {
	log.Info().Str("to", email).Str("link", confirmLink(s.confirmURL, token)).Msg("smtp disabled, confirmation link not mailed")
	return nil
}

func (s *logService) SendCustom(_ context.Context, to, subject, _ string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("smtp disabled, email not sent")
	return nil
}

func confirmLink(base, token string) string {
	return base + "?token=" + url.QueryEscape(token)
}

func confirmationBody(name, link string) string {
	return fmt.Sprintf(`<p>Hello %s,</p>
<p>Welcome to Rural Health Navigator. Please confirm your email address:</p>
<p><a href="%s">Confirm my account</a></p>`, html.EscapeString(name), html.EscapeString(link))
}
