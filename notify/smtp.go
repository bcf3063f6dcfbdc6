package notify

import (
	"context"
	"fmt"
	"net/smtp"

	goerrors "github.com/goliatone/go-errors"

	"github.com/skillhub/identity"
)

// Mailer sends notifications over SMTP.
type Mailer struct {
	addr     string
	auth     smtp.Auth
	resetURL string
	logger   identity.Logger
}

var _ identity.Notifier = (*Mailer)(nil)

// NewMailer configures an SMTP notifier. addr is host:port; username may be
// empty for unauthenticated relays; resetURL is the public page the reset
// token is appended to.
func NewMailer(addr, username, password, host, resetURL string, logger identity.Logger) *Mailer {
	if logger == nil {
		logger = identity.DefaultLogger()
	}
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Mailer{
		addr:     addr,
		auth:     auth,
		resetURL: resetURL,
		logger:   logger,
	}
}

func (m *Mailer) SendVerificationCode(ctx context.Context, email, code string) error {
	subject, body := verificationBody(code)
	return m.send(ctx, email, subject, body)
}

func (m *Mailer) SendPasswordResetLink(ctx context.Context, email, token string) error {
	subject, body := resetBody(m.resetURL, token)
	return m.send(ctx, email, subject, body)
}

func (m *Mailer) SendWelcome(ctx context.Context, email string) error {
	subject, body := welcomeBody()
	return m.send(ctx, email, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		senderAddress, to, subject, body)

	if err := smtp.SendMail(m.addr, m.auth, senderAddress, []string{to}, []byte(msg)); err != nil {
		m.logger.Error("smtp send failed", "to", to, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send email, please try again later")
	}

	m.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}
