package email

import (
	"context"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/wneessen/go-mail"

	"github.com/deppfellow/quiz-api/internal/config"
)

// ResendSender posts messages to the Resend API.
type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, msg *Message) error {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return errors.Wrap(err, "resend")
	}
	return nil
}

// SMTPSender delivers through an SMTP relay. A new connection is dialed per
// message.
type SMTPSender struct {
	client *mail.Client
}

func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	client, err := mail.NewClient(cfg.Host, smtpOptions(cfg)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smtp client")
	}
	return &SMTPSender{client: client}, nil
}

func smtpOptions(cfg config.SMTPConfig) []mail.Option {
	var opts []mail.Option

	switch cfg.Encryption {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "starttls":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if cfg.Username != "" {
		auth := mail.SMTPAuthPlain
		if cfg.Encryption == "" || cfg.Encryption == "none" {
			auth = mail.SMTPAuthPlainNoEnc
		}
		opts = append(opts,
			mail.WithSMTPAuth(auth),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	// Port last, the TLS options above reset it to their defaults.
	if cfg.Port != 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}

	return opts
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return errors.Wrap(err, "invalid sender")
	}
	if err := m.To(msg.To...); err != nil {
		return errors.Wrap(err, "invalid recipient")
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return errors.Wrap(err, "smtp")
	}
	return nil
}
