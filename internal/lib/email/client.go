// Package email renders the transactional emails and hands them to the
// configured provider: an SMTP relay (go-mail) or the Resend API.
package email

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/config"
)

// Message is a rendered email ready for delivery.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Client renders templates and delivers them through a Sender.
type Client struct {
	sender   Sender
	renderer *Renderer
	from     string
	appName  string
	logger   *zerolog.Logger
}

// NewClient picks the sender from cfg.Email.Provider.
func NewClient(cfg *config.Config, logger *zerolog.Logger) (*Client, error) {
	var sender Sender
	switch cfg.Email.Provider {
	case "resend":
		sender = NewResendSender(cfg.Integration.ResendAPIKey)
	case "smtp":
		s, err := NewSMTPSender(cfg.Email.SMTP)
		if err != nil {
			return nil, err
		}
		sender = s
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}

	return NewClientWithSender(sender, cfg.Email.FromName, cfg.Email.FromAddress, cfg.Primary.Name, logger)
}

// NewClientWithSender builds a Client around an explicit sender.
func NewClientWithSender(sender Sender, fromName, fromAddress, appName string, logger *zerolog.Logger) (*Client, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	from := (&mail.Address{Name: fromName, Address: fromAddress}).String()

	return &Client{
		sender:   sender,
		renderer: renderer,
		from:     from,
		appName:  appName,
		logger:   logger,
	}, nil
}

// SendEmail renders tmpl with data and sends it to every recipient in to.
func (c *Client) SendEmail(ctx context.Context, to []string, subject string, tmpl Template, data map[string]any) error {
	if len(to) == 0 {
		return errors.New("email has no recipients")
	}

	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["AppName"]; !ok {
		data["AppName"] = c.appName
	}

	html, text, err := c.renderer.Render(tmpl, data)
	if err != nil {
		return err
	}

	msg := &Message{
		From:    c.from,
		To:      to,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Info().
		Str("template", string(tmpl)).
		Int("recipients", len(to)).
		Msg("email sent")

	return nil
}
