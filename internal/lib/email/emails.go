package email

import (
	"context"
	"strconv"
	"time"
)

// SendVerificationEmail mails the one-time code that confirms ownership of
// the address.
func (c *Client) SendVerificationEmail(ctx context.Context, to, name, otp string, ttl time.Duration) error {
	return c.SendEmail(ctx, []string{to}, "Please verify your email address", TemplateVerification, map[string]any{
		"Name":      name,
		"Token":     otp,
		"ExpiresIn": humanizeDuration(ttl),
	})
}

func (c *Client) SendPasswordResetEmail(ctx context.Context, to, name, otp string, ttl time.Duration) error {
	return c.SendEmail(ctx, []string{to}, "Forgot Password", TemplatePasswordReset, map[string]any{
		"Name":      name,
		"Token":     otp,
		"ExpiresIn": humanizeDuration(ttl),
	})
}

func (c *Client) SendWelcomeEmail(ctx context.Context, to, name string) error {
	return c.SendEmail(ctx, []string{to}, "Welcome to "+c.appName+"!", TemplateWelcome, map[string]any{
		"Name": name,
	})
}

// SendCustomEmail wraps a plain text body in the standard layout.
// Paragraphs are separated by blank lines.
func (c *Client) SendCustomEmail(ctx context.Context, to []string, subject, body string) error {
	return c.SendEmail(ctx, to, subject, TemplateCustom, map[string]any{
		"Body": body,
	})
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short while"
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.Round(time.Second).String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
