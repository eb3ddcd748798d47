package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/deppfellow/quiz-api/internal/config"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogle(cfg config.OAuthProviderConfig) *Google {
	return &Google{
		config:      oauthConfig(cfg, endpoints.Google, []string{"openid", "email", "profile"}),
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) Name() string { return ProviderGoogle }

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUser struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth: google token exchange: %w", err)
	}

	var u googleUser
	if err := getJSON(ctx, g.config.Client(ctx, tok), g.userInfoURL, &u); err != nil {
		return nil, err
	}

	if u.Email == "" || !u.EmailVerified {
		return nil, ErrNoVerifiedEmail
	}

	return &Profile{ProviderUserID: u.Sub, Email: u.Email, Name: u.Name}, nil
}
