package oauth

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/deppfellow/quiz-api/internal/config"
)

const githubAPIURL = "https://api.github.com"

type GitHub struct {
	config *oauth2.Config
	apiURL string
}

func NewGitHub(cfg config.OAuthProviderConfig) *GitHub {
	return &GitHub{
		config: oauthConfig(cfg, endpoints.GitHub, []string{"read:user", "user:email"}),
		apiURL: githubAPIURL,
	}
}

func (g *GitHub) Name() string { return ProviderGitHub }

func (g *GitHub) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange reads the profile from /user and the address from /user/emails,
// since the public profile email may be hidden or unverified.
func (g *GitHub) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth: github token exchange: %w", err)
	}
	client := g.config.Client(ctx, tok)

	var u githubUser
	if err := getJSON(ctx, client, g.apiURL+"/user", &u); err != nil {
		return nil, err
	}

	var emails []githubEmail
	if err := getJSON(ctx, client, g.apiURL+"/user/emails", &emails); err != nil {
		return nil, err
	}

	email := pickGitHubEmail(emails)
	if email == "" {
		return nil, ErrNoVerifiedEmail
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}

	return &Profile{ProviderUserID: strconv.FormatInt(u.ID, 10), Email: email, Name: name}, nil
}

// pickGitHubEmail prefers the primary verified address, then any verified one.
func pickGitHubEmail(emails []githubEmail) string {
	var fallback string
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			return e.Email
		}
		if fallback == "" {
			fallback = e.Email
		}
	}
	return fallback
}
