// Package oauth implements the authorization code flow against the
// supported identity providers and normalizes the profile they return.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"golang.org/x/oauth2"

	"github.com/deppfellow/quiz-api/internal/config"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// ErrNoVerifiedEmail is returned when the provider account has no verified
// email address we could link the user to.
var ErrNoVerifiedEmail = errors.New("oauth: account has no verified email")

// Profile is the identity returned by a provider after a successful login.
type Profile struct {
	ProviderUserID string
	Email          string
	Name           string
}

type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	// Exchange trades the authorization code for the user's profile.
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// Registry holds the enabled providers by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry enables every provider that has credentials configured.
func NewRegistry(cfg config.OAuthConfig) *Registry {
	r := &Registry{providers: map[string]Provider{}}
	if cfg.Google.Enabled() {
		r.Add(NewGoogle(cfg.Google))
	}
	if cfg.GitHub.Enabled() {
		r.Add(NewGitHub(cfg.GitHub))
	}
	return r
}

func (r *Registry) Add(p Provider) {
	r.providers[p.Name()] = p
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names lists the enabled providers in a stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func oauthConfig(cfg config.OAuthProviderConfig, endpoint oauth2.Endpoint, defaultScopes []string) *oauth2.Config {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
}

// getJSON decodes a GET response from a provider API into v.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("oauth: request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("oauth: %s returned %d: %s", url, resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
