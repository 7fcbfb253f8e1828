package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Profile is a normalized view of the identity facts an OAuth provider
// returns for an authenticated principal.
type Profile struct {
	Subject    string
	Name       string
	Email      string
	PictureURL string
}

// OAuthProvider defines the contract every external auth provider must
// implement. Implementations return identity facts only; user lookup,
// creation and token issuance happen in the caller.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "fortytwo").
	Name() string

	// AuthCodeURL returns the provider authorization URL for the given
	// anti-forgery state.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for a provider access token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchProfile fetches and normalizes the profile of the principal the
	// token belongs to.
	FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// Registry holds all configured OAuth providers and allows lookup by
// provider name. It is built once at startup and never mutated.
type Registry struct {
	providers map[string]OAuthProvider
}

// NewRegistry registers the given OAuth providers by name.
// Provider names must be unique.
func NewRegistry(list ...OAuthProvider) *Registry {
	m := make(map[string]OAuthProvider, len(list))
	for _, p := range list {
		m[p.Name()] = p
	}

	return &Registry{providers: m}
}

// Get returns the OAuth provider by name or an error if not registered.
func (r *Registry) Get(name string) (OAuthProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s", name)
	}

	return p, nil
}

// newProviderHTTPClient bounds every call to a provider so a slow identity
// provider cannot hold a request open indefinitely.
func newProviderHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
