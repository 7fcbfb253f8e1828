package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
)

const (
	fortyTwoProviderName = "fortytwo"
	fortyTwoUserInfoURL  = "https://api.intra.42.fr/v2/me"
)

var fortyTwoEndpoint = oauth2.Endpoint{
	AuthURL:  "https://api.intra.42.fr/oauth/authorize",
	TokenURL: "https://api.intra.42.fr/oauth/token",
}

// fortyTwoUser is the subset of the intra /v2/me response this service
// needs.
type fortyTwoUser struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	Login       string `json:"login"`
	Displayname string `json:"displayname"`
	Image       struct {
		Link string `json:"link"`
	} `json:"image"`
}

// FortyTwoOAuthProvider drives the authorization-code flow against the 42
// intra API and normalizes the /v2/me response.
type FortyTwoOAuthProvider struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewFortyTwoOAuthProvider(clientID, clientSecret, redirectURL string) (*FortyTwoOAuthProvider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("42 oauth config missing required fields")
	}

	return &FortyTwoOAuthProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     fortyTwoEndpoint,
			Scopes:       []string{"public"},
		},
		userInfoURL: fortyTwoUserInfoURL,
		httpClient:  newProviderHTTPClient(),
	}, nil
}

func (p *FortyTwoOAuthProvider) Name() string {
	return fortyTwoProviderName
}

func (p *FortyTwoOAuthProvider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

func (p *FortyTwoOAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("42 token exchange failed: %w", err)
	}

	return token, nil
}

func (p *FortyTwoOAuthProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("42 profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("42 profile returned status %d", resp.StatusCode)
	}

	var user fortyTwoUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("42 profile decode failed: %w", err)
	}

	if user.ID == 0 || user.Email == "" {
		return nil, errors.New("42 profile missing required fields")
	}

	name := user.Displayname
	if name == "" {
		name = user.Login
	}

	return &Profile{
		Subject:    strconv.Itoa(user.ID),
		Name:       name,
		Email:      user.Email,
		PictureURL: user.Image.Link,
	}, nil
}
