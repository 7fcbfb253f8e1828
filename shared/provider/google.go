package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2v2 "google.golang.org/api/oauth2/v2"
)

const (
	googleProviderName = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleOAuthProvider drives the authorization-code flow against Google and
// normalizes the userinfo response.
type GoogleOAuthProvider struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewGoogleOAuthProvider(clientID, clientSecret, redirectURL string) (*GoogleOAuthProvider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	return &GoogleOAuthProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: googleUserInfoURL,
		httpClient:  newProviderHTTPClient(),
	}, nil
}

func (p *GoogleOAuthProvider) Name() string {
	return googleProviderName
}

func (p *GoogleOAuthProvider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleOAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	return token, nil
}

func (p *GoogleOAuthProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var userInfo oauth2v2.Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("google userinfo decode failed: %w", err)
	}

	if userInfo.Id == "" || userInfo.Email == "" {
		return nil, errors.New("google userinfo missing required fields")
	}

	return &Profile{
		Subject:    userInfo.Id,
		Name:       userInfo.Name,
		Email:      userInfo.Email,
		PictureURL: userInfo.Picture,
	}, nil
}
