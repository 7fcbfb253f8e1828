package payload

import (
	"github.com/sboof911/HyperTube/services/auth-service/internal/model"
)

type RegisterRequest struct {
	Name               string `json:"name"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	ProfilePicture     string `json:"profilePicture,omitempty"`
	LanguagePreference string `json:"languagePreference,omitempty"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RegisterResponse struct {
	User        PublicUser `json:"user"`
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
}

// PublicUser is the subset of a user safe to return to clients. The password
// hash and provider subject ids never leave the service.
type PublicUser struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	ProfilePicture     string     `json:"profilePicture"`
	LanguagePreference string     `json:"languagePreference"`
	Role               model.Role `json:"role"`
	WatchedMovies      []string   `json:"watchedMovies"`
}

func NewPublicUser(user *model.User) PublicUser {
	watched := user.WatchedMovies
	if watched == nil {
		watched = []string{}
	}

	return PublicUser{
		ID:                 user.ID.Hex(),
		Name:               user.Name,
		Username:           user.Username,
		Email:              user.Email,
		ProfilePicture:     user.ProfilePicture,
		LanguagePreference: user.LanguagePreference,
		Role:               user.Role,
		WatchedMovies:      watched,
	}
}
