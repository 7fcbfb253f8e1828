package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the authorization level of a user. Only administrative action can
// change it; no public endpoint elevates a role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered identity. Accounts created through an OAuth
// provider carry a hash of a synthesized random password, so PasswordHash is
// always present and never usable as a known credential by anyone.
type User struct {
	ID                 bson.ObjectID `bson:"_id,omitempty"`
	Name               string        `bson:"name"`
	Username           string        `bson:"username"`
	Email              string        `bson:"email"`
	PasswordHash       string        `bson:"password_hash"`
	ProfilePicture     string        `bson:"profile_picture"`
	LanguagePreference string        `bson:"language_preference"`
	Role               Role          `bson:"role"`
	OAuthIDs           []string      `bson:"oauth_ids"`
	WatchedMovies      []string      `bson:"watched_movies"`
	CreatedAt          time.Time     `bson:"created_at"`
	UpdatedAt          time.Time     `bson:"updated_at"`
}

// HasOAuthID reports whether the given provider subject id is already linked
// to this user.
func (u *User) HasOAuthID(oauthID string) bool {
	for _, id := range u.OAuthIDs {
		if id == oauthID {
			return true
		}
	}

	return false
}
