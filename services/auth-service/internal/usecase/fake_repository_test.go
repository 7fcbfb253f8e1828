package usecase

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sboof911/HyperTube/services/auth-service/internal/model"
)

// fakeUserRepository is an in-memory UserRepository that mimics the Mongo
// behavior the usecases depend on: ErrNoDocuments on a miss and a
// duplicate-key write error when a unique index would be violated.
type fakeUserRepository struct {
	users []*model.User
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key error"}},
	}
}

func (r *fakeUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, duplicateKeyError()
		}
	}

	user.ID = bson.NewObjectID()
	if user.OAuthIDs == nil {
		user.OAuthIDs = []string{}
	}
	if user.WatchedMovies == nil {
		user.WatchedMovies = []string{}
	}

	r.users = append(r.users, user)

	return user, nil
}

func (r *fakeUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID.Hex() == id })
}

func (r *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepository) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *fakeUserRepository) GetUserByUsernameOrEmail(
	_ context.Context,
	username, email string,
) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username || u.Email == email })
}

func (r *fakeUserRepository) AddOAuthID(_ context.Context, id, oauthID string) (*model.User, error) {
	user, err := r.find(func(u *model.User) bool { return u.ID.Hex() == id })
	if err != nil {
		return nil, err
	}

	if !user.HasOAuthID(oauthID) {
		user.OAuthIDs = append(user.OAuthIDs, oauthID)
	}

	return user, nil
}

func (r *fakeUserRepository) find(match func(*model.User) bool) (*model.User, error) {
	for _, user := range r.users {
		if match(user) {
			return user, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepository) remove(id string) {
	users := r.users[:0]
	for _, user := range r.users {
		if user.ID.Hex() != id {
			users = append(users, user)
		}
	}
	r.users = users
}

// racyUserRepository hides existing users from the registration pre-check so
// the duplicate-key translation path is exercised, like a second
// registration landing between the check and the insert.
type racyUserRepository struct {
	fakeUserRepository
}

func (r *racyUserRepository) GetUserByUsernameOrEmail(
	_ context.Context,
	_, _ string,
) (*model.User, error) {
	return nil, mongo.ErrNoDocuments
}
