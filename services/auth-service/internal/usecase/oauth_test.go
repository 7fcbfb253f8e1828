package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/oauth2"

	"github.com/sboof911/HyperTube/services/auth-service/internal/model"
	"github.com/sboof911/HyperTube/services/auth-service/internal/repository"
	"github.com/sboof911/HyperTube/shared/provider"
)

type fakeOAuthProvider struct {
	name        string
	profile     *provider.Profile
	exchangeErr error
	fetchErr    error
}

func (p *fakeOAuthProvider) Name() string {
	return p.name
}

func (p *fakeOAuthProvider) AuthCodeURL(state string) string {
	return "https://provider.example.com/authorize?state=" + state
}

func (p *fakeOAuthProvider) Exchange(_ context.Context, _ string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}

	return &oauth2.Token{AccessToken: "provider-token"}, nil
}

func (p *fakeOAuthProvider) FetchProfile(_ context.Context, _ *oauth2.Token) (*provider.Profile, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}

	return p.profile, nil
}

func newOAuthTest(
	t *testing.T,
	repo repository.UserRepository,
	p provider.OAuthProvider,
) (TokenUsecase, AuthUsecase, OAuthUsecase) {
	t.Helper()

	tokenUsecase, authUsecase := newTestUsecases(t, repo, 15)

	logger := zerolog.Nop()
	oauthUsecase := NewOAuthUsecase(
		provider.NewRegistry(p),
		repo,
		authUsecase,
		tokenUsecase,
		&logger,
	)

	return tokenUsecase, authUsecase, oauthUsecase
}

func TestAuthorizationURL(t *testing.T) {
	repo := &fakeUserRepository{}
	_, _, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{name: "google"})

	url, err := oauthUsecase.AuthorizationURL("google", "state-123")
	require.NoError(t, err)
	assert.Contains(t, url, "state=state-123")

	_, err = oauthUsecase.AuthorizationURL("github", "state-123")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestHandleCallbackCreatesNewUser(t *testing.T) {
	repo := &fakeUserRepository{}
	tokenUsecase, _, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{
		name: "google",
		profile: &provider.Profile{
			Subject:    "google-sub-1",
			Name:       "Bob B",
			Email:      "bob@example.com",
			PictureURL: "https://example.com/bob.png",
		},
	})

	accessToken, err := oauthUsecase.HandleCallback(t.Context(), "google", "good-code")
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)

	user, err := tokenUsecase.Authenticate(t.Context(), accessToken)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "Bob B", user.Name)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.Equal(t, "https://example.com/bob.png", user.ProfilePicture)
	assert.Contains(t, user.OAuthIDs, "google-sub-1")
	assert.NotEmpty(t, user.PasswordHash)
}

func TestHandleCallbackExistingEmail(t *testing.T) {
	repo := &fakeUserRepository{}
	tokenUsecase, authUsecase, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{
		name: "google",
		profile: &provider.Profile{
			Subject: "google-sub-1",
			Name:    "Alice A",
			Email:   "alice@example.com",
		},
	})

	registered, _, err := authUsecase.Register(t.Context(), aliceParams())
	require.NoError(t, err)

	accessToken, err := oauthUsecase.HandleCallback(t.Context(), "google", "good-code")
	require.NoError(t, err)

	user, err := tokenUsecase.Authenticate(t.Context(), accessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Contains(t, user.OAuthIDs, "google-sub-1")
	assert.Len(t, repo.users, 1, "oauth login must never create a second identity for a known email")

	// A second callback is idempotent on the linked subject id.
	_, err = oauthUsecase.HandleCallback(t.Context(), "google", "good-code")
	require.NoError(t, err)
	assert.Len(t, repo.users[0].OAuthIDs, 1)
}

func TestHandleCallbackUsernameCollision(t *testing.T) {
	repo := &fakeUserRepository{}
	tokenUsecase, authUsecase, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{
		name: "fortytwo",
		profile: &provider.Profile{
			Subject: "42-sub-9",
			Name:    "Other Alice",
			Email:   "alice@other.com",
		},
	})

	_, _, err := authUsecase.Register(t.Context(), aliceParams())
	require.NoError(t, err)

	accessToken, err := oauthUsecase.HandleCallback(t.Context(), "fortytwo", "good-code")
	require.NoError(t, err)

	user, err := tokenUsecase.Authenticate(t.Context(), accessToken)
	require.NoError(t, err)
	assert.NotEqual(t, "alice", user.Username)
	assert.Regexp(t, `^alice\d{4}$`, user.Username)
	assert.LessOrEqual(t, len(user.Username), 20)
	assert.Contains(t, user.OAuthIDs, "42-sub-9")
	assert.Len(t, repo.users, 2)
}

func TestHandleCallbackExchangeFailure(t *testing.T) {
	repo := &fakeUserRepository{}
	_, _, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{
		name:        "google",
		exchangeErr: errors.New("invalid_grant: detail the client must not see"),
	})

	_, err := oauthUsecase.HandleCallback(t.Context(), "google", "bad-code")
	assert.ErrorIs(t, err, ErrOAuthProvider)
	assert.NotContains(t, err.Error(), "invalid_grant")
}

func TestHandleCallbackFetchFailure(t *testing.T) {
	repo := &fakeUserRepository{}
	_, _, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{
		name:     "google",
		fetchErr: errors.New("profile endpoint returned 502"),
	})

	_, err := oauthUsecase.HandleCallback(t.Context(), "google", "good-code")
	assert.ErrorIs(t, err, ErrOAuthProvider)
}

func TestHandleCallbackUnknownProvider(t *testing.T) {
	repo := &fakeUserRepository{}
	_, _, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{name: "google"})

	_, err := oauthUsecase.HandleCallback(t.Context(), "github", "good-code")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestHandleCallbackMultibyteNames(t *testing.T) {
	tests := []struct {
		name        string
		profileName string
		email       string
		wantName    string
	}{
		{
			// A single multibyte rune is below the minimum name length, so
			// the username takes over.
			name:        "single rune falls back to username",
			profileName: "李",
			email:       "mei@example.com",
			wantName:    "mei",
		},
		{
			name:        "multibyte name kept whole",
			profileName: strings.Repeat("я", 26),
			email:       "yana@example.com",
			wantName:    strings.Repeat("я", 26),
		},
		{
			name:        "overlong multibyte name clipped on rune boundary",
			profileName: strings.Repeat("я", 60),
			email:       "yana@example.com",
			wantName:    strings.Repeat("я", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUserRepository{}
			tokenUsecase, _, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{
				name: "google",
				profile: &provider.Profile{
					Subject: "google-sub-7",
					Name:    tt.profileName,
					Email:   tt.email,
				},
			})

			accessToken, err := oauthUsecase.HandleCallback(t.Context(), "google", "good-code")
			require.NoError(t, err)

			user, err := tokenUsecase.Authenticate(t.Context(), accessToken)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, user.Name)
			assert.True(t, utf8.ValidString(user.Name))
		})
	}
}

// usernameRaceRepository hides one username from availability checks while
// still counting it for inserts, like a concurrent registration taking the
// candidate between the check and the insert.
type usernameRaceRepository struct {
	fakeUserRepository
	contested string
}

func (r *usernameRaceRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if username == r.contested {
		return nil, mongo.ErrNoDocuments
	}

	return r.fakeUserRepository.GetUserByUsername(ctx, username)
}

func TestHandleCallbackUsernameTakenMidFlight(t *testing.T) {
	repo := &usernameRaceRepository{contested: "bob"}
	tokenUsecase, authUsecase, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{
		name: "google",
		profile: &provider.Profile{
			Subject: "google-sub-8",
			Name:    "Bob B",
			Email:   "bob@new.example.com",
		},
	})

	_, _, err := authUsecase.Register(t.Context(), RegisterParams{
		Name:     "Bob Prior",
		Username: "bob",
		Email:    "bob@taken.example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	accessToken, err := oauthUsecase.HandleCallback(t.Context(), "google", "good-code")
	require.NoError(t, err)

	user, err := tokenUsecase.Authenticate(t.Context(), accessToken)
	require.NoError(t, err)
	assert.Regexp(t, `^bob\d{4}$`, user.Username)
	assert.Len(t, repo.users, 2)
}

// emailRaceRepository misses the first email lookup, like a concurrent
// signup for the same email landing between the resolve and the insert.
type emailRaceRepository struct {
	fakeUserRepository
	misses int
}

func (r *emailRaceRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.misses > 0 {
		r.misses--
		return nil, mongo.ErrNoDocuments
	}

	return r.fakeUserRepository.GetUserByEmail(ctx, email)
}

func TestHandleCallbackEmailTakenMidFlight(t *testing.T) {
	repo := &emailRaceRepository{}
	tokenUsecase, authUsecase, oauthUsecase := newOAuthTest(t, repo, &fakeOAuthProvider{
		name: "google",
		profile: &provider.Profile{
			Subject: "google-sub-9",
			Name:    "Alice A",
			Email:   "alice@example.com",
		},
	})

	registered, _, err := authUsecase.Register(t.Context(), aliceParams())
	require.NoError(t, err)

	repo.misses = 1

	accessToken, err := oauthUsecase.HandleCallback(t.Context(), "google", "good-code")
	require.NoError(t, err)

	user, err := tokenUsecase.Authenticate(t.Context(), accessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Contains(t, user.OAuthIDs, "google-sub-9")
	assert.Len(t, repo.users, 1)
}

func TestUsernameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{email: "alice@example.com", want: "alice"},
		{email: "Alice.A+films@example.com", want: "aliceafilms"},
		{email: "a-very-long-local-part-indeed@example.com", want: "averylonglocalpartin"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, usernameFromEmail(tt.email))
		})
	}

	short := usernameFromEmail("ab@example.com")
	assert.GreaterOrEqual(t, len(short), 3)
	assert.Equal(t, "ab", short[:2])
}
