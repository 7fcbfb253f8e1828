package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sboof911/HyperTube/services/auth-service/internal/model"
	"github.com/sboof911/HyperTube/services/auth-service/internal/repository"
	"github.com/sboof911/HyperTube/shared/provider"
	"github.com/sboof911/HyperTube/shared/security"
)

var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrOAuthProvider   = errors.New("oauth provider request failed")
)

// maxUsernameLength matches the registration constraint on usernames.
const maxUsernameLength = 20

// OAuthUsecase drives the authorization-code login flow: code exchange,
// profile normalization and find-or-create of the matching user.
type OAuthUsecase interface {
	AuthorizationURL(providerName, state string) (string, error)
	HandleCallback(ctx context.Context, providerName, code string) (string, error)
}

type oauthUsecase struct {
	providers    *provider.Registry
	userRepo     repository.UserRepository
	authUsecase  AuthUsecase
	tokenUsecase TokenUsecase
	logger       *zerolog.Logger
}

func NewOAuthUsecase(
	providers *provider.Registry,
	userRepo repository.UserRepository,
	authUsecase AuthUsecase,
	tokenUsecase TokenUsecase,
	logger *zerolog.Logger,
) OAuthUsecase {
	return &oauthUsecase{
		providers:    providers,
		userRepo:     userRepo,
		authUsecase:  authUsecase,
		tokenUsecase: tokenUsecase,
		logger:       logger,
	}
}

func (u *oauthUsecase) AuthorizationURL(providerName, state string) (string, error) {
	p, err := u.providers.Get(providerName)
	if err != nil {
		return "", ErrUnknownProvider
	}

	return p.AuthCodeURL(state), nil
}

// HandleCallback exchanges the authorization code, resolves the normalized
// profile to a user and returns a freshly issued access token. Provider
// failures are logged with their detail but surface as the generic
// ErrOAuthProvider.
func (u *oauthUsecase) HandleCallback(ctx context.Context, providerName, code string) (string, error) {
	p, err := u.providers.Get(providerName)
	if err != nil {
		return "", ErrUnknownProvider
	}

	token, err := p.Exchange(ctx, code)
	if err != nil {
		u.logger.Error().Err(err).Str("provider", providerName).Msg("oauth code exchange failed")
		return "", ErrOAuthProvider
	}

	profile, err := p.FetchProfile(ctx, token)
	if err != nil {
		u.logger.Error().Err(err).Str("provider", providerName).Msg("oauth profile fetch failed")
		return "", ErrOAuthProvider
	}

	user, err := u.userRepo.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		return u.loginExistingUser(ctx, user, profile)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	return u.registerNewUser(ctx, profile)
}

// loginExistingUser issues a token for an already registered email. The
// provider subject id is linked so the account records every external
// identity it has been reached through.
func (u *oauthUsecase) loginExistingUser(
	ctx context.Context,
	user *model.User,
	profile *provider.Profile,
) (string, error) {
	if !user.HasOAuthID(profile.Subject) {
		updated, err := u.userRepo.AddOAuthID(ctx, user.ID.Hex(), profile.Subject)
		if err != nil {
			return "", err
		}
		user = updated
	}

	return u.tokenUsecase.IssueAccessToken(user)
}

func (u *oauthUsecase) registerNewUser(ctx context.Context, profile *provider.Profile) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		username, err := u.deriveUsername(ctx, profile.Email, attempt > 0)
		if err != nil {
			return "", err
		}

		// The synthesized password is stored hashed and never surfaced, so
		// the account has a real credential without anyone knowing it.
		_, accessToken, err := u.authUsecase.Register(ctx, RegisterParams{
			Name:           profileName(profile.Name, username),
			Username:       username,
			Email:          profile.Email,
			Password:       security.RandomPassword(),
			ProfilePicture: profile.PictureURL,
			OAuthIDs:       []string{profile.Subject},
		})
		if err == nil {
			return accessToken, nil
		}
		if !errors.Is(err, ErrUserAlreadyExists) {
			return "", err
		}

		// Lost a race between the availability checks and the insert. If the
		// email landed first this is a login, not a registration; otherwise
		// only the username candidate was taken and a fresh suffix will do.
		user, lookupErr := u.userRepo.GetUserByEmail(ctx, profile.Email)
		if lookupErr == nil {
			return u.loginExistingUser(ctx, user, profile)
		}
		if !errors.Is(lookupErr, mongo.ErrNoDocuments) {
			return "", lookupErr
		}
	}

	return "", ErrUserAlreadyExists
}

// profileName normalizes a provider display name to the 2-50 rune name
// constraint, falling back to the username when the provider sent nothing
// usable.
func profileName(displayName, fallback string) string {
	name := strings.TrimSpace(displayName)
	if utf8.RuneCountInString(name) < 2 {
		name = fallback
	}
	if runes := []rune(name); len(runes) > 50 {
		name = string(runes[:50])
	}

	return name
}

// deriveUsername builds a username candidate from the email local-part and
// disambiguates collisions with a random numeric suffix. forceSuffix skips
// the bare candidate, for retries after a lost insert race.
func (u *oauthUsecase) deriveUsername(ctx context.Context, email string, forceSuffix bool) (string, error) {
	base := usernameFromEmail(email)

	candidate := base
	if forceSuffix {
		candidate = withRandomSuffix(base)
	}
	for attempt := 0; attempt < 10; attempt++ {
		_, err := u.userRepo.GetUserByUsername(ctx, candidate)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}

		candidate = withRandomSuffix(base)
	}

	return "", errors.New("failed to derive a unique username")
}

// withRandomSuffix appends four random digits, trimming the base so the
// result stays within the username length constraint. The base is ASCII
// alphanumeric by construction.
func withRandomSuffix(base string) string {
	suffix := fmt.Sprintf("%d", rand.IntN(9000)+1000)
	if len(base)+len(suffix) > maxUsernameLength {
		base = base[:maxUsernameLength-len(suffix)]
	}

	return base + suffix
}

// usernameFromEmail keeps the alphanumeric characters of the local-part,
// lowercased and clipped to the username length constraints.
func usernameFromEmail(email string) string {
	localPart, _, _ := strings.Cut(email, "@")

	var b strings.Builder
	for _, r := range strings.ToLower(localPart) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	base := b.String()
	if len(base) > maxUsernameLength {
		base = base[:maxUsernameLength]
	}
	for len(base) < 3 {
		base += fmt.Sprintf("%d", rand.IntN(10))
	}

	return base
}
