package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sboof911/HyperTube/services/auth-service/internal/config"
	"github.com/sboof911/HyperTube/services/auth-service/internal/model"
	"github.com/sboof911/HyperTube/services/auth-service/internal/repository"
	"github.com/sboof911/HyperTube/shared/auth"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	ErrUserNotFound = errors.New("user not found")
)

// TokenUsecase issues and validates access tokens. Tokens are stateless:
// validity is fully determined by signature and expiry, plus the subject
// still existing in the store.
type TokenUsecase interface {
	IssueAccessToken(user *model.User) (string, error)
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
}

type tokenUsecase struct {
	userRepo       repository.UserRepository
	jwtAuth        auth.JWTAuthenticator
	authServiceCfg *config.AuthServiceConfig
}

func NewTokenUsecase(
	userRepo repository.UserRepository,
	jwtAuth auth.JWTAuthenticator,
	authServiceCfg *config.AuthServiceConfig,
) TokenUsecase {
	return &tokenUsecase{
		userRepo:       userRepo,
		jwtAuth:        jwtAuth,
		authServiceCfg: authServiceCfg,
	}
}

func (u *tokenUsecase) IssueAccessToken(user *model.User) (string, error) {
	now := time.Now()
	claims := auth.AccessTokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.authServiceCfg.Token.ExpiresIn())),
		},
	}

	return u.jwtAuth.GenerateToken(claims)
}

func (u *tokenUsecase) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims := &auth.AccessTokenClaims{}
	if _, err := u.jwtAuth.ValidateTokenWithClaims(tokenString, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrInvalidToken
	}

	user, err := u.userRepo.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}
