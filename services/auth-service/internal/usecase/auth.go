package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sboof911/HyperTube/services/auth-service/internal/model"
	"github.com/sboof911/HyperTube/services/auth-service/internal/repository"
	"github.com/sboof911/HyperTube/shared/security"
	"github.com/sboof911/HyperTube/shared/validation"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, string, error)
	Login(ctx context.Context, params LoginParams) (*model.User, string, error)
}

// RegisterParams defines the parameters for user registration. Role and
// OAuthIDs are set by internal callers only; the public API never elevates a
// role or links a provider subject directly.
type RegisterParams struct {
	Name               string `json:"name"     validate:"required,min=2,max=50"`
	Username           string `json:"username" validate:"required,min=3,max=20"`
	Email              string `json:"email"    validate:"required,email"`
	Password           string `json:"password" validate:"required,min=6,max=100"`
	ProfilePicture     string `json:"profilePicture"     validate:"omitempty,url"`
	LanguagePreference string `json:"languagePreference" validate:"omitempty,min=2,max=8"`

	Role     model.Role `json:"-"`
	OAuthIDs []string   `json:"-"`
}

// LoginParams defines the parameters for user login. Login is either a
// username or an email address.
type LoginParams struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

var (
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type authUsecase struct {
	userRepo     repository.UserRepository
	tokenUsecase TokenUsecase
	validate     *validation.Validator
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	tokenUsecase TokenUsecase,
	validate *validation.Validator,
) AuthUsecase {
	return &authUsecase{
		userRepo:     userRepo,
		tokenUsecase: tokenUsecase,
		validate:     validate,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, string, error) {
	if err := u.validate.Struct(params); err != nil {
		return nil, "", err
	}

	// Advisory pre-check only. The unique indexes on username and email are
	// what actually prevents two racing registrations from both succeeding.
	_, err := u.userRepo.GetUserByUsernameOrEmail(ctx, params.Username, params.Email)
	if err == nil {
		return nil, "", ErrUserAlreadyExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, "", err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, "", err
	}

	role := params.Role
	if role == "" {
		role = model.RoleUser
	}

	profilePicture := params.ProfilePicture
	if profilePicture == "" {
		profilePicture = defaultProfilePicture()
	}

	languagePreference := params.LanguagePreference
	if languagePreference == "" {
		languagePreference = "en"
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:               params.Name,
		Username:           params.Username,
		Email:              params.Email,
		PasswordHash:       passwordHash,
		ProfilePicture:     profilePicture,
		LanguagePreference: languagePreference,
		Role:               role,
		OAuthIDs:           params.OAuthIDs,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", ErrUserAlreadyExists
		}

		return nil, "", err
	}

	accessToken, err := u.tokenUsecase.IssueAccessToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, accessToken, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*model.User, string, error) {
	if err := u.validate.Struct(params); err != nil {
		return nil, "", err
	}

	var (
		user *model.User
		err  error
	)
	if u.validate.IsEmail(params.Login) {
		user, err = u.userRepo.GetUserByEmail(ctx, params.Login)
	} else {
		user, err = u.userRepo.GetUserByUsername(ctx, params.Login)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", ErrUserNotFound
		}

		return nil, "", err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, "", err
	} else if !ok {
		return nil, "", ErrInvalidCredentials
	}

	accessToken, err := u.tokenUsecase.IssueAccessToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, accessToken, nil
}

func defaultProfilePicture() string {
	return fmt.Sprintf("https://i.pravatar.cc/150?img=%d", rand.IntN(70)+1)
}
