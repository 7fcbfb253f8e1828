package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims are the claims carried by a HyperTube access token.
// Subject holds the user id.
type AccessTokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTAuthenticator signs and validates access tokens with a symmetric
// secret. The signing algorithm is fixed at construction time.
type JWTAuthenticator struct {
	secret []byte
	method jwt.SigningMethod
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance. The algorithm
// name must resolve to an HMAC signing method (HS256, HS384 or HS512);
// anything else is a configuration error.
func NewJWTAuthenticator(secret, algorithm string) (JWTAuthenticator, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return JWTAuthenticator{}, fmt.Errorf("unknown signing algorithm: %s", algorithm)
	}

	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return JWTAuthenticator{}, fmt.Errorf("signing algorithm %s is not symmetric", algorithm)
	}

	return JWTAuthenticator{
		secret: []byte(secret),
		method: method,
	}, nil
}

// GenerateToken generates a signed token with the given claims.
// This is generic and accepts any type that implements jwt.Claims.
func (a *JWTAuthenticator) GenerateToken(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(a.method, claims)

	tokenStr, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// ValidateTokenWithClaims validates a token and parses it into the provided
// claims type. The claims parameter should be a pointer to a struct that
// implements jwt.Claims.
func (a *JWTAuthenticator) ValidateTokenWithClaims(tokenString string, claims jwt.Claims) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{a.method.Alg()}),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return token, nil
}
