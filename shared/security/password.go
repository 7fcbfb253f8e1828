package security

import (
	"github.com/matthewhartstonge/argon2"
)

var hashConfig = argon2.DefaultConfig()

// HashPassword hashes a plaintext password with argon2id. The salt is
// generated internally, so two calls with the same input produce different
// encoded hashes that both verify.
func HashPassword(password string) (string, error) {
	encoded, err := hashConfig.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded hash. A
// malformed hash verifies false rather than returning an error, so a
// corrupted stored value behaves like a wrong password.
func VerifyPassword(password, encodedHash string) (bool, error) {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false, nil
	}

	return ok, nil
}

// RandomPassword returns a high-entropy password for accounts created
// through an OAuth provider. It is stored hashed and never shown to anyone.
func RandomPassword() string {
	return randomToken(32)
}
