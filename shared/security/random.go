package security

import (
	"crypto/rand"
	"encoding/base64"
)

func randomToken(bytes int) string {
	b := make([]byte, bytes)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
