package auth

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/charlesng35/agentauth/pkg/crypto"
)

// TokenIssuer mints opaque bearer tokens. Uniqueness is left to the session
// store's unique index.
type TokenIssuer struct {
	bytes  int
	source io.Reader
}

// NewTokenIssuer returns an issuer reading from crypto/rand. byteLen below
// crypto.MinTokenBytes is raised to the minimum.
func NewTokenIssuer(byteLen int) *TokenIssuer {
	return newTokenIssuer(byteLen, rand.Reader)
}

func newTokenIssuer(byteLen int, source io.Reader) *TokenIssuer {
	if byteLen < crypto.MinTokenBytes {
		byteLen = crypto.MinTokenBytes
	}
	return &TokenIssuer{bytes: byteLen, source: source}
}

// Generate returns a fresh base64url token without padding.
func (t *TokenIssuer) Generate() (string, error) {
	token, err := crypto.GenerateTokenFrom(t.source, t.bytes)
	if err != nil {
		return "", fmt.Errorf("token issuer: %w", err)
	}
	return token, nil
}
