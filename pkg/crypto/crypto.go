package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// MinTokenBytes is the smallest entropy accepted for bearer tokens (256 bits).
const MinTokenBytes = 32

// GenerateToken returns a random URL-safe token of the requested byte length.
func GenerateToken(length int) (string, error) {
	return GenerateTokenFrom(rand.Reader, length)
}

// GenerateTokenFrom reads length bytes from r and encodes them as unpadded base64url.
func GenerateTokenFrom(r io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("crypto: invalid token length %d", length)
	}

	buffer := make([]byte, length)
	if _, err := io.ReadFull(r, buffer); err != nil {
		return "", fmt.Errorf("crypto: read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
