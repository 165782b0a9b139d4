package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
)

// ResetTokenBytes is the entropy of a password-reset token before hex encoding.
const ResetTokenBytes = 20

var ErrEmptyToken = errors.New("token is empty")

// GenerateResetToken returns a random hex token for the client and the
// hash that is persisted. Only the hash ever reaches the database.
func GenerateResetToken() (token, hash string, err error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, HashToken(token), nil
}

// HashToken mengembalikan SHA-256 (hex) dari token yang dikirim user.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateTokenFormat rejects tokens that cannot have come from GenerateResetToken.
func ValidateTokenFormat(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if len(token) != ResetTokenBytes*2 {
		return errors.New("token has unexpected length")
	}
	if _, err := hex.DecodeString(token); err != nil {
		return errors.New("token is not hex encoded")
	}
	return nil
}
