package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the lowercase hex SHA-256 digest (64 characters) of
// the UTF-8 password bytes. No salt or key is mixed in, so the result is
// deterministic. Invalid UTF-8 fails with common.ErrInvalidInput.
func HashPassword(password string) (string, error) {
	if err := checkInput(password); err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// SHA256Hasher is the default scheme, storing HashPassword output.
type SHA256Hasher struct{}

func (SHA256Hasher) Scheme() string { return SchemeSHA256 }

func (SHA256Hasher) Hash(password string) (string, error) {
	return HashPassword(password)
}

// Verify compares digests in constant time.
func (SHA256Hasher) Verify(password, encoded string) (bool, error) {
	candidate, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(encoded)) == 1, nil
}
