// Package cryptox implements password hashing for the credential store.
//
// HashPassword is the keyless SHA-256 digest the users table has always
// stored. The PasswordHasher schemes wrap it together with salted
// alternatives (argon2id, bcrypt) that a deployment can opt into; they
// produce a different stored format, so switching schemes on an existing
// database invalidates existing accounts.
package cryptox

import (
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/recruitme/internal/common"
)

// Scheme names accepted by NewPasswordHasher.
const (
	SchemeSHA256   = "sha256"
	SchemeArgon2ID = "argon2id"
	SchemeBcrypt   = "bcrypt"
)

// PasswordHasher turns a plaintext password into its stored form and checks
// a candidate password against a stored value.
type PasswordHasher interface {
	Scheme() string
	Hash(password string) (string, error)
	// Verify reports whether password matches encoded. A non-nil error means
	// the input or the stored value could not be processed, not a mismatch.
	Verify(password, encoded string) (bool, error)
}

// NewPasswordHasher returns the hasher registered under scheme with its
// default parameters.
func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch scheme {
	case SchemeSHA256, "":
		return SHA256Hasher{}, nil
	case SchemeArgon2ID:
		return NewArgon2IDHasher(), nil
	case SchemeBcrypt:
		return NewBcryptHasher(0), nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

func checkInput(password string) error {
	if !utf8.ValidString(password) {
		return fmt.Errorf("password is not valid UTF-8: %w", common.ErrInvalidInput)
	}
	return nil
}
