package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/recruitme/internal/common"
)

type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost when cost is zero.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Scheme() string { return SchemeBcrypt }

func (h *BcryptHasher) Hash(password string) (string, error) {
	if err := checkInput(password); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("password longer than 72 bytes: %w", common.ErrInvalidInput)
		}
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(password, encoded string) (bool, error) {
	if err := checkInput(password); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt: %w", err)
	}
}
