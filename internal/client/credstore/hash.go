package credstore

import "github.com/dmitrijs2005/recruitme/internal/cryptox"

// Hash is the store's default password digest: lowercase hex SHA-256 of the
// UTF-8 password, 64 characters, no salt.
func Hash(password string) (string, error) {
	return cryptox.HashPassword(password)
}
