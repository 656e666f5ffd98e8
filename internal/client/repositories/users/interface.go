package users

import (
	"context"

	"github.com/dmitrijs2005/recruitme/internal/client/models"
)

// Repository describes the operations the credential store needs on the users
// table. There is deliberately no update or delete.
type Repository interface {
	// Create inserts a user and returns the assigned id.
	Create(ctx context.Context, email, passwordHash string) (int64, error)

	// GetByEmail returns the row whose email matches exactly.
	GetByEmail(ctx context.Context, email string) (*models.UserRecord, error)
}
