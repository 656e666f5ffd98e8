package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recruitme/internal/client/models"
	"github.com/dmitrijs2005/recruitme/internal/common"
	"github.com/dmitrijs2005/recruitme/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES (?, ?) RETURNING id`,
		email, passwordHash,
	).Scan(&id)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, common.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.UserRecord, error) {
	u := &models.UserRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
