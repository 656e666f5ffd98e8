// Package models defines client-side data models used by the RecruitMe
// credential store.
package models

// User is the identity handed back to callers after registration or
// authentication. It never carries the password hash.
type User struct {
	// ID is the store-assigned surrogate key. Always positive.
	ID int64
	// Email is stored and compared byte-for-byte, without normalization.
	Email string
}

// UserRecord is a full row of the users table as read by the repository.
type UserRecord struct {
	ID           int64
	Email        string
	PasswordHash string
}

// Public strips the password hash.
func (r *UserRecord) Public() User {
	return User{ID: r.ID, Email: r.Email}
}
