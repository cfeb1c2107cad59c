package repository

import (
	"context"

	"elibro/models"
)

// UserRepository is the credential store contract. Implementations own the
// at-rest representation: PII fields are encrypted before writes and
// decrypted on every read path, email lookups encrypt the plaintext query
// before matching, and passwords are salted and hashed on create and on
// password change.
type UserRepository interface {
	// CreateUser persists a new record, hashing the plaintext password and
	// encrypting PII. Fails with a 409 error when the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns the decrypted record, or nil when absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns the decrypted record, or nil when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByRefreshToken matches the stored encrypted token byte for
	// byte. Returns nil when no record holds the presented token.
	GetUserByRefreshToken(ctx context.Context, encryptedToken string) (*models.User, error)

	// GetAllUsers returns a page of decrypted records sorted by creation
	// time. page is zero-based.
	GetAllUsers(ctx context.Context, page, limit int) ([]*models.User, error)

	CountUsers(ctx context.Context) (int64, error)

	// UpdateUser persists the in-memory record (load, mutate, save).
	// Concurrent updates of the same record are last-writer-wins.
	UpdateUser(ctx context.Context, user *models.User) error

	SetRefreshToken(ctx context.Context, userID, encryptedToken string) error
	ClearRefreshToken(ctx context.Context, userID string) error

	// DeleteUser removes the record, failing with a 404 error when absent.
	DeleteUser(ctx context.Context, id string) error

	// MonthlySignups counts created users per "YYYY-MM" month.
	MonthlySignups(ctx context.Context) ([]models.MonthlySignup, error)
}
