package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
// Users authenticate with email/password and appear in the participant
// picker when other users create splits.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique).
	// Used for login and as the recipient of reminder emails.
	Email string

	// Name is the display name of the user.
	Name string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized in API responses.
	PasswordHash string

	// QRCodeURL points at the user's payment QR code image, shown to
	// participants who owe them money. Empty if none uploaded.
	QRCodeURL string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile update.
	UpdatedAt int64
}

// NewUser creates a user with a fresh UUID and timestamps.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
