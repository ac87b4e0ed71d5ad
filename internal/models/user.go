package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account
type User struct {
	ID                       uuid.UUID  `json:"id" db:"id"`
	FullName                 string     `json:"full_name" db:"full_name"`
	Username                 string     `json:"username" db:"username"`
	Email                    string     `json:"email" db:"email"` // always lowercase
	DateOfBirth              *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	PasswordHash             string     `json:"-" db:"password_hash"` // Hidden from JSON responses
	EmailVerified            bool       `json:"email_verified" db:"email_verified"`
	VerificationToken        *string    `json:"-" db:"verification_token"`
	VerificationTokenExpires *time.Time `json:"-" db:"verification_token_expires"`
	VerifiedTokenDigest      *string    `json:"-" db:"verified_token_digest"`
	IsPremium                bool       `json:"is_premium" db:"is_premium"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}
