package domain

import (
	"strings"
	"time"
)

// AdminUsername is the seed account allowed through the development login bypass.
const AdminUsername = "admin"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// User models an authenticated back office operator.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ValidateRegistration checks the fields a new account must carry.
func ValidateRegistration(username, password, email string) error {
	var fe fieldErrors
	if strings.TrimSpace(username) == "" {
		fe.add("username", "username is required")
	}
	switch {
	case strings.TrimSpace(password) == "":
		fe.add("password", "password is required")
	case len(password) > MaxPasswordBytes:
		fe.add("password", "password must not exceed 72 bytes")
	}
	if !strings.Contains(email, "@") {
		fe.add("email", "email is invalid")
	}
	return fe.err(nil)
}

// NewUser returns an active user holding passwordHash. The clear-text
// password never reaches this type.
func NewUser(username, email, passwordHash string, now time.Time) *User {
	return &User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now.UTC(),
	}
}
