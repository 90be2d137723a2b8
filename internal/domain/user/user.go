package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	DateJoined   time.Time `json:"date_joined"`
}

// Summary is the public projection of a user embedded in other resources.
type Summary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already in use")
	ErrUsernameTaken = errors.New("username already in use")
)

type SignUpRequest struct {
	Username        string `json:"username" binding:"required,min=1,max=150,username"`
	Email           string `json:"email" binding:"required,email,max=254"`
	Password        string `json:"password" binding:"required,max=128"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// New builds a user from a validated sign up request and an already hashed password.
func New(req SignUpRequest, passwordHash string, now time.Time) User {
	return User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
		DateJoined:   now.UTC(),
	}
}
