package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/courselab/courselab-back/internal/db"
	"github.com/courselab/courselab-back/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

const bcryptCost = 10

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login verifies the credentials and opens a session. Unknown username and
// wrong password are indistinguishable to the caller.
func Login(ctx context.Context, store *db.Store, username, password string) (*models.Session, error) {
	user, err := store.UserWithPassword(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.Password == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password.Hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return store.CreateSession(ctx, user.ID, SessionExpirationDate())
}

// Signup hashes the password and creates the account with its first session.
func Signup(ctx context.Context, store *db.Store, email, username, name, password string) (*models.Session, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return store.Signup(ctx, db.SignupParams{
		Email:        email,
		Username:     username,
		Name:         name,
		PasswordHash: hash,
	}, SessionExpirationDate())
}
