package db

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/courselab/courselab-back/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	store, err := NewStore(gdb)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return store
}

func signupTestUser(t *testing.T, store *Store, username string) *models.User {
	t.Helper()
	ctx := context.Background()
	_, err := store.Signup(ctx, SignupParams{
		Email:        username + "@example.com",
		Username:     username,
		Name:         username,
		PasswordHash: "x",
	}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	user, err := store.UserByUsername(ctx, username)
	if err != nil {
		t.Fatalf("UserByUsername() error = %v", err)
	}
	return user
}
