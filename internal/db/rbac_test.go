package db

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/courselab/courselab-back/internal/models"
)

// The seed gives "user" the own-scoped grid and "admin" the any-scoped grid;
// signup attaches "user".

// userWithOnlyRole creates an account holding exactly the named role. Signup
// always attaches the default role, so the row is inserted directly.
func userWithOnlyRole(t *testing.T, store *Store, username, roleName string) *models.User {
	t.Helper()
	ctx := context.Background()
	user := models.User{
		ID:       uuid.NewString(),
		Email:    username + "@example.com",
		Username: username,
		Name:     username,
	}
	if err := store.db.WithContext(ctx).Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.AssignRole(ctx, user.ID, roleName); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	return &user
}

func TestHasPermissionWithoutQualifierMatchesAnyAccess(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	user := signupTestUser(t, store, "alice")

	q, err := models.ParsePermission("delete:course")
	if err != nil {
		t.Fatalf("ParsePermission() error = %v", err)
	}
	ok, err := store.HasPermission(ctx, user.ID, q)
	if err != nil {
		t.Fatalf("HasPermission() error = %v", err)
	}
	if !ok {
		t.Fatal("unqualified check failed for a user holding the own-scoped grant")
	}
}

func TestHasPermissionQualifierIsExact(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	user := signupTestUser(t, store, "alice")
	admin := userWithOnlyRole(t, store, "root", "admin")

	tests := []struct {
		name   string
		userID string
		perm   string
		want   bool
	}{
		{"own grant satisfies own", user.ID, "delete:course:own", true},
		{"own grant does not satisfy any", user.ID, "delete:course:any", false},
		{"any grant satisfies any", admin.ID, "delete:course:any", true},
		{"any grant does not satisfy own", admin.ID, "delete:course:own", false},
		{"either qualifier accepts own grant", user.ID, "delete:course:own,any", true},
	}
	for _, tt := range tests {
		q, err := models.ParsePermission(tt.perm)
		if err != nil {
			t.Fatalf("ParsePermission(%q) error = %v", tt.perm, err)
		}
		ok, err := store.HasPermission(ctx, tt.userID, q)
		if err != nil {
			t.Fatalf("%s: HasPermission() error = %v", tt.name, err)
		}
		if ok != tt.want {
			t.Fatalf("%s: HasPermission() = %v, want %v", tt.name, ok, tt.want)
		}
	}
}

func TestHasPermissionUnknownEntity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	user := signupTestUser(t, store, "alice")

	q, err := models.ParsePermission("delete:spaceship")
	if err != nil {
		t.Fatalf("ParsePermission() error = %v", err)
	}
	ok, err := store.HasPermission(ctx, user.ID, q)
	if err != nil {
		t.Fatalf("HasPermission() error = %v", err)
	}
	if ok {
		t.Fatal("HasPermission() = true for an entity no role grants")
	}
}

func TestHasRole(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	user := signupTestUser(t, store, "alice")

	ok, err := store.HasRole(ctx, user.ID, "user")
	if err != nil {
		t.Fatalf("HasRole() error = %v", err)
	}
	if !ok {
		t.Fatal("HasRole(user) = false after signup")
	}
	ok, err = store.HasRole(ctx, user.ID, "admin")
	if err != nil {
		t.Fatalf("HasRole() error = %v", err)
	}
	if ok {
		t.Fatal("HasRole(admin) = true for a plain user")
	}
}
