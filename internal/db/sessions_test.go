package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidSessionIgnoresExpiredRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	user := signupTestUser(t, store, "alice")

	expired, err := store.CreateSession(ctx, user.ID, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := store.ValidSession(ctx, expired.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ValidSession(expired) error = %v, want ErrNotFound", err)
	}

	live, err := store.CreateSession(ctx, user.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	got, err := store.ValidSession(ctx, live.ID)
	if err != nil {
		t.Fatalf("ValidSession(live) error = %v", err)
	}
	if got.UserID != user.ID {
		t.Fatalf("session user = %q, want %q", got.UserID, user.ID)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	user := signupTestUser(t, store, "alice")

	if _, err := store.CreateSession(ctx, user.ID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	live, err := store.CreateSession(ctx, user.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	n, err := store.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("purged %d sessions, want 1", n)
	}
	if _, err := store.ValidSession(ctx, live.ID); err != nil {
		t.Fatalf("live session purged: %v", err)
	}
}

func TestDeleteConnectionGuardsLastSignIn(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// OAuth-only account: one connection, no password.
	session, err := store.SignupWithConnection(ctx, ConnectionSignupParams{
		Email:        "bob@example.com",
		Username:     "bob",
		Name:         "Bob",
		ProviderName: "github",
		ProviderID:   "42",
	}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SignupWithConnection() error = %v", err)
	}

	conns, err := store.ConnectionsForUser(ctx, session.UserID)
	if err != nil {
		t.Fatalf("ConnectionsForUser() error = %v", err)
	}
	if len(conns) != 1 {
		t.Fatalf("len(conns) = %d, want 1", len(conns))
	}

	err = store.DeleteConnection(ctx, session.UserID, conns[0].ID)
	if !errors.Is(err, ErrLastConnection) {
		t.Fatalf("DeleteConnection() error = %v, want ErrLastConnection", err)
	}

	// A second connection makes the first deletable.
	if _, err := store.CreateConnection(ctx, session.UserID, "google", "g-42"); err != nil {
		t.Fatalf("CreateConnection() error = %v", err)
	}
	if err := store.DeleteConnection(ctx, session.UserID, conns[0].ID); err != nil {
		t.Fatalf("DeleteConnection() error = %v", err)
	}
}
