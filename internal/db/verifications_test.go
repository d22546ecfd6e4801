package db

import (
	"context"
	"testing"
	"time"

	"github.com/courselab/courselab-back/internal/models"
)

func totpVerification(target, secret string, expiresAt *time.Time) models.Verification {
	return models.Verification{
		Type:      "2fa",
		Target:    target,
		Secret:    secret,
		Algorithm: "SHA1",
		Digits:    6,
		Period:    30,
		CharSet:   "0123456789",
		ExpiresAt: expiresAt,
	}
}

func TestUpsertVerificationReplacesSameTargetAndType(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertVerification(ctx, totpVerification("alice@example.com", "secret-1", nil))
	if err != nil {
		t.Fatalf("UpsertVerification() error = %v", err)
	}
	if _, err := store.UpsertVerification(ctx, totpVerification("alice@example.com", "secret-2", nil)); err != nil {
		t.Fatalf("UpsertVerification() resubmit error = %v", err)
	}

	var rows []models.Verification
	err = store.db.WithContext(ctx).
		Where("target = ? AND type = ?", "alice@example.com", "2fa").
		Find(&rows).Error
	if err != nil {
		t.Fatalf("load verifications: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].ID != first.ID {
		t.Fatalf("row id = %q, want the original %q", rows[0].ID, first.ID)
	}
	if rows[0].Secret != "secret-2" {
		t.Fatalf("secret = %q, want the replacement", rows[0].Secret)
	}

	// A different type for the same target is its own row.
	other := totpVerification("alice@example.com", "secret-3", nil)
	other.Type = "onboarding"
	if _, err := store.UpsertVerification(ctx, other); err != nil {
		t.Fatalf("UpsertVerification() error = %v", err)
	}
	var count int64
	err = store.db.WithContext(ctx).Model(&models.Verification{}).
		Where("target = ?", "alice@example.com").
		Count(&count).Error
	if err != nil {
		t.Fatalf("count verifications: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestDeleteVerification(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertVerification(ctx, totpVerification("alice@example.com", "secret-1", nil)); err != nil {
		t.Fatalf("UpsertVerification() error = %v", err)
	}
	if err := store.DeleteVerification(ctx, "alice@example.com", "2fa"); err != nil {
		t.Fatalf("DeleteVerification() error = %v", err)
	}

	var count int64
	err := store.db.WithContext(ctx).Model(&models.Verification{}).Count(&count).Error
	if err != nil {
		t.Fatalf("count verifications: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestDeleteExpiredVerificationsKeepsLiveRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	for target, expiresAt := range map[string]*time.Time{
		"expired@example.com":   &past,
		"live@example.com":      &future,
		"no-expiry@example.com": nil,
	} {
		if _, err := store.UpsertVerification(ctx, totpVerification(target, "s", expiresAt)); err != nil {
			t.Fatalf("UpsertVerification(%s) error = %v", target, err)
		}
	}

	purged, err := store.DeleteExpiredVerifications(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredVerifications() error = %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}
	var count int64
	err = store.db.WithContext(ctx).Model(&models.Verification{}).Count(&count).Error
	if err != nil {
		t.Fatalf("count verifications: %v", err)
	}
	if count != 2 {
		t.Fatalf("remaining = %d, want 2", count)
	}
}
