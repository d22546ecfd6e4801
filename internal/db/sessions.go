package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courselab/courselab-back/internal/models"
)

func (s *Store) CreateSession(ctx context.Context, userID string, expirationDate time.Time) (*models.Session, error) {
	session := models.Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		ExpirationDate: expirationDate,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ValidSession returns the session only while its expiration date is in the
// future. An expired row reads as ErrNotFound, same as a missing one.
func (s *Store) ValidSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("id = ? AND expiration_date > ?", id, time.Now()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expiration_date <= ?", time.Now()).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
