package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courselab/courselab-back/internal/models"
)

func (s *Store) CreateConnection(ctx context.Context, userID, providerName, providerID string) (*models.Connection, error) {
	conn := models.Connection{
		ID:           uuid.NewString(),
		ProviderName: providerName,
		ProviderID:   providerID,
		UserID:       userID,
	}
	if err := s.db.WithContext(ctx).Create(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

// ConnectionByProvider resolves an external identity to its local binding.
func (s *Store) ConnectionByProvider(ctx context.Context, providerName, providerID string) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.WithContext(ctx).
		Where("provider_name = ? AND provider_id = ?", providerName, providerID).
		First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (s *Store) ConnectionsForUser(ctx context.Context, userID string) ([]models.Connection, error) {
	var conns []models.Connection
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&conns).Error
	return conns, err
}

// DeleteConnection refuses to remove the user's only way of signing in: a
// connection can go only while a password exists or another connection
// remains.
func (s *Store) DeleteConnection(ctx context.Context, userID, connectionID string) error {
	hasPassword, err := s.UserHasPassword(ctx, userID)
	if err != nil {
		return err
	}
	if !hasPassword {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Connection{}).
			Where("user_id = ?", userID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastConnection
		}
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", connectionID, userID).
		Delete(&models.Connection{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
