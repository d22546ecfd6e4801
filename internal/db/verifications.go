package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/courselab/courselab-back/internal/models"
)

// UpsertVerification replaces any previous record for the same
// (target, type) pair; a new challenge invalidates the old one.
func (s *Store) UpsertVerification(ctx context.Context, v models.Verification) (*models.Verification, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "target"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"secret", "algorithm", "digits", "period", "char_set", "expires_at",
		}),
	}).Create(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) DeleteVerification(ctx context.Context, target, verificationType string) error {
	return s.db.WithContext(ctx).
		Where("target = ? AND type = ?", target, verificationType).
		Delete(&models.Verification{}).Error
}

func (s *Store) DeleteExpiredVerifications(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now()).
		Delete(&models.Verification{})
	return res.RowsAffected, res.Error
}
