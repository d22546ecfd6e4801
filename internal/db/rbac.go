package db

import (
	"context"

	"github.com/courselab/courselab-back/internal/models"
)

// HasPermission reports whether any role assigned to the user carries a
// permission matching the query. When the query names access qualifiers the
// permission's access value must be one of them; a bare query matches any
// access value. Absence is a plain false, never an error.
func (s *Store) HasPermission(ctx context.Context, userID string, q models.PermissionQuery) (bool, error) {
	tx := s.db.WithContext(ctx).
		Table("users").
		Joins("INNER JOIN user_roles ON user_roles.user_id = users.id").
		Joins("INNER JOIN role_permissions ON role_permissions.role_id = user_roles.role_id").
		Joins("INNER JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("users.id = ?", userID).
		Where("permissions.action = ? AND permissions.entity = ?", q.Action, q.Entity)
	if len(q.Access) > 0 {
		tx = tx.Where("permissions.access IN ?", q.Access)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasRole reports whether the user is assigned the named role.
func (s *Store) HasRole(ctx context.Context, userID, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("users").
		Joins("INNER JOIN user_roles ON user_roles.user_id = users.id").
		Joins("INNER JOIN roles ON roles.id = user_roles.role_id").
		Where("users.id = ? AND roles.name = ?", userID, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
