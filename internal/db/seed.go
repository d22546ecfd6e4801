package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courselab/courselab-back/internal/models"
)

var seedLanguages = []models.Language{
	{ID: "en", Name: "English"},
	{ID: "fr", Name: "Français"},
	{ID: "es", Name: "Español"},
}

// Seed makes sure the static rows exist: supported languages, the CRUD
// permission grid over user/course, and the "user"/"admin" roles ("user"
// holds the own-scoped permissions, "admin" the any-scoped ones). Safe to
// run on every start.
func (s *Store) Seed(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, lang := range seedLanguages {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&lang).Error; err != nil {
				return err
			}
		}

		byAccess := map[string][]models.Permission{}
		for _, entity := range []string{"user", "course"} {
			for _, action := range []string{"create", "read", "update", "delete"} {
				for _, access := range []string{models.AccessOwn, models.AccessAny} {
					perm, err := ensurePermission(tx, action, entity, access)
					if err != nil {
						return err
					}
					byAccess[access] = append(byAccess[access], *perm)
				}
			}
		}

		if err := ensureRole(tx, DefaultRole, byAccess[models.AccessOwn]); err != nil {
			return err
		}
		return ensureRole(tx, "admin", byAccess[models.AccessAny])
	})
}

func ensurePermission(tx *gorm.DB, action, entity, access string) (*models.Permission, error) {
	var perm models.Permission
	err := tx.Where("action = ? AND entity = ? AND access = ?", action, entity, access).
		First(&perm).Error
	if err == nil {
		return &perm, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	perm = models.Permission{
		ID:     uuid.NewString(),
		Action: action,
		Entity: entity,
		Access: access,
	}
	if err := tx.Create(&perm).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func ensureRole(tx *gorm.DB, name string, perms []models.Permission) error {
	var role models.Role
	err := tx.Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = models.Role{ID: uuid.NewString(), Name: name}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return tx.Model(&role).Association("Permissions").Replace(perms)
}

// AssignRole adds the named role to a user.
func (s *Store) AssignRole(ctx context.Context, userID, roleName string) error {
	var role models.Role
	if err := s.db.WithContext(ctx).Where("name = ?", roleName).First(&role).Error; err != nil {
		return err
	}
	user := models.User{ID: userID}
	return s.db.WithContext(ctx).Model(&user).Association("Roles").Append(&role)
}
