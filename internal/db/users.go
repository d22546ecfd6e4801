package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courselab/courselab-back/internal/models"
)

// DefaultRole is attached to every new account at signup.
const DefaultRole = "user"

type SignupParams struct {
	Email        string
	Username     string
	Name         string
	PasswordHash string
}

type ConnectionSignupParams struct {
	Email        string
	Username     string
	Name         string
	ProviderName string
	ProviderID   string
	Image        *models.UserImage
}

// Signup creates the user, its password row, the default role assignment and
// a first session in one transaction.
func (s *Store) Signup(ctx context.Context, p SignupParams, sessionExpiry time.Time) (*models.Session, error) {
	var session *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := models.User{
			ID:       uuid.NewString(),
			Email:    strings.ToLower(p.Email),
			Username: strings.ToLower(p.Username),
			Name:     p.Name,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Password{UserID: user.ID, Hash: p.PasswordHash}).Error; err != nil {
			return err
		}
		if err := attachDefaultRole(tx, &user); err != nil {
			return err
		}
		created, err := createSession(tx, user.ID, sessionExpiry)
		if err != nil {
			return err
		}
		session = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SignupWithConnection creates an account from an OAuth identity: user,
// default role, connection, optional avatar image and a first session.
func (s *Store) SignupWithConnection(ctx context.Context, p ConnectionSignupParams, sessionExpiry time.Time) (*models.Session, error) {
	var session *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := models.User{
			ID:       uuid.NewString(),
			Email:    strings.ToLower(p.Email),
			Username: strings.ToLower(p.Username),
			Name:     p.Name,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := attachDefaultRole(tx, &user); err != nil {
			return err
		}
		conn := models.Connection{
			ID:           uuid.NewString(),
			ProviderName: p.ProviderName,
			ProviderID:   p.ProviderID,
			UserID:       user.ID,
		}
		if err := tx.Create(&conn).Error; err != nil {
			return err
		}
		if p.Image != nil {
			img := *p.Image
			img.ID = uuid.NewString()
			img.UserID = user.ID
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		created, err := createSession(tx, user.ID, sessionExpiry)
		if err != nil {
			return err
		}
		session = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// attachDefaultRole is a no-op when the role has not been seeded.
func attachDefaultRole(tx *gorm.DB, user *models.User) error {
	var role models.Role
	err := tx.Where("name = ?", DefaultRole).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Model(user).Association("Roles").Append(&role)
}

func createSession(tx *gorm.DB, userID string, expiry time.Time) (*models.Session, error) {
	session := models.Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		ExpirationDate: expiry,
	}
	if err := tx.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.firstUser(ctx, "id = ?", id)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.firstUser(ctx, "username = ?", strings.ToLower(username))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.firstUser(ctx, "email = ?", strings.ToLower(email))
}

func (s *Store) firstUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserWithPassword loads a user and its password row for credential checks.
func (s *Store) UserWithPassword(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Password").
		Where("username = ?", strings.ToLower(username)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) ResetPassword(ctx context.Context, username, hash string) error {
	user, err := s.UserByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Password{}).
		Where("user_id = ?", user.ID).
		Update("hash", hash).Error
}

func (s *Store) UserHasPassword(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Password{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// UserGraph loads everything owned by the user for the data export. Blobs
// are excluded from the serialized form; the handler attaches URLs instead.
func (s *Store) UserGraph(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Image").
		Preload("Courses").
		Preload("Courses.Images").
		Preload("Courses.Translations").
		Preload("Sessions").
		Preload("Roles").
		Where("id = ?", userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the account and every owned row. The cascade is spelled
// out here instead of leaning on ORM relation traversal.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var courseIDs []string
		if err := tx.Model(&models.Course{}).
			Where("owner_id = ?", userID).
			Pluck("id", &courseIDs).Error; err != nil {
			return err
		}
		if len(courseIDs) > 0 {
			if err := tx.Where("course_id IN ?", courseIDs).Delete(&models.CourseImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id IN ?", courseIDs).Delete(&models.CourseTranslation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", courseIDs).Delete(&models.Course{}).Error; err != nil {
				return err
			}
		}
		for _, m := range []any{
			&models.Session{}, &models.Connection{}, &models.UserImage{}, &models.Password{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM user_roles WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
}
