package db

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/courselab/courselab-back/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrCourseNotFound covers both an absent course id and a course owned by
	// someone else; callers must not be able to tell the two apart.
	ErrCourseNotFound = errors.New("course not found")
	// ErrLastConnection is returned when deleting a connection would leave an
	// account with no password and no other connection to sign in with.
	ErrLastConnection = errors.New("cannot delete the last connection")
)

// Store wraps the gorm client. It is constructed once in main and passed
// into handlers; nothing keeps package-level database state.
type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return NewStore(gdb)
}

// NewStore migrates the schema and returns a Store. Tests call it with an
// in-memory sqlite client.
func NewStore(gdb *gorm.DB) (*Store, error) {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.Password{},
		&models.UserImage{},
		&models.Session{},
		&models.Connection{},
		&models.Verification{},
		&models.Permission{},
		&models.Role{},
		&models.Language{},
		&models.Course{},
		&models.CourseImage{},
		&models.CourseTranslation{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: gdb}, nil
}

func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
