package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courselab/courselab-back/internal/models"
)

// ImageUpdate is a submitted directive for an image that already exists.
// A nil Blob means only the alt text changes.
type ImageUpdate struct {
	ID          string
	AltText     string
	ContentType string
	Blob        []byte
}

// NewImage is a submitted directive for a brand-new image slot.
type NewImage struct {
	AltText     string
	ContentType string
	Blob        []byte
}

// CourseSubmission is a validated course-editor submission. An empty
// CourseID means create. Images absent from both lists are removed.
type CourseSubmission struct {
	CourseID     string
	OwnerID      string
	Duration     int
	LanguageID   string
	Title        string
	Description  string
	Content      string
	Level        models.CourseLevel
	ImageUpdates []ImageUpdate
	NewImages    []NewImage
}

// SaveCourse brings the course row, its image set and the translation for
// the submitted language into the submitted state, atomically:
//
//  1. upsert the course (ownership is immutable; on update only duration moves)
//  2. delete images whose id was not resubmitted
//  3. update resubmitted images, rotating the id when a new blob arrived
//  4. insert new images
//  5. upsert the (course, language) translation, other languages untouched
//
// It returns the saved course with its owner loaded. A course id that does
// not exist, or belongs to another user, yields ErrCourseNotFound.
func (s *Store) SaveCourse(ctx context.Context, sub CourseSubmission) (*models.Course, error) {
	courseID := sub.CourseID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if courseID == "" {
			courseID = uuid.NewString()
			course := models.Course{
				ID:       courseID,
				Duration: sub.Duration,
				OwnerID:  sub.OwnerID,
			}
			if err := tx.Create(&course).Error; err != nil {
				return err
			}
		} else {
			res := tx.Model(&models.Course{}).
				Where("id = ? AND owner_id = ?", courseID, sub.OwnerID).
				Updates(map[string]any{"duration": sub.Duration, "updated_at": time.Now()})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrCourseNotFound
			}
		}

		// Removal is expressed by omission: anything not resubmitted goes.
		kept := make([]string, 0, len(sub.ImageUpdates))
		for _, u := range sub.ImageUpdates {
			kept = append(kept, u.ID)
		}
		del := tx.Where("course_id = ?", courseID)
		if len(kept) > 0 {
			del = del.Where("id NOT IN ?", kept)
		}
		if err := del.Delete(&models.CourseImage{}).Error; err != nil {
			return err
		}

		for _, u := range sub.ImageUpdates {
			updates := map[string]any{
				"alt_text":   u.AltText,
				"updated_at": time.Now(),
			}
			if u.Blob != nil {
				// Replacing the bytes mints a fresh id so the old URL stops
				// resolving; the image route is served with an immutable
				// cache-control header keyed on the id.
				updates["id"] = uuid.NewString()
				updates["content_type"] = u.ContentType
				updates["blob"] = u.Blob
			}
			if err := tx.Model(&models.CourseImage{}).
				Where("id = ? AND course_id = ?", u.ID, courseID).
				Updates(updates).Error; err != nil {
				return err
			}
		}

		for _, n := range sub.NewImages {
			img := models.CourseImage{
				ID:          uuid.NewString(),
				CourseID:    courseID,
				AltText:     n.AltText,
				ContentType: n.ContentType,
				Blob:        n.Blob,
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}

		translation := models.CourseTranslation{
			CourseID:    courseID,
			LanguageID:  sub.LanguageID,
			Title:       sub.Title,
			Description: sub.Description,
			Content:     sub.Content,
			Level:       sub.Level,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "course_id"}, {Name: "language_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "content", "level",
			}),
		}).Create(&translation).Error
	})
	if err != nil {
		return nil, err
	}

	var course models.Course
	if err := s.db.WithContext(ctx).Preload("Owner").First(&course, "id = ?", courseID).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// CourseForView loads a course with its owner and image rows plus the
// translation for the given language. The translation is nil when that
// language has none; callers must not fill in a default.
func (s *Store) CourseForView(ctx context.Context, courseID, languageID string) (*models.Course, *models.CourseTranslation, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Images").
		First(&course, "id = ?", courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var translation models.CourseTranslation
	err = s.db.WithContext(ctx).
		Where("course_id = ? AND language_id = ?", courseID, languageID).
		First(&translation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &course, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &course, &translation, nil
}

// Translation returns the row for exactly (courseID, languageID), or
// ErrNotFound.
func (s *Store) Translation(ctx context.Context, courseID, languageID string) (*models.CourseTranslation, error) {
	var translation models.CourseTranslation
	err := s.db.WithContext(ctx).
		Where("course_id = ? AND language_id = ?", courseID, languageID).
		First(&translation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &translation, nil
}

// CoursesByOwner lists a user's courses newest-first, each with its image
// rows and the translation for the requested language when one exists.
func (s *Store) CoursesByOwner(ctx context.Context, ownerID, languageID string) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Preload("Images").
		Preload("Translations", "language_id = ?", languageID).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// CourseWithOwner loads just the course row and its owner, for ownership
// checks ahead of a delete.
func (s *Store) CourseWithOwner(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).Preload("Owner").First(&course, "id = ?", courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse removes the course and its dependents in one transaction.
func (s *Store) DeleteCourse(ctx context.Context, courseID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&models.CourseImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.CourseTranslation{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", courseID).Delete(&models.Course{}).Error
	})
}

func (s *Store) CourseImage(ctx context.Context, imageID string) (*models.CourseImage, error) {
	var image models.CourseImage
	err := s.db.WithContext(ctx).First(&image, "id = ?", imageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (s *Store) CourseImages(ctx context.Context, courseID string) ([]models.CourseImage, error) {
	var images []models.CourseImage
	err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Find(&images).Error
	return images, err
}

func (s *Store) UserImage(ctx context.Context, imageID string) (*models.UserImage, error) {
	var image models.UserImage
	err := s.db.WithContext(ctx).First(&image, "id = ?", imageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (s *Store) LanguageExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Language{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CoursesForReport loads every course with its owner and the translation for
// the given language, for the catalog export.
func (s *Store) CoursesForReport(ctx context.Context, languageID string) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Translations", "language_id = ?", languageID).
		Order("updated_at DESC").
		Find(&courses).Error
	return courses, err
}
