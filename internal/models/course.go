package models

import "time"

// CourseLevel is the difficulty stored per translation.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "BEGINNER"
	LevelIntermediate CourseLevel = "INTERMEDIATE"
	LevelAdvanced     CourseLevel = "ADVANCED"
)

func (l CourseLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Course holds the language-independent fields; all text lives in
// per-language CourseTranslation rows. Ownership never changes after create.
type Course struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Duration  int       `gorm:"not null" json:"duration"` // minutes
	OwnerID   string    `gorm:"index;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	Owner        User                `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Images       []CourseImage       `json:"images,omitempty"`
	Translations []CourseTranslation `json:"translations,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseImage struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	CourseID    string    `gorm:"index;not null" json:"course_id"`
	AltText     string    `json:"alt_text"`
	ContentType string    `gorm:"not null" json:"content_type"`
	Blob        []byte    `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Course Course `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (CourseImage) TableName() string {
	return "course_images"
}

// Language id is the short code ("en", "fr", ...).
type Language struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

func (Language) TableName() string {
	return "languages"
}

// CourseTranslation is one language's rendition of a course, at most one row
// per (course, language).
type CourseTranslation struct {
	CourseID    string      `gorm:"primaryKey" json:"course_id"`
	LanguageID  string      `gorm:"primaryKey" json:"language_id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"not null" json:"description"`
	Content     string      `gorm:"not null" json:"content"`
	Level       CourseLevel `gorm:"not null" json:"level"`

	Course   Course   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Language Language `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (CourseTranslation) TableName() string {
	return "course_translations"
}
