package models

import "time"

// User is an account holder. Deleting a user removes all owned rows.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Image       *UserImage   `json:"image,omitempty"`
	Password    *Password    `json:"-"`
	Sessions    []Session    `json:"sessions,omitempty"`
	Connections []Connection `json:"connections,omitempty"`
	Roles       []Role       `gorm:"many2many:user_roles" json:"roles,omitempty"`
	Courses     []Course     `gorm:"foreignKey:OwnerID" json:"courses,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Password holds the bcrypt hash for local accounts. OAuth-only users have no row.
type Password struct {
	UserID string `gorm:"primaryKey" json:"user_id"`
	Hash   string `gorm:"not null" json:"-"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Password) TableName() string {
	return "passwords"
}

// UserImage is the profile picture, at most one per user.
type UserImage struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"uniqueIndex;not null" json:"user_id"`
	AltText     string    `json:"alt_text"`
	ContentType string    `gorm:"not null" json:"content_type"`
	Blob        []byte    `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (UserImage) TableName() string {
	return "user_images"
}

// Session is the server-side record behind the session cookie. It is valid
// only while ExpirationDate is in the future; expired rows read as absent.
type Session struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"index;not null" json:"user_id"`
	ExpirationDate time.Time `gorm:"not null" json:"expiration_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}

// Connection binds an external OAuth identity to one local user. The
// (provider_name, provider_id) pair is globally unique.
type Connection struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	ProviderName string    `gorm:"not null;uniqueIndex:idx_connections_provider" json:"provider_name"`
	ProviderID   string    `gorm:"not null;uniqueIndex:idx_connections_provider" json:"provider_id"`
	UserID       string    `gorm:"index;not null" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Connection) TableName() string {
	return "connections"
}

// Verification stores TOTP parameters for 2FA and email verification flows,
// unique on (target, type).
type Verification struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Type      string     `gorm:"not null;uniqueIndex:idx_verifications_target_type" json:"type"`
	Target    string     `gorm:"not null;uniqueIndex:idx_verifications_target_type" json:"target"`
	Secret    string     `gorm:"not null" json:"-"`
	Algorithm string     `gorm:"not null" json:"algorithm"`
	Digits    int        `gorm:"not null" json:"digits"`
	Period    int        `gorm:"not null" json:"period"`
	CharSet   string     `gorm:"not null" json:"char_set"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Verification) TableName() string {
	return "verifications"
}
