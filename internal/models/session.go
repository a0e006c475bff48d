package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session backs an issued credential so it can be revoked independently of
// the credential's own expiry. Only the sha-256 digest of the credential is
// stored; the raw token never touches the database.
type Session struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TokenHash string `gorm:"uniqueIndex;not null" json:"-"`

	IsValid   bool      `gorm:"default:true" json:"is_valid"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// IsActive reports whether the session may still authenticate requests:
// it must be valid and unexpired.
func (s *Session) IsActive(now time.Time) bool {
	return s.IsValid && !s.IsExpired(now)
}
