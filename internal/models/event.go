package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a scheduled gathering owned by its creator. Mutation authority is
// delegated to participant roles, not raw ownership.
type Event struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `json:"description"`
	Date        time.Time   `gorm:"index;not null" json:"date"`
	Time        string      `gorm:"not null" json:"time"`
	Location    string      `json:"location"`
	Status      EventStatus `gorm:"type:text;not null;default:Active;index" json:"status"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	// SearchText is a precomputed projection of the event's textual fields,
	// maintained on save and matched by keyword search.
	SearchText string `gorm:"index" json:"-"`

	Participants []EventParticipant `gorm:"foreignKey:EventID" json:"participants,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave refreshes the searchable text projection.
func (e *Event) BeforeSave(tx *gorm.DB) error {
	e.SearchText = strings.ToLower(strings.Join([]string{e.Title, e.Description, e.Location}, " "))
	return nil
}

// IsActive reports whether the event still accepts invitations.
func (e *Event) IsActive() bool { return e.Status == EventActive }

// IsCancelled reports whether the event has been soft-cancelled.
func (e *Event) IsCancelled() bool { return e.Status == EventCancelled }

// IsPostponed reports whether the event is postponed.
func (e *Event) IsPostponed() bool { return e.Status == EventPostponed }

// Cancel soft-cancels the event. Participant rows are untouched.
func (e *Event) Cancel(now time.Time) {
	e.Status = EventCancelled
	e.UpdatedAt = now
}

// Postpone marks the event postponed.
func (e *Event) Postpone(now time.Time) {
	e.Status = EventPostponed
	e.UpdatedAt = now
}
