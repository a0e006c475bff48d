package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/models"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate indicates a storage-level uniqueness violation. It is the
	// authoritative backstop for races that slip past application checks.
	ErrDuplicate = errors.New("store: duplicate record")
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// EventStore persists events.
type EventStore interface {
	// CreateWithOrganizer inserts the event and its Organizer participant in
	// one transaction; partial failure leaves neither row.
	CreateWithOrganizer(ctx context.Context, event *models.Event, organizer *models.EventParticipant) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	SoftCancel(ctx context.Context, id string, at time.Time) (*models.Event, error)
	FindByUserID(ctx context.Context, userID string) ([]models.Event, error)
	Search(ctx context.Context, filters SearchFilters) ([]SearchResult, int64, error)
}

// ParticipantStore persists event participation rows.
type ParticipantStore interface {
	Create(ctx context.Context, participant *models.EventParticipant) error
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.EventParticipant, error)
	FindByEventID(ctx context.Context, eventID string) ([]models.EventParticipant, error)
	FindByUserID(ctx context.Context, userID string) ([]models.EventParticipant, error)
	Delete(ctx context.Context, userID, eventID string) error
	// UpdateResponse sets status and responded_at atomically.
	UpdateResponse(ctx context.Context, userID, eventID string, status models.ResponseStatus, at time.Time) (*models.EventParticipant, error)
	ListOrganizedBy(ctx context.Context, userID string) ([]models.Event, error)
	ListInvitedTo(ctx context.Context, userID string) ([]InvitedEvent, error)
	ListWithUserDetails(ctx context.Context, eventID string) ([]ParticipantDetail, error)
}

// SessionStore persists authentication sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	// FindActiveByTokenHash returns the session only when it is valid and
	// unexpired.
	FindActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.Session, error)
	// Invalidate marks the session invalid and reports how many rows were
	// affected. Idempotent: invalidating an already-invalid or unknown hash
	// is not an error.
	Invalidate(ctx context.Context, tokenHash string) (int64, error)
	// CleanupExpired deletes expired or invalidated sessions and reports how
	// many rows were removed.
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
	// CountActive reports the number of valid, unexpired sessions.
	CountActive(ctx context.Context, now time.Time) (int64, error)
}

// SearchFilters narrows an event search. UserID is always the caller;
// results never cross participation boundaries.
type SearchFilters struct {
	Keyword     string
	Date        *time.Time
	UserStatus  models.ResponseStatus
	EventStatus models.EventStatus
	Role        models.ParticipantRole
	UserID      string
	Limit       int
	Offset      int
}

// SearchResult is an event row annotated with the caller's participation and
// a keyword relevance score (zero when no keyword was supplied).
type SearchResult struct {
	models.Event
	UserRole   models.ParticipantRole `json:"user_role"`
	UserStatus models.ResponseStatus  `json:"user_status"`
	Relevance  int                    `json:"relevance,omitempty"`
}

// InvitedEvent is an event row annotated with the invitee's participation.
type InvitedEvent struct {
	models.Event
	ParticipantRole   models.ParticipantRole `json:"participant_role"`
	ParticipantStatus models.ResponseStatus  `json:"participant_status"`
	InvitedAt         time.Time              `json:"invited_at"`
	RespondedAt       *time.Time             `json:"responded_at"`
}

// ParticipantDetail joins a participation row with user identity fields.
type ParticipantDetail struct {
	UserID      string                 `json:"user_id"`
	Username    string                 `json:"username"`
	FirstName   string                 `json:"first_name"`
	LastName    string                 `json:"last_name"`
	Email       string                 `json:"email"`
	EventID     string                 `json:"event_id"`
	Role        models.ParticipantRole `json:"role"`
	Status      models.ResponseStatus  `json:"status"`
	InvitedAt   time.Time              `json:"invited_at"`
	RespondedAt *time.Time             `json:"responded_at"`
}

// Store aggregates the gateway implementations behind a single handle.
type Store struct {
	Users        UserStore
	Events       EventStore
	Participants ParticipantStore
	Sessions     SessionStore
}

// New builds the GORM-backed store.
func New(db *gorm.DB) *Store {
	return &Store{
		Users:        &userStore{db: db},
		Events:       &eventStore{db: db},
		Participants: &participantStore{db: db},
		Sessions:     &sessionStore{db: db},
	}
}
