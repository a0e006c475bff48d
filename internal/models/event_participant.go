package models

import "time"

// EventParticipant joins a user to an event with a role and response status.
// The composite primary key guarantees at most one row per (user, event)
// pair; the database enforces it even when concurrent invitations race past
// the application-level existence check.
type EventParticipant struct {
	UserID  string `gorm:"primaryKey;type:uuid" json:"user_id"`
	EventID string `gorm:"primaryKey;type:uuid" json:"event_id"`

	Role   ParticipantRole `gorm:"type:text;not null" json:"role"`
	Status ResponseStatus  `gorm:"type:text;not null;default:Pending" json:"status"`

	InvitedAt   time.Time  `gorm:"not null" json:"invited_at"`
	RespondedAt *time.Time `json:"responded_at"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// HasResponded is true once a non-Pending status has been recorded.
// Invariant: RespondedAt is non-nil iff Status is not Pending.
func (p *EventParticipant) HasResponded() bool {
	return p.Status.HasResponded() && p.RespondedAt != nil
}

// Respond records an explicit reply, stamping the response time. Pending is
// never a valid target; callers reject it before reaching this method.
func (p *EventParticipant) Respond(status ResponseStatus, now time.Time) {
	p.Status = status
	p.RespondedAt = &now
}

// IsOrganizer reports whether this participant holds the Organizer role.
func (p *EventParticipant) IsOrganizer() bool { return p.Role == RoleOrganizer }

// Permissions summarises the capability predicates for API payloads.
func (p *EventParticipant) Permissions() map[string]bool {
	return map[string]bool{
		"can_manage_event":  p.Role.CanManageEvent(),
		"can_invite_others": p.Role.CanInviteOthers(),
		"can_delete_event":  p.Role.CanDeleteEvent(),
	}
}
