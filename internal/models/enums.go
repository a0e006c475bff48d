package models

import (
	"fmt"
	"strings"
)

// InvalidEnumError reports an input that does not map onto a closed enum set.
type InvalidEnumError struct {
	Enum  string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Enum, e.Value)
}

// ParticipantRole enumerates a participant's authority over an event.
type ParticipantRole string

const (
	RoleOrganizer    ParticipantRole = "Organizer"
	RoleCollaborator ParticipantRole = "Collaborator"
	RoleAttendee     ParticipantRole = "Attendee"
)

// ParticipantRoles lists the closed set of valid roles in display order.
func ParticipantRoles() []ParticipantRole {
	return []ParticipantRole{RoleOrganizer, RoleCollaborator, RoleAttendee}
}

// DefaultRole is assigned when an invitation omits the role.
func DefaultRole() ParticipantRole { return RoleAttendee }

// ParseRole normalises case and legacy synonyms to a canonical role.
// Empty input yields the default role.
func ParseRole(value string) (ParticipantRole, error) {
	if strings.TrimSpace(value) == "" {
		return DefaultRole(), nil
	}

	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "ORGANIZER", "OWNER", "CREATOR":
		return RoleOrganizer, nil
	case "COLLABORATOR", "HELPER", "CO_ORGANIZER":
		return RoleCollaborator, nil
	case "ATTENDEE", "PARTICIPANT", "GUEST":
		return RoleAttendee, nil
	default:
		return "", &InvalidEnumError{Enum: "role", Value: value}
	}
}

// CanManageEvent reports whether the role may update event details.
func (r ParticipantRole) CanManageEvent() bool {
	return r == RoleOrganizer || r == RoleCollaborator
}

// CanInviteOthers reports whether the role may invite further participants.
func (r ParticipantRole) CanInviteOthers() bool {
	return r == RoleOrganizer || r == RoleCollaborator
}

// CanDeleteEvent reports whether the role may cancel the event.
func (r ParticipantRole) CanDeleteEvent() bool {
	return r == RoleOrganizer
}

// SortRank orders roles for display: Organizer first, Attendee last.
// The ordering carries no authority semantics.
func (r ParticipantRole) SortRank() int {
	switch r {
	case RoleOrganizer:
		return 1
	case RoleCollaborator:
		return 2
	default:
		return 3
	}
}

// ResponseStatus enumerates a participant's reply to an invitation.
type ResponseStatus string

const (
	StatusPending  ResponseStatus = "Pending"
	StatusGoing    ResponseStatus = "Going"
	StatusMaybe    ResponseStatus = "Maybe"
	StatusNotGoing ResponseStatus = "NotGoing"
)

// ResponseStatuses lists the closed set of valid response statuses.
func ResponseStatuses() []ResponseStatus {
	return []ResponseStatus{StatusPending, StatusGoing, StatusMaybe, StatusNotGoing}
}

// DefaultResponseStatus is the initial state of every invitation.
func DefaultResponseStatus() ResponseStatus { return StatusPending }

// ParseResponseStatus normalises case, whitespace, and legacy synonyms to a
// canonical response status. Empty input yields Pending.
func ParseResponseStatus(value string) (ResponseStatus, error) {
	if strings.TrimSpace(value) == "" {
		return DefaultResponseStatus(), nil
	}

	normalised := strings.ToUpper(strings.TrimSpace(value))
	normalised = strings.Join(strings.Fields(normalised), "_")

	switch normalised {
	case "PENDING", "INVITED":
		return StatusPending, nil
	case "GOING", "YES", "ACCEPTED", "COLLABORATOR": // COLLABORATOR kept for pre-role data
		return StatusGoing, nil
	case "MAYBE", "TENTATIVE":
		return StatusMaybe, nil
	case "NOT_GOING", "NOTGOING", "NO", "DECLINED", "DELETED":
		return StatusNotGoing, nil
	default:
		return "", &InvalidEnumError{Enum: "response status", Value: value}
	}
}

// HasResponded is true for any status other than the initial Pending state.
func (s ResponseStatus) HasResponded() bool {
	return s != StatusPending
}

// EventStatus enumerates the lifecycle states of an event.
type EventStatus string

const (
	EventActive    EventStatus = "Active"
	EventCancelled EventStatus = "Cancelled"
	EventPostponed EventStatus = "Postponed"
)

// EventStatuses lists the closed set of valid event statuses.
func EventStatuses() []EventStatus {
	return []EventStatus{EventActive, EventCancelled, EventPostponed}
}

// DefaultEventStatus is assigned to newly created events.
func DefaultEventStatus() EventStatus { return EventActive }

// ParseEventStatus normalises case and legacy synonyms ("Canceled",
// "Deleted" map to Cancelled) to a canonical event status. Empty input
// yields Active.
func ParseEventStatus(value string) (EventStatus, error) {
	if strings.TrimSpace(value) == "" {
		return DefaultEventStatus(), nil
	}

	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "ACTIVE":
		return EventActive, nil
	case "CANCELLED", "CANCELED", "DELETED":
		return EventCancelled, nil
	case "POSTPONED":
		return EventPostponed, nil
	default:
		return "", &InvalidEnumError{Enum: "event status", Value: value}
	}
}
