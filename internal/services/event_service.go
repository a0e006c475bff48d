package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/store"
	apperrors "github.com/gatherly/gatherly/pkg/errors"
	"github.com/gatherly/gatherly/pkg/metrics"
)

var (
	// ErrEventNotFound indicates the referenced event does not exist.
	ErrEventNotFound = apperrors.NewNotFound("Event not found")
	// ErrInviteeNotFound indicates the invited user does not exist.
	ErrInviteeNotFound = apperrors.NewNotFound("Invitee not found")
	// ErrNotParticipant rejects callers with no participant row on the event.
	ErrNotParticipant = apperrors.NewForbidden("You are not a participant of this event")
	// ErrInsufficientRole rejects participants whose role lacks the required capability.
	ErrInsufficientRole = apperrors.NewForbidden("Your role does not permit this action")
	// ErrNotInvited rejects response updates from users never invited to the event.
	ErrNotInvited = apperrors.NewForbidden("You are not invited to this event")
	// ErrAlreadyInvited indicates the target already holds a participant row.
	ErrAlreadyInvited = apperrors.NewConflict("User is already invited to this event")
	// ErrEventNotAcceptingInvites rejects invitations to non-active events.
	ErrEventNotAcceptingInvites = apperrors.NewBadRequest("Cannot invite to a cancelled or postponed event")
	// ErrSecondOrganizer rejects invitations that would add a second organizer.
	ErrSecondOrganizer = apperrors.NewBadRequest("An event can only have one organizer")
	// ErrEventCancelled rejects responses to a cancelled event.
	ErrEventCancelled = apperrors.NewBadRequest("Cannot respond to a cancelled event")
	// ErrAlreadyCancelled rejects cancelling an event twice.
	ErrAlreadyCancelled = apperrors.NewBadRequest("Event is already cancelled")
	// ErrPendingResponse rejects Pending as an explicit response target.
	ErrPendingResponse = apperrors.NewBadRequest("Response status must be Going, Maybe, or NotGoing")
	// ErrNoOrganizedEvents is raised when a user organizes no events.
	ErrNoOrganizedEvents = apperrors.NewNotFound("No organized events found")
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// CreateEventInput describes a new event.
type CreateEventInput struct {
	Title       string
	Description string
	Date        time.Time
	Time        string
	Location    string
}

// UpdateEventInput enumerates mutable event attributes. Status may move
// between Active and Postponed; cancellation has its own operation.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Date        *time.Time
	Time        *string
	Location    *string
	Status      *models.EventStatus
}

// EventSummary is the denormalized event shape embedded in invitation payloads.
type EventSummary struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Date     time.Time          `json:"date"`
	Time     string             `json:"time"`
	Location string             `json:"location"`
	Status   models.EventStatus `json:"status"`
}

// UserSummary is the denormalized user shape embedded in invitation payloads.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Invitation is the result of a successful invite.
type Invitation struct {
	Participant *models.EventParticipant `json:"participant"`
	Event       EventSummary             `json:"event"`
	Invitee     UserSummary              `json:"invitee"`
	InvitedBy   UserSummary              `json:"invited_by"`
}

// CreatedEvent pairs a new event with its organizer participant row.
type CreatedEvent struct {
	Event     *models.Event            `json:"event"`
	Organizer *models.EventParticipant `json:"organizer"`
}

// CancellationResult reports a soft-cancelled event and everyone it affects.
type CancellationResult struct {
	Event                *models.Event             `json:"event"`
	AffectedParticipants []store.ParticipantDetail `json:"affected_participants"`
}

// SearchPage is one page of caller-scoped search results.
type SearchPage struct {
	Results []store.SearchResult `json:"results"`
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
	HasMore bool                 `json:"has_more"`
}

// EventService is the access-control and participation engine. Every mutating
// operation checks its preconditions, in order, before touching storage.
type EventService struct {
	store *store.Store
	now   func() time.Time
}

// NewEventService constructs an EventService instance.
func NewEventService(st *store.Store) (*EventService, error) {
	if st == nil {
		return nil, errors.New("event service: store is required")
	}
	return &EventService{
		store: st,
		now:   time.Now,
	}, nil
}

// CreateEvent creates an active event together with its Organizer participant
// row. The creator is implicitly Going to their own event. Both rows persist
// together or not at all.
func (s *EventService) CreateEvent(ctx context.Context, userID string, input CreateEventInput) (*CreatedEvent, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if input.Date.IsZero() {
		return nil, apperrors.NewBadRequest("date is required")
	}
	if strings.TrimSpace(input.Time) == "" {
		return nil, apperrors.NewBadRequest("time is required")
	}

	now := s.now()
	event := &models.Event{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Date:        input.Date,
		Time:        strings.TrimSpace(input.Time),
		Location:    strings.TrimSpace(input.Location),
		Status:      models.EventActive,
		UserID:      userID,
	}
	organizer := &models.EventParticipant{
		UserID:    userID,
		Role:      models.RoleOrganizer,
		Status:    models.StatusGoing,
		InvitedAt: now,
	}

	if err := s.store.Events.CreateWithOrganizer(ctx, event, organizer); err != nil {
		return nil, fmt.Errorf("event service: create event: %w", err)
	}

	return &CreatedEvent{Event: event, Organizer: organizer}, nil
}

// UpdateEvent applies partial updates to an event's details. Requires a
// participant row whose role can manage the event.
func (s *EventService) UpdateEvent(ctx context.Context, userID, eventID string, input UpdateEventInput) (*models.Event, error) {
	ctx = ensureContext(ctx)

	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}

	participant, err := s.findParticipant(ctx, userID, eventID, ErrNotParticipant)
	if err != nil {
		return nil, err
	}
	if !participant.Role.CanManageEvent() {
		return nil, ErrInsufficientRole
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewBadRequest("title cannot be empty")
		}
		event.Title = title
	}
	if input.Description != nil {
		event.Description = strings.TrimSpace(*input.Description)
	}
	if input.Date != nil {
		event.Date = *input.Date
	}
	if input.Time != nil {
		event.Time = strings.TrimSpace(*input.Time)
	}
	if input.Location != nil {
		event.Location = strings.TrimSpace(*input.Location)
	}
	if input.Status != nil {
		if *input.Status == models.EventCancelled {
			return nil, apperrors.NewBadRequest("use the delete operation to cancel an event")
		}
		event.Status = *input.Status
	}

	if err := s.store.Events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("event service: update event: %w", err)
	}
	return event, nil
}

// InviteUser adds a participant to an event. The preconditions are checked
// in a fixed order and each failure is distinct; the composite primary key
// on (user, event) is the authoritative guard against concurrent duplicate
// invitations.
func (s *EventService) InviteUser(ctx context.Context, inviterID, eventID, targetUserID string, role models.ParticipantRole) (*Invitation, error) {
	ctx = ensureContext(ctx)

	if role == "" {
		role = models.DefaultRole()
	}

	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsActive() {
		metrics.Invitations.WithLabelValues("rejected").Inc()
		return nil, ErrEventNotAcceptingInvites
	}

	inviter, err := s.findParticipant(ctx, inviterID, eventID, ErrNotParticipant)
	if err != nil {
		return nil, err
	}
	if !inviter.Role.CanInviteOthers() {
		metrics.Invitations.WithLabelValues("rejected").Inc()
		return nil, ErrInsufficientRole
	}

	invitee, err := s.store.Users.FindByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInviteeNotFound
		}
		return nil, fmt.Errorf("event service: load invitee: %w", err)
	}

	if _, err := s.store.Participants.FindByUserAndEvent(ctx, targetUserID, eventID); err == nil {
		metrics.Invitations.WithLabelValues("rejected").Inc()
		return nil, ErrAlreadyInvited
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("event service: check existing invitation: %w", err)
	}

	if role == models.RoleOrganizer {
		metrics.Invitations.WithLabelValues("rejected").Inc()
		return nil, ErrSecondOrganizer
	}

	participant := &models.EventParticipant{
		UserID:    targetUserID,
		EventID:   eventID,
		Role:      role,
		Status:    models.DefaultResponseStatus(),
		InvitedAt: s.now(),
	}

	if err := s.store.Participants.Create(ctx, participant); err != nil {
		// Two concurrent invitations can both pass the existence check; the
		// database uniqueness constraint settles the race.
		if errors.Is(err, store.ErrDuplicate) {
			metrics.Invitations.WithLabelValues("rejected").Inc()
			return nil, ErrAlreadyInvited
		}
		return nil, fmt.Errorf("event service: create invitation: %w", err)
	}

	metrics.Invitations.WithLabelValues("created").Inc()

	inviterUser, err := s.store.Users.FindByID(ctx, inviterID)
	if err != nil {
		return nil, fmt.Errorf("event service: load inviter: %w", err)
	}

	return &Invitation{
		Participant: participant,
		Event:       summarizeEvent(event),
		Invitee:     summarizeUser(invitee),
		InvitedBy:   summarizeUser(inviterUser),
	}, nil
}

// DeleteEvent soft-cancels an event. Participant rows are kept and returned
// so callers can tell who is affected; no responses are reset.
func (s *EventService) DeleteEvent(ctx context.Context, userID, eventID string) (*CancellationResult, error) {
	ctx = ensureContext(ctx)

	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}

	participant, err := s.findParticipant(ctx, userID, eventID, ErrNotParticipant)
	if err != nil {
		return nil, err
	}
	if !participant.Role.CanDeleteEvent() {
		return nil, ErrInsufficientRole
	}

	cancelled, err := s.store.Events.SoftCancel(ctx, eventID, s.now())
	if err != nil {
		return nil, fmt.Errorf("event service: cancel event: %w", err)
	}

	affected, err := s.store.Participants.ListWithUserDetails(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event service: list affected participants: %w", err)
	}

	return &CancellationResult{Event: cancelled, AffectedParticipants: affected}, nil
}

// UpdateResponse records a participant's reply to an invitation. Any
// participant, the organizer included, may update their own response.
func (s *EventService) UpdateResponse(ctx context.Context, userID, eventID string, status models.ResponseStatus) (*models.EventParticipant, error) {
	ctx = ensureContext(ctx)

	if !status.HasResponded() {
		return nil, ErrPendingResponse
	}

	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsCancelled() {
		return nil, ErrEventCancelled
	}

	if _, err := s.findParticipant(ctx, userID, eventID, ErrNotInvited); err != nil {
		return nil, err
	}

	updated, err := s.store.Participants.UpdateResponse(ctx, userID, eventID, status, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotInvited
		}
		return nil, fmt.Errorf("event service: update response: %w", err)
	}
	return updated, nil
}

// OrganizerEvents lists events the user organizes, ordered by date then time
// ascending. An empty result is reported as not found.
func (s *EventService) OrganizerEvents(ctx context.Context, userID string) ([]models.Event, error) {
	ctx = ensureContext(ctx)

	events, err := s.store.Participants.ListOrganizedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("event service: list organized events: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrNoOrganizedEvents
	}
	return events, nil
}

// InvitedEvents lists events the user was invited to (any non-Organizer
// role), most recent invitation first. An empty list is a valid result.
func (s *EventService) InvitedEvents(ctx context.Context, userID string) ([]store.InvitedEvent, error) {
	ctx = ensureContext(ctx)

	events, err := s.store.Participants.ListInvitedTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("event service: list invited events: %w", err)
	}
	if events == nil {
		events = []store.InvitedEvent{}
	}
	return events, nil
}

// Participants lists everyone on an event with their user details. The
// requester must be a participant themselves and either the event creator or
// a Collaborator; Attendees cannot enumerate co-participants.
func (s *EventService) Participants(ctx context.Context, userID, eventID string) ([]store.ParticipantDetail, error) {
	ctx = ensureContext(ctx)

	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	participant, err := s.findParticipant(ctx, userID, eventID, ErrNotParticipant)
	if err != nil {
		return nil, err
	}
	if event.UserID != userID && participant.Role != models.RoleCollaborator {
		return nil, ErrInsufficientRole
	}

	details, err := s.store.Participants.ListWithUserDetails(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event service: list participants: %w", err)
	}
	return details, nil
}

// Search runs a caller-scoped, paginated event search. The caller's identity
// is always taken from userID; results never include events the caller does
// not participate in.
func (s *EventService) Search(ctx context.Context, userID string, filters store.SearchFilters) (*SearchPage, error) {
	ctx = ensureContext(ctx)

	filters.UserID = userID
	if filters.Limit <= 0 {
		filters.Limit = defaultSearchLimit
	}
	if filters.Limit > maxSearchLimit {
		filters.Limit = maxSearchLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	results, total, err := s.store.Events.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("event service: search events: %w", err)
	}
	if results == nil {
		results = []store.SearchResult{}
	}

	return &SearchPage{
		Results: results,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
		HasMore: int64(filters.Offset+filters.Limit) < total,
	}, nil
}

func (s *EventService) findEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.store.Events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("event service: load event: %w", err)
	}
	return event, nil
}

func (s *EventService) findParticipant(ctx context.Context, userID, eventID string, missing *apperrors.AppError) (*models.EventParticipant, error) {
	participant, err := s.store.Participants.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, missing
		}
		return nil, fmt.Errorf("event service: load participant: %w", err)
	}
	return participant, nil
}

func summarizeEvent(event *models.Event) EventSummary {
	return EventSummary{
		ID:       event.ID,
		Title:    event.Title,
		Date:     event.Date,
		Time:     event.Time,
		Location: event.Location,
		Status:   event.Status,
	}
}

func summarizeUser(user *models.User) UserSummary {
	return UserSummary{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName(),
		Email:    user.Email,
	}
}
