package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/models"
)

// roleRankSQL orders participant rows Organizer, Collaborator, Attendee.
const roleRankSQL = "CASE role WHEN 'Organizer' THEN 1 WHEN 'Collaborator' THEN 2 ELSE 3 END"

type participantStore struct {
	db *gorm.DB
}

func (s *participantStore) Create(ctx context.Context, participant *models.EventParticipant) error {
	if err := s.db.WithContext(ctx).Create(participant).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("participant store: create: %w", err)
	}
	return nil
}

func (s *participantStore) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.EventParticipant, error) {
	var participant models.EventParticipant
	err := s.db.WithContext(ctx).
		Take(&participant, "user_id = ? AND event_id = ?", userID, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("participant store: find by user and event: %w", err)
	}
	return &participant, nil
}

func (s *participantStore) FindByEventID(ctx context.Context, eventID string) ([]models.EventParticipant, error) {
	var participants []models.EventParticipant
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order(roleRankSQL + ", invited_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("participant store: find by event id: %w", err)
	}
	return participants, nil
}

func (s *participantStore) FindByUserID(ctx context.Context, userID string) ([]models.EventParticipant, error) {
	var participants []models.EventParticipant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("invited_at DESC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("participant store: find by user id: %w", err)
	}
	return participants, nil
}

func (s *participantStore) Delete(ctx context.Context, userID, eventID string) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&models.EventParticipant{})
	if result.Error != nil {
		return fmt.Errorf("participant store: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *participantStore) UpdateResponse(ctx context.Context, userID, eventID string, status models.ResponseStatus, at time.Time) (*models.EventParticipant, error) {
	// Single atomic update: status and responded_at change together.
	result := s.db.WithContext(ctx).
		Model(&models.EventParticipant{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Updates(map[string]any{
			"status":       status,
			"responded_at": at,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("participant store: update response: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.FindByUserAndEvent(ctx, userID, eventID)
}

func (s *participantStore) ListOrganizedBy(ctx context.Context, userID string) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Table("events AS e").
		Select("e.*").
		Joins("INNER JOIN event_participants ep ON ep.event_id = e.id").
		Where("ep.user_id = ? AND ep.role = ?", userID, models.RoleOrganizer).
		Order("e.date ASC, e.time ASC").
		Scan(&events).Error
	if err != nil {
		return nil, fmt.Errorf("participant store: list organized by: %w", err)
	}
	return events, nil
}

func (s *participantStore) ListInvitedTo(ctx context.Context, userID string) ([]InvitedEvent, error) {
	type invitedRow struct {
		ID                string
		Title             string
		Description       string
		Date              time.Time
		Time              string
		Location          string
		Status            models.EventStatus
		UserID            string
		CreatedAt         time.Time
		UpdatedAt         time.Time
		ParticipantRole   models.ParticipantRole
		ParticipantStatus models.ResponseStatus
		InvitedAt         time.Time
		RespondedAt       *time.Time
	}

	var rows []invitedRow
	err := s.db.WithContext(ctx).
		Table("event_participants AS ep").
		Select("e.id, e.title, e.description, e.date, e.time, e.location, e.status, e.user_id, e.created_at, e.updated_at, ep.role AS participant_role, ep.status AS participant_status, ep.invited_at, ep.responded_at").
		Joins("INNER JOIN events e ON ep.event_id = e.id").
		Where("ep.user_id = ? AND ep.role <> ?", userID, models.RoleOrganizer).
		Order("ep.invited_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("participant store: list invited to: %w", err)
	}

	invited := make([]InvitedEvent, 0, len(rows))
	for _, row := range rows {
		invited = append(invited, InvitedEvent{
			Event: models.Event{
				ID:          row.ID,
				Title:       row.Title,
				Description: row.Description,
				Date:        row.Date,
				Time:        row.Time,
				Location:    row.Location,
				Status:      row.Status,
				UserID:      row.UserID,
				CreatedAt:   row.CreatedAt,
				UpdatedAt:   row.UpdatedAt,
			},
			ParticipantRole:   row.ParticipantRole,
			ParticipantStatus: row.ParticipantStatus,
			InvitedAt:         row.InvitedAt,
			RespondedAt:       row.RespondedAt,
		})
	}
	return invited, nil
}

func (s *participantStore) ListWithUserDetails(ctx context.Context, eventID string) ([]ParticipantDetail, error) {
	var details []ParticipantDetail
	err := s.db.WithContext(ctx).
		Table("users AS u").
		Select("u.id AS user_id, u.username, u.first_name, u.last_name, u.email, ep.event_id, ep.role, ep.status, ep.invited_at, ep.responded_at").
		Joins("INNER JOIN event_participants ep ON ep.user_id = u.id").
		Where("ep.event_id = ?", eventID).
		Order("CASE ep.role WHEN 'Organizer' THEN 1 WHEN 'Collaborator' THEN 2 ELSE 3 END, ep.invited_at ASC").
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("participant store: list with user details: %w", err)
	}
	return details, nil
}
