package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type eventStore struct {
	db *gorm.DB
}

func (s *eventStore) CreateWithOrganizer(ctx context.Context, event *models.Event, organizer *models.EventParticipant) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		organizer.EventID = event.ID
		return tx.Create(organizer).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("event store: create with organizer: %w", err)
	}
	return nil
}

func (s *eventStore) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Take(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("event store: find by id: %w", err)
	}
	return &event, nil
}

func (s *eventStore) Update(ctx context.Context, event *models.Event) error {
	if err := s.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("event store: update: %w", err)
	}
	return nil
}

func (s *eventStore) SoftCancel(ctx context.Context, id string, at time.Time) (*models.Event, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.EventCancelled,
			"updated_at": at,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("event store: soft cancel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.FindByID(ctx, id)
}

func (s *eventStore) FindByUserID(ctx context.Context, userID string) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, time ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("event store: find by user id: %w", err)
	}
	return events, nil
}

// searchRow is the flat scan target for Search's joined projection.
type searchRow struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	Time        string
	Location    string
	Status      models.EventStatus
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserRole    models.ParticipantRole
	UserStatus  models.ResponseStatus
	Relevance   int
}

func (s *eventStore) Search(ctx context.Context, filters SearchFilters) ([]SearchResult, int64, error) {
	if strings.TrimSpace(filters.UserID) == "" {
		return nil, 0, errors.New("event store: search requires a user id")
	}

	limit := filters.Limit
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	terms := strings.Fields(strings.ToLower(strings.TrimSpace(filters.Keyword)))

	query := s.db.WithContext(ctx).
		Table("events AS e").
		Joins("INNER JOIN event_participants ep ON ep.event_id = e.id").
		Where("ep.user_id = ?", filters.UserID)

	// Keyword terms are ANDed against the precomputed search projection.
	for _, term := range terms {
		query = query.Where("e.search_text LIKE ?", "%"+term+"%")
	}
	if filters.Date != nil {
		day := filters.Date.Truncate(24 * time.Hour)
		query = query.Where("e.date >= ? AND e.date < ?", day, day.Add(24*time.Hour))
	}
	if filters.UserStatus != "" {
		query = query.Where("ep.status = ?", filters.UserStatus)
	}
	if filters.EventStatus != "" {
		query = query.Where("e.status = ?", filters.EventStatus)
	}
	if filters.Role != "" {
		query = query.Where("ep.role = ?", filters.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("event store: count search results: %w", err)
	}

	selectSQL := "e.id, e.title, e.description, e.date, e.time, e.location, e.status, e.user_id, e.created_at, e.updated_at, ep.role AS user_role, ep.status AS user_status"
	var selectArgs []any
	if len(terms) > 0 {
		// Relevance counts how many terms hit; the underlying datastore may
		// refine this with its own text-search ranking.
		cases := make([]string, len(terms))
		for i, term := range terms {
			cases[i] = "(CASE WHEN e.search_text LIKE ? THEN 1 ELSE 0 END)"
			selectArgs = append(selectArgs, "%"+term+"%")
		}
		selectSQL += ", (" + strings.Join(cases, " + ") + ") AS relevance"
	}

	query = query.Select(selectSQL, selectArgs...)
	if len(terms) > 0 {
		query = query.Order("relevance DESC, e.date DESC")
	} else {
		query = query.Order("e.date DESC")
	}

	var rows []searchRow
	if err := query.Limit(limit).Offset(offset).Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("event store: search: %w", err)
	}

	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, SearchResult{
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
			UserRole:   row.UserRole,
			UserStatus: row.UserStatus,
			Relevance:  row.Relevance,
		})
	}

	return results, total, nil
}
