package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gatherly/gatherly/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Session{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return New(db)
}

func seedUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, s.Users.Create(context.Background(), user))
	return user
}

func seedEvent(t *testing.T, s *Store, owner *models.User, title string, date time.Time) *models.Event {
	t.Helper()

	event := &models.Event{
		Title:    title,
		Date:     date,
		Time:     "18:00",
		Location: "Main hall",
		Status:   models.EventActive,
		UserID:   owner.ID,
	}
	organizer := &models.EventParticipant{
		UserID:    owner.ID,
		Role:      models.RoleOrganizer,
		Status:    models.StatusGoing,
		InvitedAt: time.Now(),
	}
	require.NoError(t, s.Events.CreateWithOrganizer(context.Background(), event, organizer))
	return event
}

func TestUserStoreLookupsAndUniqueness(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "zeynep")

	byID, err := s.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "zeynep", byID.Username)

	byEmail, err := s.Users.FindByEmail(ctx, "zeynep@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = s.Users.FindByUsername(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)

	exists, err := s.Users.ExistsByEmail(ctx, "zeynep@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.Users.ExistsByUsername(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, exists)

	dup := &models.User{Username: "zeynep", Email: "other@example.com", Password: "x"}
	require.ErrorIs(t, s.Users.Create(ctx, dup), ErrDuplicate)
}

func TestUpdateLastLogin(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "marco")
	require.Nil(t, user.LastLoginAt)

	stamp := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.Users.UpdateLastLogin(ctx, user.ID, stamp))

	reloaded, err := s.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
}

func TestCreateWithOrganizerIsAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner")
	event := seedEvent(t, s, owner, "Team offsite", time.Now().Add(48*time.Hour))

	participant, err := s.Participants.FindByUserAndEvent(ctx, owner.ID, event.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleOrganizer, participant.Role)
	require.Equal(t, models.StatusGoing, participant.Status)

	// A failing participant insert must roll the event back too.
	bad := &models.Event{Title: "Broken", Date: time.Now(), Time: "10:00", UserID: owner.ID}
	dupOrganizer := &models.EventParticipant{
		UserID:    owner.ID,
		EventID:   event.ID, // forced collision with the existing row
		Role:      models.RoleOrganizer,
		Status:    models.StatusGoing,
		InvitedAt: time.Now(),
	}
	err = s.Events.CreateWithOrganizer(ctx, bad, dupOrganizer)
	require.Error(t, err)

	_, err = s.Events.FindByID(ctx, bad.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestParticipantUniquenessBackstop(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "ana")
	guest := seedUser(t, s, "bruno")
	event := seedEvent(t, s, owner, "Picnic", time.Now().Add(24*time.Hour))

	invite := &models.EventParticipant{
		UserID:    guest.ID,
		EventID:   event.ID,
		Role:      models.RoleAttendee,
		Status:    models.StatusPending,
		InvitedAt: time.Now(),
	}
	require.NoError(t, s.Participants.Create(ctx, invite))

	again := &models.EventParticipant{
		UserID:    guest.ID,
		EventID:   event.ID,
		Role:      models.RoleCollaborator,
		Status:    models.StatusPending,
		InvitedAt: time.Now(),
	}
	require.ErrorIs(t, s.Participants.Create(ctx, again), ErrDuplicate)
}

func TestUpdateResponseIsAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "carla")
	guest := seedUser(t, s, "diego")
	event := seedEvent(t, s, owner, "Dinner", time.Now().Add(24*time.Hour))

	require.NoError(t, s.Participants.Create(ctx, &models.EventParticipant{
		UserID:    guest.ID,
		EventID:   event.ID,
		Role:      models.RoleAttendee,
		Status:    models.StatusPending,
		InvitedAt: time.Now(),
	}))

	now := time.Now()
	updated, err := s.Participants.UpdateResponse(ctx, guest.ID, event.ID, models.StatusGoing, now)
	require.NoError(t, err)
	require.Equal(t, models.StatusGoing, updated.Status)
	require.NotNil(t, updated.RespondedAt)

	_, err = s.Participants.UpdateResponse(ctx, "missing", event.ID, models.StatusGoing, now)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSoftCancelKeepsParticipants(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "erik")
	event := seedEvent(t, s, owner, "Concert", time.Now().Add(24*time.Hour))

	cancelled, err := s.Events.SoftCancel(ctx, event.ID, time.Now())
	require.NoError(t, err)
	require.Equal(t, models.EventCancelled, cancelled.Status)

	participants, err := s.Participants.FindByEventID(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)

	_, err = s.Events.SoftCancel(ctx, "missing", time.Now())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestParticipantListings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "fatima")
	guest := seedUser(t, s, "goran")

	early := seedEvent(t, s, owner, "Standup", time.Now().Add(24*time.Hour))
	late := seedEvent(t, s, owner, "Retro", time.Now().Add(72*time.Hour))

	require.NoError(t, s.Participants.Create(ctx, &models.EventParticipant{
		UserID:    guest.ID,
		EventID:   early.ID,
		Role:      models.RoleAttendee,
		Status:    models.StatusPending,
		InvitedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, s.Participants.Create(ctx, &models.EventParticipant{
		UserID:    guest.ID,
		EventID:   late.ID,
		Role:      models.RoleCollaborator,
		Status:    models.StatusPending,
		InvitedAt: time.Now(),
	}))

	organized, err := s.Participants.ListOrganizedBy(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, organized, 2)
	require.Equal(t, "Standup", organized[0].Title) // date ascending

	invited, err := s.Participants.ListInvitedTo(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, invited, 2)
	require.Equal(t, "Retro", invited[0].Title) // invitation recency descending
	require.Equal(t, models.RoleCollaborator, invited[0].ParticipantRole)

	// Organizer rows are excluded from the invited view.
	invited, err = s.Participants.ListInvitedTo(ctx, owner.ID)
	require.NoError(t, err)
	require.Empty(t, invited)

	details, err := s.Participants.ListWithUserDetails(ctx, early.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.Equal(t, models.RoleOrganizer, details[0].Role) // organizer first
	require.Equal(t, "fatima", details[0].Username)
	require.Equal(t, "goran", details[1].Username)
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	user := seedUser(t, s, "hana")

	session := &models.Session{
		UserID:    user.ID,
		TokenHash: "digest-1",
		IsValid:   true,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	require.NoError(t, s.Sessions.Create(ctx, session))

	active, err := s.Sessions.FindActiveByTokenHash(ctx, "digest-1", now)
	require.NoError(t, err)
	require.Equal(t, user.ID, active.UserID)

	count, err := s.Sessions.CountActive(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	affected, err := s.Sessions.Invalidate(ctx, "digest-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)
	_, err = s.Sessions.FindActiveByTokenHash(ctx, "digest-1", now)
	require.ErrorIs(t, err, ErrNotFound)

	// Idempotent on repeat and on unknown hashes.
	affected, err = s.Sessions.Invalidate(ctx, "digest-1")
	require.NoError(t, err)
	require.Zero(t, affected)
	affected, err = s.Sessions.Invalidate(ctx, "never-issued")
	require.NoError(t, err)
	require.Zero(t, affected)

	require.NoError(t, s.Sessions.Create(ctx, &models.Session{
		UserID:    user.ID,
		TokenHash: "digest-2",
		IsValid:   true,
		ExpiresAt: now.Add(-time.Hour), // already expired
	}))

	removed, err := s.Sessions.CleanupExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed) // the invalidated and the expired row

	count, err = s.Sessions.CountActive(ctx, now)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSearchScopedToCaller(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "ivo")
	outsider := seedUser(t, s, "jana")

	seedEvent(t, s, owner, "Go conference", time.Now().Add(24*time.Hour))
	seedEvent(t, s, owner, "Garden party", time.Now().Add(48*time.Hour))

	results, total, err := s.Events.Search(ctx, SearchFilters{UserID: owner.ID, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, results, 2)
	require.Equal(t, "Garden party", results[0].Title) // date descending
	require.Equal(t, models.RoleOrganizer, results[0].UserRole)

	// No participation, no visibility.
	results, total, err = s.Events.Search(ctx, SearchFilters{UserID: outsider.ID, Limit: 10})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, results)
}

func TestSearchKeywordRelevance(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "karl")

	both := seedEvent(t, s, owner, "Jazz festival", time.Now().Add(24*time.Hour))
	one := &models.Event{
		Title:       "Food market",
		Description: "street food and live jazz",
		Date:        time.Now().Add(72 * time.Hour),
		Time:        "12:00",
		UserID:      owner.ID,
	}
	seedOrganizer := &models.EventParticipant{
		UserID: owner.ID, Role: models.RoleOrganizer,
		Status: models.StatusGoing, InvitedAt: time.Now(),
	}
	require.NoError(t, s.Events.CreateWithOrganizer(ctx, one, seedOrganizer))

	results, total, err := s.Events.Search(ctx, SearchFilters{
		UserID:  owner.ID,
		Keyword: "jazz festival",
		Limit:   10,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, both.ID, results[0].ID)

	results, total, err = s.Events.Search(ctx, SearchFilters{
		UserID:  owner.ID,
		Keyword: "jazz",
		Limit:   10,
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, results, 2)
}

func TestSearchPagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "lena")
	for i := 0; i < 5; i++ {
		seedEvent(t, s, owner, "Workshop", time.Now().Add(time.Duration(i*24)*time.Hour))
	}

	page, total, err := s.Events.Search(ctx, SearchFilters{UserID: owner.ID, Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, page, 1)
}

func TestSearchStatusFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "mira")
	event := seedEvent(t, s, owner, "Hackathon", time.Now().Add(24*time.Hour))
	_, err := s.Events.SoftCancel(ctx, event.ID, time.Now())
	require.NoError(t, err)

	seedEvent(t, s, owner, "Meetup", time.Now().Add(48*time.Hour))

	results, _, err := s.Events.Search(ctx, SearchFilters{
		UserID:      owner.ID,
		EventStatus: models.EventCancelled,
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Hackathon", results[0].Title)

	results, _, err = s.Events.Search(ctx, SearchFilters{
		UserID:     owner.ID,
		UserStatus: models.StatusGoing,
		Role:       models.RoleOrganizer,
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
}
