package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
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

	return store.New(db)
}

func newSessionService(t *testing.T, st *store.Store) *auth.SessionService {
	t.Helper()

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "gatherly"})
	require.NoError(t, err)

	sessions, err := auth.NewSessionService(st, jwtService, auth.SessionConfig{})
	require.NoError(t, err)
	return sessions
}

func seedUser(t *testing.T, st *store.Store, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, st.Users.Create(context.Background(), user))
	return user
}

func newEventService(t *testing.T, st *store.Store) *EventService {
	t.Helper()

	svc, err := NewEventService(st)
	require.NoError(t, err)
	return svc
}

func createEvent(t *testing.T, svc *EventService, userID, title string) *models.Event {
	t.Helper()

	created, err := svc.CreateEvent(context.Background(), userID, CreateEventInput{
		Title:    title,
		Date:     time.Now().Add(72 * time.Hour),
		Time:     "18:00",
		Location: "Main hall",
	})
	require.NoError(t, err)
	return created.Event
}
