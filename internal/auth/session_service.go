package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/store"
	"github.com/gatherly/gatherly/pkg/crypto"
	"github.com/gatherly/gatherly/pkg/metrics"
)

var (
	// ErrInvalidToken marks a credential whose signature or expiry check failed.
	ErrInvalidToken = errors.New("session: invalid token")
	// ErrSessionInvalid marks a verified credential with no matching active session.
	ErrSessionInvalid = errors.New("session: expired or invalidated")
	// ErrUserNotFound marks a session whose user has been removed.
	ErrUserNotFound = errors.New("session: user not found")
	// ErrAccountDeactivated marks a session whose user account is inactive.
	ErrAccountDeactivated = errors.New("session: account deactivated")
)

// IssuedSession bundles the artefacts of a successful issuance. The raw
// token goes to the client; only the hash is persisted.
type IssuedSession struct {
	Token     string
	TokenHash string
	ExpiresAt time.Time
}

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	Clock func() time.Time
}

// SessionService manages issuance, resolution, and invalidation of sessions.
// Resolve is the sole authentication entry point for protected operations.
type SessionService struct {
	sessions store.SessionStore
	users    store.UserStore
	jwt      *JWTService
	now      func() time.Time
}

// NewSessionService constructs a session manager backed by the provided stores and JWT service.
func NewSessionService(st *store.Store, jwtService *JWTService, cfg SessionConfig) (*SessionService, error) {
	if st == nil {
		return nil, errors.New("session service: store is required")
	}
	if jwtService == nil {
		return nil, errors.New("session service: jwt service is required")
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		sessions: st.Sessions,
		users:    st.Users,
		jwt:      jwtService,
		now:      clock,
	}, nil
}

// Issue generates a signed credential for the user and persists the backing
// session row keyed by the credential's digest.
func (s *SessionService) Issue(ctx context.Context, user *models.User) (IssuedSession, *models.Session, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return IssuedSession{}, nil, errors.New("session service: user is required")
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Email, user.Username)
	if err != nil {
		return IssuedSession{}, nil, fmt.Errorf("session service: generate token: %w", err)
	}

	session := &models.Session{
		UserID:    user.ID,
		TokenHash: crypto.HashToken(token),
		IsValid:   true,
		ExpiresAt: expiresAt,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return IssuedSession{}, nil, fmt.Errorf("session service: create session: %w", err)
	}

	metrics.ActiveSessions.Inc()

	return IssuedSession{
		Token:     token,
		TokenHash: session.TokenHash,
		ExpiresAt: expiresAt,
	}, session, nil
}

// Verify checks the credential's signature and expiry and returns its claims.
func (s *SessionService) Verify(rawToken string) (*Claims, error) {
	return s.jwt.ValidateToken(strings.TrimSpace(rawToken))
}

// Resolve authenticates a raw credential end to end: signature check, active
// session lookup by digest, then user load with deactivation check.
func (s *SessionService) Resolve(ctx context.Context, rawToken string) (*models.User, error) {
	claims, err := s.Verify(rawToken)
	if err != nil {
		return nil, err
	}

	tokenHash := crypto.HashToken(strings.TrimSpace(rawToken))
	if _, err := s.sessions.FindActiveByTokenHash(ctx, tokenHash, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("session service: find session: %w", err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("session service: load user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	return user, nil
}

// Invalidate revokes the session backing the raw credential. Idempotent.
func (s *SessionService) Invalidate(ctx context.Context, rawToken string) error {
	return s.InvalidateHash(ctx, crypto.HashToken(strings.TrimSpace(rawToken)))
}

// InvalidateHash revokes the session with the given digest. Invalidating an
// already-invalid or unknown digest is not an error.
func (s *SessionService) InvalidateHash(ctx context.Context, tokenHash string) error {
	affected, err := s.sessions.Invalidate(ctx, tokenHash)
	if err != nil {
		return fmt.Errorf("session service: invalidate: %w", err)
	}
	if affected > 0 {
		metrics.ActiveSessions.Sub(float64(affected))
	}
	return nil
}

// CleanupExpired removes sessions that are expired or invalidated. Safe to
// run concurrently with live traffic.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	removed, err := s.sessions.CleanupExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("session service: cleanup expired: %w", err)
	}
	return removed, nil
}
