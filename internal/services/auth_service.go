package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/store"
	"github.com/gatherly/gatherly/pkg/crypto"
	apperrors "github.com/gatherly/gatherly/pkg/errors"
	"github.com/gatherly/gatherly/pkg/metrics"
)

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = apperrors.NewConflict("Email already registered")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = apperrors.NewConflict("Username already taken")
	// ErrAccountDeactivated rejects authentication for deactivated accounts.
	ErrAccountDeactivated = apperrors.New("ACCOUNT_DEACTIVATED", "Account is deactivated", http.StatusUnauthorized)
)

// RegisterInput describes the fields accepted when creating an account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult bundles the authenticated user with their issued credential.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// AuthService handles registration, login, and logout. Both registration and
// login end with a live session and a refreshed last-login stamp.
type AuthService struct {
	store    *store.Store
	sessions *auth.SessionService
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(st *store.Store, sessions *auth.SessionService) (*AuthService, error) {
	if st == nil {
		return nil, errors.New("auth service: store is required")
	}
	if sessions == nil {
		return nil, errors.New("auth service: session service is required")
	}
	return &AuthService{
		store:    st,
		sessions: sessions,
		now:      time.Now,
	}, nil
}

// Register provisions a new account and signs it in immediately.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" {
		return nil, apperrors.NewBadRequest("username is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	if taken, err := s.store.Users.ExistsByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("auth service: check email: %w", err)
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.store.Users.ExistsByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("auth service: check username: %w", err)
	} else if taken {
		return nil, ErrUsernameTaken
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		IsActive:  true,
	}

	if err := s.store.Users.Create(ctx, user); err != nil {
		// The unique indexes are the backstop for registration races.
		if errors.Is(err, store.ErrDuplicate) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.NewConflict("Email or username already registered")
		}
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}

	return s.signIn(ctx, user)
}

// Login authenticates an account by email and password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("email and password are required")
	}

	user, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: load user: %w", err)
	}

	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, ErrAccountDeactivated
	}

	if !crypto.VerifyPassword(user.Password, input.Password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.signIn(ctx, user)
}

// Logout revokes the session backing the presented credential. Unknown or
// already-revoked credentials are accepted silently.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	ctx = ensureContext(ctx)

	if err := s.sessions.Invalidate(ctx, rawToken); err != nil {
		return fmt.Errorf("auth service: logout: %w", err)
	}
	return nil
}

func (s *AuthService) signIn(ctx context.Context, user *models.User) (*AuthResult, error) {
	issued, _, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("auth service: issue session: %w", err)
	}

	now := s.now()
	if err := s.store.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("auth service: update last login: %w", err)
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	return &AuthResult{
		User:      user,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}
