package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/pkg/crypto"
)

func newAuthService(t *testing.T) (*AuthService, *auth.SessionService) {
	t.Helper()

	st := openTestStore(t)
	sessions := newSessionService(t, st)

	svc, err := NewAuthService(st, sessions)
	require.NoError(t, err)
	return svc, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	svc, sessions := newAuthService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Username:  "amira",
		Email:     "Amira@Example.com",
		Password:  "s3cret-pass",
		FirstName: "Amira",
		LastName:  "Haddad",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, "amira@example.com", result.User.Email)
	require.NotNil(t, result.User.LastLoginAt)
	require.NotEqual(t, "s3cret-pass", result.User.Password)
	require.True(t, crypto.VerifyPassword(result.User.Password, "s3cret-pass"))

	// Registration signs the user in immediately.
	resolved, err := sessions.Resolve(ctx, result.Token)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, resolved.ID)

	login, err := svc.Login(ctx, LoginInput{Email: "amira@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)
	require.NotEqual(t, result.Token, login.Token)
}

func TestRegisterConflicts(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "amira", Email: "amira@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "other", Email: "amira@example.com", Password: "s3cret-pass"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, RegisterInput{Username: "amira", Email: "new@example.com", Password: "s3cret-pass"})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "x"})
	require.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "a", Password: "x"})
	require.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "a", Email: "a@example.com"})
	require.Error(t, err)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "amira", Email: "amira@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable to the caller.
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "s3cret-pass"})
	require.Error(t, err)
	unknownEmail := err

	_, err = svc.Login(ctx, LoginInput{Email: "amira@example.com", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, unknownEmail.Error(), err.Error())

	registered.User.IsActive = false
	require.NoError(t, svc.store.Users.Update(ctx, registered.User))

	_, err = svc.Login(ctx, LoginInput{Email: "amira@example.com", Password: "s3cret-pass"})
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestLogout(t *testing.T) {
	svc, sessions := newAuthService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Username: "amira", Email: "amira@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Token))

	_, err = sessions.Resolve(ctx, result.Token)
	require.ErrorIs(t, err, auth.ErrSessionInvalid)

	// Logging out twice is a no-op.
	require.NoError(t, svc.Logout(ctx, result.Token))
}
