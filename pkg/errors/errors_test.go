package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithInternalKeepsOriginal(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrInternalServer.WithInternal(cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, ErrInternalServer.Code, err.Code)
	require.Contains(t, err.Error(), "connection refused")

	// The shared sentinel must remain untouched.
	require.Nil(t, ErrInternalServer.Internal)
}

func TestFromError(t *testing.T) {
	appErr := NewBadRequest("title is required")
	require.Same(t, appErr, FromError(appErr))

	converted := FromError(errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, converted.StatusCode)
	require.Equal(t, ErrInternalServer.Code, converted.Code)

	require.Nil(t, FromError(nil))
}

func TestConstructors(t *testing.T) {
	require.Equal(t, http.StatusConflict, NewConflict("already invited").StatusCode)
	require.Equal(t, http.StatusForbidden, NewForbidden("not a participant").StatusCode)
	require.Equal(t, http.StatusNotFound, NewNotFound("event not found").StatusCode)
	require.Equal(t, "already invited", NewConflict("already invited").Message)
}
