package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, Validation.HTTPStatus())
	require.Equal(t, http.StatusBadRequest, InvalidState.HTTPStatus())
	require.Equal(t, http.StatusUnauthorized, Unauthorized.HTTPStatus())
	require.Equal(t, http.StatusForbidden, Forbidden.HTTPStatus())
	require.Equal(t, http.StatusNotFound, NotFound.HTTPStatus())
	require.Equal(t, http.StatusConflict, Conflict.HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, Internal.HTTPStatus())
}

func TestFromPreservesClassifiedErrors(t *testing.T) {
	orig := New(Conflict, "duplicate bid", "عرض مكرر")
	wrapped := fmt.Errorf("submitting: %w", orig)

	got := From(wrapped)
	require.Equal(t, Conflict, got.Kind)
	require.Equal(t, "duplicate bid", got.Message)
	require.Equal(t, "عرض مكرر", got.Arabic)
	require.True(t, IsKind(wrapped, Conflict))
}

func TestFromHidesUnknownErrors(t *testing.T) {
	cause := errors.New("pq: connection refused")
	got := From(cause)
	require.Equal(t, Internal, got.Kind)
	require.NotContains(t, got.Message, "pq:")
	require.NotEmpty(t, got.Arabic)
	require.ErrorIs(t, got, cause)
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Internal, "saving record", "فشل حفظ السجل", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "boom")
}
