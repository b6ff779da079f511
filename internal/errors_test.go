package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/internal"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		err := internal.NewHTTPError(http.StatusNotFound, "not found")
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusBadRequest, "bad request")
		err := fmt.Errorf("action failed: %w", httpErr)
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(errors.New("something went wrong")))
		require.False(t, internal.IsHTTPError(nil))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("row missing")
	httpErr := internal.ErrNotFound("No such page.", internal.WithTitle("Not Found"), internal.WithError(cause))
	got := internal.AsHTTPError(fmt.Errorf("outer: %w", httpErr))

	require.NotNil(t, got)
	require.Equal(t, http.StatusNotFound, got.StatusCode())
	require.Equal(t, "Not Found", got.Title)
	require.Equal(t, "No such page.", got.Error())
	require.ErrorIs(t, got, cause)
	require.Equal(t, "Not Found", got.StatusText())

	require.Nil(t, internal.AsHTTPError(errors.New("plain")))
}

func TestConvenienceConstructors(t *testing.T) {
	t.Parallel()

	require.Equal(t, http.StatusBadRequest, internal.ErrBadRequest("x").Code)
	require.Equal(t, http.StatusForbidden, internal.ErrForbidden("x").Code)
	require.Equal(t, http.StatusNotFound, internal.ErrNotFound("x").Code)
}
