package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotFoundMapsTo404(t *testing.T) {
	err := NotFound("instance")
	require.Equal(t, http.StatusNotFound, err.StatusCode)
	require.Equal(t, CodeNotFound, err.Code)
}

func TestRejectedMapsTo400(t *testing.T) {
	err := Rejected("bad slot bounds")
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestWrapCarriesUnderlyingMessage(t *testing.T) {
	underlying := errors.New("disk full")
	err := Wrap(CodeIOStore, "failed to save schedule", underlying)
	require.Contains(t, err.Details, "disk full")
	require.Equal(t, http.StatusInternalServerError, err.StatusCode)
}

func TestFailWrapsNonAppError(t *testing.T) {
	resp := Fail(errors.New("boom"))
	require.False(t, resp.Success)
	require.Equal(t, CodeInternal, resp.Error.Code)
}

func TestFailPreservesAppError(t *testing.T) {
	resp := Fail(NotFound("schedule"))
	require.False(t, resp.Success)
	require.Equal(t, CodeNotFound, resp.Error.Code)
}

func TestOkWrapsData(t *testing.T) {
	resp := Ok(map[string]int{"count": 3})
	require.True(t, resp.Success)
	require.Nil(t, resp.Error)
}
