package display

import (
	"testing"
	"time"

	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/stretchr/testify/require"
)

func TestDisplayImageUpdatesStateOnSuccess(t *testing.T) {
	driver := NewMockDriver(800, 480)
	c := New(driver)

	frame := pluginapi.Frame{
		Payload: []byte("pixels"),
		Provenance: pluginapi.Provenance{
			PluginID:    "clock",
			InstanceID:  "inst-1",
			GeneratedAt: time.Date(2026, 7, 27, 9, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, c.DisplayImage(frame))

	state := c.State()
	require.Equal(t, StatusIdle, state.Status)
	require.Equal(t, 0, state.ErrorCount)
	require.NotNil(t, state.Provenance)
	require.Equal(t, "clock", state.Provenance.PluginID)
	require.Equal(t, []byte("pixels"), driver.LastPayload())
}

func TestDisplayImageFailureIncrementsErrorCount(t *testing.T) {
	driver := NewMockDriver(800, 480)
	c := New(driver)
	driver.FailNextCall("display_image")

	err := c.DisplayImage(pluginapi.Frame{Payload: []byte("x")})
	require.Error(t, err)

	state := c.State()
	require.Equal(t, StatusError, state.Status)
	require.Equal(t, 1, state.ErrorCount)
}

func TestClearResetsProvenance(t *testing.T) {
	driver := NewMockDriver(800, 480)
	c := New(driver)
	require.NoError(t, c.DisplayImage(pluginapi.Frame{Payload: []byte("x")}))

	require.NoError(t, c.Clear())
	state := c.State()
	require.Nil(t, state.Provenance)
}

func TestSleepThenWake(t *testing.T) {
	driver := NewMockDriver(800, 480)
	c := New(driver)

	require.NoError(t, c.Sleep())
	require.Equal(t, StatusSleeping, c.State().Status)
	require.True(t, driver.Asleep())

	require.NoError(t, c.Wake())
	require.Equal(t, StatusIdle, c.State().Status)
	require.False(t, driver.Asleep())
}

func TestSizeDelegatesToDriver(t *testing.T) {
	c := New(NewMockDriver(800, 480))
	w, h := c.Size()
	require.Equal(t, 800, w)
	require.Equal(t, 480, h)
}
