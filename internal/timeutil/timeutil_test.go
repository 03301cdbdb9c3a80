package timeutil_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ktokiya/eigaplan/internal/timeutil"
)

func TestToMinutes(t *testing.T) {
	m, err := timeutil.ToMinutes("00:00")
	require.NoError(t, err)
	require.Equal(t, 0, m)

	m, err = timeutil.ToMinutes("09:05")
	require.NoError(t, err)
	require.Equal(t, 545, m)

	m, err = timeutil.ToMinutes("23:59")
	require.NoError(t, err)
	require.Equal(t, 1439, m)

	// End-of-day boundary used by time windows.
	m, err = timeutil.ToMinutes("24:00")
	require.NoError(t, err)
	require.Equal(t, 1440, m)
}

func TestToMinutesMalformed(t *testing.T) {
	for _, clock := range []string{"", "19", "9:30", "19:5", "19:60", "24:01", "25:00", "ab:cd", "19-30", "-1:30"} {
		_, err := timeutil.ToMinutes(clock)
		require.Error(t, err, "clock %q should not parse", clock)
		require.True(t, errors.Is(err, timeutil.ErrMalformedClock), "clock %q: %v", clock, err)
	}
}

func TestToClock(t *testing.T) {
	s, err := timeutil.ToClock(0)
	require.NoError(t, err)
	require.Equal(t, "00:00", s)

	s, err = timeutil.ToClock(545)
	require.NoError(t, err)
	require.Equal(t, "09:05", s)

	s, err = timeutil.ToClock(1439)
	require.NoError(t, err)
	require.Equal(t, "23:59", s)
}

func TestToClockRange(t *testing.T) {
	for _, minutes := range []int{-1, 1440, 2000} {
		_, err := timeutil.ToClock(minutes)
		require.Error(t, err)
		require.True(t, errors.Is(err, timeutil.ErrClockRange))
	}
}

func TestRoundTrip(t *testing.T) {
	for _, clock := range []string{"00:01", "06:30", "12:00", "21:45"} {
		m, err := timeutil.ToMinutes(clock)
		require.NoError(t, err)
		back, err := timeutil.ToClock(m)
		require.NoError(t, err)
		require.Equal(t, clock, back)
	}
}
