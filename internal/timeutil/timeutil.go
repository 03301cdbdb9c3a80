// Package timeutil converts between "HH:MM" clock strings and integer
// minutes since midnight. Showtimes in the catalog carry wall-clock times
// for a single calendar day, so all arithmetic in the planner happens on
// minute-of-day integers and only the edges of the system deal with the
// textual form.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes in a calendar day. Valid
// minute-of-day values are [0, MinutesPerDay-1]; "24:00" is accepted on
// parse as the end-of-day boundary used in time windows.
const MinutesPerDay = 24 * 60

// ErrMalformedClock indicates a time string that is not of the form "HH:MM".
var ErrMalformedClock = errors.New("malformed clock string")

// ErrClockRange indicates a minute value outside a single calendar day.
var ErrClockRange = errors.New("minutes out of day range")

// ToMinutes parses an "HH:MM" string into minutes since midnight.
// "24:00" parses to 1440 so callers can express a window closing at
// midnight; anything later returns ErrMalformedClock.
func ToMinutes(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, clock)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, clock)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, clock)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, clock)
	}
	return h*60 + m, nil
}

// ToClock formats minutes since midnight as a zero-padded "HH:MM" string.
// Minutes must lie in [0, 1439]; out-of-range values are a caller error
// and are reported instead of being wrapped around.
func ToClock(minutes int) (string, error) {
	if minutes < 0 || minutes >= MinutesPerDay {
		return "", fmt.Errorf("%w: %d", ErrClockRange, minutes)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}
