// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrTheaterNotFound maps to an HTTP 404 while a raw driver
// error maps to a 500.
package repository

import "errors"

// ErrTheaterNotFound indicates that a theater was not located in the DB.
var ErrTheaterNotFound = errors.New("theater not found")

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// ErrShowtimeNotFound indicates that a showtime was not located in the DB.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrPlanNotFound indicates that no stored viewing plan matches the
// requested reference.
var ErrPlanNotFound = errors.New("viewing plan not found")
