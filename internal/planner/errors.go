// Package planner defines error sentinels shared by the optimizer and its
// collaborator interfaces. Handlers use these to distinguish client errors
// (unknown anchor, inverted window) from infrastructure failures, which are
// propagated unchanged.
package planner

import "errors"

// ErrSessionNotFound is returned by a SessionCatalog when no session exists
// for the requested identifier.
var ErrSessionNotFound = errors.New("session not found")

// ErrAnchorNotFound is returned by Optimize when the requested anchor
// identifier does not resolve to a catalog session. Handlers should
// translate this into an HTTP 404 response.
var ErrAnchorNotFound = errors.New("anchor session not found")

// ErrInvalidWindow is returned when a requested time window does not satisfy
// from < to. Handlers should translate this into an HTTP 400 response.
var ErrInvalidWindow = errors.New("invalid time window")

// ErrTransitUnknown is returned by a TransitProvider when it has no record
// for a venue pair. The generator recovers locally with a fallback estimate;
// this error never reaches a caller of Optimize.
var ErrTransitUnknown = errors.New("transit time unknown")

// ErrNoPlanStore is returned when a caller asks to persist a plan but the
// optimizer was constructed without a PlanStore.
var ErrNoPlanStore = errors.New("no plan store configured")
