package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and clients return these
// (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: document does not exist in the store or upstream
// - ErrConflict: document already exists, or a write lost an optimistic race
// - ErrInvalidState: document in wrong state for the requested operation
// - ErrUnavailable: store or reference service temporarily unreachable
//
// For validation errors (bad input, overlap violations), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
