// Package store defines the persistence contract for subset series and
// versions, and its three implementations: in-memory (tests and dev),
// PostgreSQL, and the linked-data-store HTTP backend.
package store

import (
	"context"
	"fmt"

	"subsets/internal/subset/models"
)

// Backend selects a storage implementation. It is resolved once at startup
// from configuration and injected; nothing re-resolves it per call.
type Backend int

const (
	// Relational stores documents in PostgreSQL.
	Relational Backend = iota
	// LinkedDataStore stores documents in an external LDS service over HTTP.
	LinkedDataStore
)

// ParseBackend maps a configuration string to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "relational", "postgres":
		return Relational, nil
	case "lds":
		return LinkedDataStore, nil
	default:
		return 0, fmt.Errorf("unknown storage backend %q (want relational or lds)", s)
	}
}

func (b Backend) String() string {
	switch b {
	case Relational:
		return "relational"
	case LinkedDataStore:
		return "lds"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// Store is the narrow persistence interface the lifecycle controller and
// aggregator depend on. Reads distinguish "not found" (sentinel.ErrNotFound)
// from infrastructure failure. Implementations return documents the caller
// may mutate freely; stored state is never shared.
type Store interface {
	GetSeries(ctx context.Context, id string) (*models.Series, error)
	ListSeries(ctx context.Context) ([]*models.Series, error)
	// CreateSeries fails with sentinel.ErrConflict when the id is taken.
	CreateSeries(ctx context.Context, series *models.Series) error
	PutSeries(ctx context.Context, series *models.Series) error

	GetVersion(ctx context.Context, uid string) (*models.Version, error)
	ListVersions(ctx context.Context, seriesID string) ([]*models.Version, error)
	PutVersion(ctx context.Context, version *models.Version) error
	// InsertVersion stores the version and appends its UID to the owning
	// series' version links.
	InsertVersion(ctx context.Context, version *models.Version) error
	// DeleteVersion removes the version document and its series link. The
	// version id is never handed out again (see NextVersionID).
	DeleteVersion(ctx context.Context, seriesID, uid string) error
	// NextVersionID allocates the next version id for a series. IDs are
	// monotonically increasing and survive version deletion.
	NextVersionID(ctx context.Context, seriesID string) (string, error)

	SeriesDefinition(ctx context.Context) (*models.Definition, error)
	VersionDefinition(ctx context.Context) (*models.Definition, error)
	CodeDefinition(ctx context.Context) (*models.Definition, error)

	// InTransaction runs fn with all writes to the given series applied
	// atomically with respect to other writers of the same series. The
	// publish-and-cascade sequence (insert version, update series, close
	// the previous latest) runs inside one such boundary.
	InTransaction(ctx context.Context, seriesID string, fn func(ctx context.Context) error) error

	// Ping reports backend reachability for health checks.
	Ping(ctx context.Context) error
}
