// Package service implements the subset lifecycle: series management, the
// version state machine, code enrichment, statistical-unit aggregation, and
// field reconciliation. Handlers stay thin; every domain rule lives here.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"subsets/internal/audit"
	"subsets/internal/classification"
	"subsets/internal/subset/metrics"
	"subsets/internal/subset/models"
	"subsets/internal/subset/store"
	dErrors "subsets/pkg/domain-errors"
	"subsets/pkg/platform/sentinel"
	pstrings "subsets/pkg/platform/strings"
)

// Service orchestrates subset operations over the persistence and
// reference-lookup interfaces. All collaborators are injected at
// construction; there is no process-wide state.
type Service struct {
	store   store.Store
	lookup  classification.Lookup
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   audit.Publisher
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service. publisher may be nil when auditing is disabled.
func New(st store.Store, lookup classification.Lookup, logger *slog.Logger, m *metrics.Metrics, publisher audit.Publisher, opts ...Option) *Service {
	s := &Service{
		store:   st,
		lookup:  lookup,
		logger:  logger,
		metrics: m,
		audit:   publisher,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSeries registers a new series. createdDate is stamped here and never
// changes again; versions always start empty.
func (s *Service) CreateSeries(ctx context.Context, incoming *models.Series) (*models.Series, error) {
	if _, err := models.ParseID(incoming.ID); err != nil {
		return nil, err
	}

	now := s.now()
	series := &models.Series{
		ID:               incoming.ID,
		Name:             incoming.Name,
		Description:      incoming.Description,
		CreatedDate:      models.DateOf(now),
		LastModified:     now,
		LastUpdatedBy:    incoming.LastUpdatedBy,
		StatisticalUnits: pstrings.DedupeAndTrim(incoming.StatisticalUnits),
	}

	if err := s.store.CreateSeries(ctx, series); err != nil {
		s.metrics.IncLifecycleOp("create_series", "error")
		return nil, storeErr("create series", err)
	}

	s.metrics.IncLifecycleOp("create_series", "ok")
	s.emit(ctx, audit.Event{Action: audit.ActionSeriesCreated, SeriesID: series.ID, Actor: series.LastUpdatedBy})
	return series, nil
}

// UpdateSeries edits a series' descriptive fields. createdDate and the
// version link list are immutable here; statistical units only ever grow.
func (s *Service) UpdateSeries(ctx context.Context, id string, incoming *models.Series) (*models.Series, error) {
	if _, err := models.ParseID(id); err != nil {
		return nil, err
	}

	var updated *models.Series
	err := s.store.InTransaction(ctx, id, func(ctx context.Context) error {
		stored, err := s.store.GetSeries(ctx, id)
		if err != nil {
			return storeErr("get series", err)
		}

		now := s.now()
		updated = &models.Series{
			ID:               stored.ID,
			Name:             incoming.Name,
			Description:      incoming.Description,
			CreatedDate:      stored.CreatedDate,
			LastModified:     now,
			LastUpdatedBy:    incoming.LastUpdatedBy,
			StatisticalUnits: pstrings.Union(stored.StatisticalUnits, incoming.StatisticalUnits...),
			Versions:         stored.Versions,
		}
		if err := s.store.PutSeries(ctx, updated); err != nil {
			return storeErr("put series", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.IncLifecycleOp("update_series", "error")
		return nil, err
	}

	s.metrics.IncLifecycleOp("update_series", "ok")
	s.emit(ctx, audit.Event{Action: audit.ActionSeriesUpdated, SeriesID: id, Actor: incoming.LastUpdatedBy})
	return updated, nil
}

// GetSeries fetches one series, optionally projected to a single language.
func (s *Service) GetSeries(ctx context.Context, id, language string) (*models.Series, error) {
	if _, err := models.ParseID(id); err != nil {
		return nil, err
	}
	series, err := s.store.GetSeries(ctx, id)
	if err != nil {
		return nil, storeErr("get series", err)
	}
	if language != "" {
		series.Name = models.FilterLanguage(series.Name, language)
		series.Description = models.FilterLanguage(series.Description, language)
	}
	return series, nil
}

// ListSeries returns every series.
func (s *Service) ListSeries(ctx context.Context) ([]*models.Series, error) {
	series, err := s.store.ListSeries(ctx)
	if err != nil {
		return nil, storeErr("list series", err)
	}
	return series, nil
}

// Schema returns the series definition document.
func (s *Service) Schema(ctx context.Context) (*models.Definition, error) {
	def, err := s.store.SeriesDefinition(ctx)
	if err != nil {
		return nil, storeErr("get series definition", err)
	}
	return def, nil
}

// Health reports persistence reachability.
func (s *Service) Health(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return dErrors.Wrap(dErrors.CodeUpstream, "storage backend unreachable", err)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit != nil {
		s.audit.Emit(ctx, event)
	}
}

// storeErr translates infrastructure sentinels into domain errors. Coded
// errors pass through untouched.
func storeErr(op string, err error) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(dErrors.CodeNotFound, op, err)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(dErrors.CodeConflict, op, err)
	default:
		return dErrors.Wrap(dErrors.CodeUpstream, op, err)
	}
}
