package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"subsets/internal/subset/models"
	"subsets/pkg/platform/sentinel"
)

// MemoryStore keeps all documents in process. It backs unit tests and local
// development; semantics (not-found vs conflict, copy-on-read, id
// monotonicity, per-series transactions) match the durable backends.
type MemoryStore struct {
	mu       sync.RWMutex
	series   map[string]*models.Series
	versions map[string]*models.Version
	counters map[string]int

	locks keyedLocks
}

// NewMemory builds an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		series:   make(map[string]*models.Series),
		versions: make(map[string]*models.Version),
		counters: make(map[string]int),
	}
}

func (s *MemoryStore) GetSeries(_ context.Context, id string) (*models.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.series[id]
	if !ok {
		return nil, fmt.Errorf("series %s: %w", id, sentinel.ErrNotFound)
	}
	return cloneSeries(series), nil
}

func (s *MemoryStore) ListSeries(_ context.Context) ([]*models.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Series, 0, len(s.series))
	for _, series := range s.series {
		out = append(out, cloneSeries(series))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateSeries(_ context.Context, series *models.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.series[series.ID]; ok {
		return fmt.Errorf("series %s: %w", series.ID, sentinel.ErrConflict)
	}
	s.series[series.ID] = cloneSeries(series)
	return nil
}

func (s *MemoryStore) PutSeries(_ context.Context, series *models.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.series[series.ID]; !ok {
		return fmt.Errorf("series %s: %w", series.ID, sentinel.ErrNotFound)
	}
	s.series[series.ID] = cloneSeries(series)
	return nil
}

func (s *MemoryStore) GetVersion(_ context.Context, uid string) (*models.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	version, ok := s.versions[uid]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", uid, sentinel.ErrNotFound)
	}
	return cloneVersion(version), nil
}

func (s *MemoryStore) ListVersions(_ context.Context, seriesID string) ([]*models.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.series[seriesID]
	if !ok {
		return nil, fmt.Errorf("series %s: %w", seriesID, sentinel.ErrNotFound)
	}
	out := make([]*models.Version, 0, len(series.Versions))
	for _, uid := range series.Versions {
		if version, ok := s.versions[uid]; ok {
			out = append(out, cloneVersion(version))
		}
	}
	return out, nil
}

func (s *MemoryStore) PutVersion(_ context.Context, version *models.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.versions[version.UID()]; !ok {
		return fmt.Errorf("version %s: %w", version.UID(), sentinel.ErrNotFound)
	}
	s.versions[version.UID()] = cloneVersion(version)
	return nil
}

func (s *MemoryStore) InsertVersion(_ context.Context, version *models.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	series, ok := s.series[version.SeriesID]
	if !ok {
		return fmt.Errorf("series %s: %w", version.SeriesID, sentinel.ErrNotFound)
	}
	uid := version.UID()
	if _, ok := s.versions[uid]; ok {
		return fmt.Errorf("version %s: %w", uid, sentinel.ErrConflict)
	}
	s.versions[uid] = cloneVersion(version)
	series.Versions = append(series.Versions, uid)
	return nil
}

func (s *MemoryStore) DeleteVersion(_ context.Context, seriesID, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.versions[uid]; !ok {
		return fmt.Errorf("version %s: %w", uid, sentinel.ErrNotFound)
	}
	delete(s.versions, uid)
	if series, ok := s.series[seriesID]; ok {
		links := series.Versions[:0]
		for _, v := range series.Versions {
			if v != uid {
				links = append(links, v)
			}
		}
		series.Versions = links
	}
	return nil
}

func (s *MemoryStore) NextVersionID(_ context.Context, seriesID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[seriesID]++
	return strconv.Itoa(s.counters[seriesID]), nil
}

func (s *MemoryStore) SeriesDefinition(context.Context) (*models.Definition, error) {
	return loadDefinition("series")
}

func (s *MemoryStore) VersionDefinition(context.Context) (*models.Definition, error) {
	return loadDefinition("version")
}

func (s *MemoryStore) CodeDefinition(context.Context) (*models.Definition, error) {
	return loadDefinition("code")
}

// InTransaction serializes writers of one series behind a per-series mutex.
// There is no rollback: the memory store is not durable, and callers order
// their writes so a mid-sequence failure leaves no dangling link.
func (s *MemoryStore) InTransaction(ctx context.Context, seriesID string, fn func(ctx context.Context) error) error {
	unlock := s.locks.lock(seriesID)
	defer unlock()
	return fn(ctx)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// keyedLocks hands out one mutex per series id.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func cloneSeries(s *models.Series) *models.Series {
	out := *s
	out.Name = append([]models.MultilingualText(nil), s.Name...)
	out.Description = append([]models.MultilingualText(nil), s.Description...)
	out.StatisticalUnits = append([]string(nil), s.StatisticalUnits...)
	out.Versions = append([]string(nil), s.Versions...)
	return &out
}

func cloneVersion(v *models.Version) *models.Version {
	out := *v
	out.StatisticalUnits = append([]string(nil), v.StatisticalUnits...)
	out.Codes = make([]models.SubsetCode, len(v.Codes))
	for i, c := range v.Codes {
		cc := c
		cc.Name = append([]models.MultilingualText(nil), c.Name...)
		cc.Notes = append([]models.MultilingualText(nil), c.Notes...)
		cc.ClassificationVersions = append([]string(nil), c.ClassificationVersions...)
		out.Codes[i] = cc
	}
	return &out
}
