package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"subsets/internal/subset/models"
	dErrors "subsets/pkg/domain-errors"
	"subsets/pkg/platform/sentinel"
)

// ldsTimeout bounds every linked-data-store call.
const ldsTimeout = 10 * time.Second

// LDSStore persists documents in an external linked-data store over HTTP.
// The LDS exposes generic document namespaces; this store maps the subset
// domain onto three of them:
//
//	/ns/ClassificationSubsetSeries/{id}
//	/ns/ClassificationSubsetVersion/{uid}
//	/ns/ClassificationSubsetVersionCounter/{seriesId}
//
// Definitions come from the LDS schema endpoint (?schema), since the LDS
// owns the document schemas for its namespaces.
//
// The LDS offers no transactions or conditional writes. InTransaction and
// CreateSeries serialize on the same per-series in-process lock as the memory
// store, which is sound for a single service instance; multi-instance
// deployments need the relational backend.
type LDSStore struct {
	baseURL string
	http    *http.Client
	locks   keyedLocks
}

// NewLDS builds a store against the LDS at baseURL.
func NewLDS(baseURL string) *LDSStore {
	return &LDSStore{
		baseURL: baseURL,
		http:    &http.Client{Timeout: ldsTimeout},
	}
}

func (s *LDSStore) seriesPath(id string) string {
	return "/ns/ClassificationSubsetSeries/" + url.PathEscape(id)
}

func (s *LDSStore) versionPath(uid string) string {
	return "/ns/ClassificationSubsetVersion/" + url.PathEscape(uid)
}

func (s *LDSStore) counterPath(seriesID string) string {
	return "/ns/ClassificationSubsetVersionCounter/" + url.PathEscape(seriesID)
}

func (s *LDSStore) GetSeries(ctx context.Context, id string) (*models.Series, error) {
	var series models.Series
	if err := s.get(ctx, s.seriesPath(id), &series); err != nil {
		return nil, err
	}
	return &series, nil
}

func (s *LDSStore) ListSeries(ctx context.Context) ([]*models.Series, error) {
	var out []*models.Series
	if err := s.get(ctx, "/ns/ClassificationSubsetSeries", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LDSStore) CreateSeries(ctx context.Context, series *models.Series) error {
	// The existence check and the write are separate LDS calls; hold the
	// series lock across both so concurrent creations surface as a conflict.
	unlock := s.locks.lock(series.ID)
	defer unlock()

	_, err := s.GetSeries(ctx, series.ID)
	if err == nil {
		return fmt.Errorf("series %s: %w", series.ID, sentinel.ErrConflict)
	}
	if !isNotFound(err) {
		return err
	}
	return s.put(ctx, s.seriesPath(series.ID), series)
}

func (s *LDSStore) PutSeries(ctx context.Context, series *models.Series) error {
	if _, err := s.GetSeries(ctx, series.ID); err != nil {
		return err
	}
	return s.put(ctx, s.seriesPath(series.ID), series)
}

func (s *LDSStore) GetVersion(ctx context.Context, uid string) (*models.Version, error) {
	var version models.Version
	if err := s.get(ctx, s.versionPath(uid), &version); err != nil {
		return nil, err
	}
	return &version, nil
}

func (s *LDSStore) ListVersions(ctx context.Context, seriesID string) ([]*models.Version, error) {
	series, err := s.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Version, 0, len(series.Versions))
	for _, uid := range series.Versions {
		version, err := s.GetVersion(ctx, uid)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, version)
	}
	return out, nil
}

func (s *LDSStore) PutVersion(ctx context.Context, version *models.Version) error {
	if _, err := s.GetVersion(ctx, version.UID()); err != nil {
		return err
	}
	return s.put(ctx, s.versionPath(version.UID()), version)
}

func (s *LDSStore) InsertVersion(ctx context.Context, version *models.Version) error {
	series, err := s.GetSeries(ctx, version.SeriesID)
	if err != nil {
		return err
	}
	uid := version.UID()
	if _, err := s.GetVersion(ctx, uid); err == nil {
		return fmt.Errorf("version %s: %w", uid, sentinel.ErrConflict)
	} else if !isNotFound(err) {
		return err
	}
	if err := s.put(ctx, s.versionPath(uid), version); err != nil {
		return err
	}
	series.Versions = append(series.Versions, uid)
	return s.put(ctx, s.seriesPath(series.ID), series)
}

func (s *LDSStore) DeleteVersion(ctx context.Context, seriesID, uid string) error {
	if err := s.delete(ctx, s.versionPath(uid)); err != nil {
		return err
	}
	series, err := s.GetSeries(ctx, seriesID)
	if err != nil {
		return err
	}
	links := series.Versions[:0]
	for _, v := range series.Versions {
		if v != uid {
			links = append(links, v)
		}
	}
	series.Versions = links
	return s.put(ctx, s.seriesPath(seriesID), series)
}

// ldsCounter is the stored allocation state for one series' version ids.
type ldsCounter struct {
	SeriesID string `json:"seriesId"`
	Counter  int    `json:"counter"`
}

// NextVersionID reads and rewrites the counter document. Callers hold the
// per-series lock from InTransaction, so the read-modify-write does not race
// within one instance.
func (s *LDSStore) NextVersionID(ctx context.Context, seriesID string) (string, error) {
	var counter ldsCounter
	err := s.get(ctx, s.counterPath(seriesID), &counter)
	if err != nil && !isNotFound(err) {
		return "", err
	}
	counter.SeriesID = seriesID
	counter.Counter++
	if err := s.put(ctx, s.counterPath(seriesID), &counter); err != nil {
		return "", err
	}
	return strconv.Itoa(counter.Counter), nil
}

func (s *LDSStore) SeriesDefinition(ctx context.Context) (*models.Definition, error) {
	return s.definition(ctx, "/ns/ClassificationSubsetSeries?schema")
}

func (s *LDSStore) VersionDefinition(ctx context.Context) (*models.Definition, error) {
	return s.definition(ctx, "/ns/ClassificationSubsetVersion?schema")
}

func (s *LDSStore) CodeDefinition(ctx context.Context) (*models.Definition, error) {
	return s.definition(ctx, "/ns/ClassificationSubsetCode?schema")
}

func (s *LDSStore) definition(ctx context.Context, path string) (*models.Definition, error) {
	var def models.Definition
	if err := s.get(ctx, path, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *LDSStore) InTransaction(ctx context.Context, seriesID string, fn func(ctx context.Context) error) error {
	unlock := s.locks.lock(seriesID)
	defer unlock()
	return fn(ctx)
}

func (s *LDSStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("lds: %w", sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("lds health returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	return nil
}

func (s *LDSStore) get(ctx context.Context, path string, out any) error {
	return s.do(ctx, http.MethodGet, path, nil, out)
}

func (s *LDSStore) put(ctx context.Context, path string, doc any) error {
	return s.do(ctx, http.MethodPut, path, doc, nil)
}

func (s *LDSStore) delete(ctx context.Context, path string) error {
	return s.do(ctx, http.MethodDelete, path, nil, nil)
}

func (s *LDSStore) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode lds document: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build lds request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUpstream, "linked data store unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("lds %s %s: %w", method, path, sentinel.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return dErrors.Newf(dErrors.CodeUpstream, "linked data store returned %d for %s %s", resp.StatusCode, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return dErrors.Wrap(dErrors.CodeUpstream, "decode lds response", err)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
