// Package classification talks to the external reference-classification
// service: the independently versioned source of code names, notes, and
// statistical-unit metadata.
package classification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"subsets/internal/subset/models"
	dErrors "subsets/pkg/domain-errors"
	"subsets/pkg/platform/sentinel"
)

// SnapshotQuery identifies one classification-version snapshot: the codes of
// a classification as they stood over a date window, rendered in one language.
type SnapshotQuery struct {
	ClassificationID string
	From             models.Date
	To               models.Date
	Language         string
}

// Path is the canonical request path for the query. It doubles as the
// memoization and cache key: results for a past date range are stable, so
// equal paths always name equal payloads.
func (q SnapshotQuery) Path() string {
	v := url.Values{}
	if !q.From.IsZero() {
		v.Set("from", q.From.String())
	}
	if !q.To.IsZero() {
		v.Set("to", q.To.String())
	}
	if q.Language != "" {
		v.Set("language", q.Language)
	}
	return fmt.Sprintf("/classifications/%s/codes?%s", url.PathEscape(q.ClassificationID), v.Encode())
}

// Classification is the reference service's view of one classification.
type Classification struct {
	ID               string   `json:"id"`
	StatisticalUnits []string `json:"statisticalUnits"`
}

// SnapshotItem is one code within a classification-version snapshot.
type SnapshotItem struct {
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	Notes                 string `json:"notes"`
	Level                 int    `json:"level,omitempty"`
	ClassificationVersion string `json:"classificationVersion"`
}

// Snapshot is the listing returned for one SnapshotQuery.
type Snapshot struct {
	Items []SnapshotItem `json:"codes"`
}

// Item returns the snapshot entry for code, if present.
func (s *Snapshot) Item(code string) (SnapshotItem, bool) {
	for _, item := range s.Items {
		if item.Code == code {
			return item, true
		}
	}
	return SnapshotItem{}, false
}

// Lookup is the read-only, idempotent contract the enrichment and
// aggregation steps depend on.
type Lookup interface {
	Classification(ctx context.Context, classificationID string) (*Classification, error)
	Snapshot(ctx context.Context, query SnapshotQuery) (*Snapshot, error)
}

// DefaultTimeout bounds every reference-service call. The upstream has no
// SLA; exhaustion surfaces as a dependency failure rather than a hang.
const DefaultTimeout = 10 * time.Second

// Client is the HTTP implementation of Lookup.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Lookup against baseURL with a bounded timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *Client) Classification(ctx context.Context, classificationID string) (*Classification, error) {
	var out Classification
	path := fmt.Sprintf("/classifications/%s", url.PathEscape(classificationID))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Snapshot(ctx context.Context, query SnapshotQuery) (*Snapshot, error) {
	var out Snapshot
	if err := c.get(ctx, query.Path(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "build reference service request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUpstream, "reference service unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("reference service: %s: %w", path, sentinel.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return dErrors.Newf(dErrors.CodeUpstream, "reference service returned %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(dErrors.CodeUpstream, "decode reference service response", err)
	}
	return nil
}
