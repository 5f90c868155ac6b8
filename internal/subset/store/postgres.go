package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"subsets/internal/subset/models"
	"subsets/pkg/platform/sentinel"
	"subsets/pkg/platform/tx"
)

//go:embed schema.sql
var postgresSchema string

// PostgresStore persists series and version documents as JSONB rows. The
// store is pure I/O; lifecycle rules live in the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables when missing. Idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx. Store methods run on the
// transaction carried in context when InTransaction is active.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) GetSeries(ctx context.Context, id string) (*models.Series, error) {
	// Inside a transaction the row is locked so the whole publish-and-cascade
	// sequence is serialized per series.
	query := `SELECT doc FROM subset_series WHERE id = $1`
	if _, inTx := tx.From(ctx); inTx {
		query += ` FOR UPDATE`
	}
	var raw []byte
	if err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("series %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	var series models.Series
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, fmt.Errorf("decode series %s: %w", id, err)
	}
	return &series, nil
}

func (s *PostgresStore) ListSeries(ctx context.Context) ([]*models.Series, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT doc FROM subset_series ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var out []*models.Series
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		var series models.Series
		if err := json.Unmarshal(raw, &series); err != nil {
			return nil, fmt.Errorf("decode series: %w", err)
		}
		out = append(out, &series)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateSeries(ctx context.Context, series *models.Series) error {
	raw, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("encode series %s: %w", series.ID, err)
	}
	_, err = s.q(ctx).ExecContext(ctx,
		`INSERT INTO subset_series (id, doc) VALUES ($1, $2)`, series.ID, raw)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("series %s: %w", series.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("create series: %w", err)
	}
	return nil
}

func (s *PostgresStore) PutSeries(ctx context.Context, series *models.Series) error {
	raw, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("encode series %s: %w", series.ID, err)
	}
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE subset_series SET doc = $2 WHERE id = $1`, series.ID, raw)
	if err != nil {
		return fmt.Errorf("put series: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("series %s: %w", series.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) GetVersion(ctx context.Context, uid string) (*models.Version, error) {
	var raw []byte
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT doc FROM subset_versions WHERE uid = $1`, uid).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("version %s: %w", uid, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	var version models.Version
	if err := json.Unmarshal(raw, &version); err != nil {
		return nil, fmt.Errorf("decode version %s: %w", uid, err)
	}
	return &version, nil
}

func (s *PostgresStore) ListVersions(ctx context.Context, seriesID string) ([]*models.Version, error) {
	if _, err := s.GetSeries(ctx, seriesID); err != nil {
		return nil, err
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT doc FROM subset_versions WHERE series_id = $1 ORDER BY uid`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []*models.Version
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		var version models.Version
		if err := json.Unmarshal(raw, &version); err != nil {
			return nil, fmt.Errorf("decode version: %w", err)
		}
		out = append(out, &version)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PutVersion(ctx context.Context, version *models.Version) error {
	raw, err := json.Marshal(version)
	if err != nil {
		return fmt.Errorf("encode version %s: %w", version.UID(), err)
	}
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE subset_versions SET doc = $2 WHERE uid = $1`, version.UID(), raw)
	if err != nil {
		return fmt.Errorf("put version: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("version %s: %w", version.UID(), sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) InsertVersion(ctx context.Context, version *models.Version) error {
	raw, err := json.Marshal(version)
	if err != nil {
		return fmt.Errorf("encode version %s: %w", version.UID(), err)
	}
	_, err = s.q(ctx).ExecContext(ctx,
		`INSERT INTO subset_versions (uid, series_id, doc) VALUES ($1, $2, $3)`,
		version.UID(), version.SeriesID, raw)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return fmt.Errorf("version %s: %w", version.UID(), sentinel.ErrConflict)
			case "foreign_key_violation":
				return fmt.Errorf("series %s: %w", version.SeriesID, sentinel.ErrNotFound)
			}
		}
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = s.q(ctx).ExecContext(ctx, `
		UPDATE subset_series
		SET doc = jsonb_set(doc, '{versions}', COALESCE(doc->'versions', '[]'::jsonb) || to_jsonb($2::text))
		WHERE id = $1`,
		version.SeriesID, version.UID())
	if err != nil {
		return fmt.Errorf("link version to series: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteVersion(ctx context.Context, seriesID, uid string) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM subset_versions WHERE uid = $1 AND series_id = $2`, uid, seriesID)
	if err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("version %s: %w", uid, sentinel.ErrNotFound)
	}
	_, err = s.q(ctx).ExecContext(ctx, `
		UPDATE subset_series
		SET doc = jsonb_set(doc, '{versions}', (doc->'versions') - $2::text)
		WHERE id = $1`,
		seriesID, uid)
	if err != nil {
		return fmt.Errorf("unlink version from series: %w", err)
	}
	return nil
}

func (s *PostgresStore) NextVersionID(ctx context.Context, seriesID string) (string, error) {
	var counter int
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO subset_version_counters (series_id, counter)
		VALUES ($1, 1)
		ON CONFLICT (series_id) DO UPDATE SET counter = subset_version_counters.counter + 1
		RETURNING counter`,
		seriesID).Scan(&counter)
	if err != nil {
		return "", fmt.Errorf("next version id: %w", err)
	}
	return strconv.Itoa(counter), nil
}

func (s *PostgresStore) SeriesDefinition(context.Context) (*models.Definition, error) {
	return loadDefinition("series")
}

func (s *PostgresStore) VersionDefinition(context.Context) (*models.Definition, error) {
	return loadDefinition("version")
}

func (s *PostgresStore) CodeDefinition(context.Context) (*models.Definition, error) {
	return loadDefinition("code")
}

// InTransaction wraps fn in one database transaction; GetSeries takes a row
// lock inside it, so concurrent publishers of the same series serialize on
// the series row.
func (s *PostgresStore) InTransaction(ctx context.Context, seriesID string, fn func(ctx context.Context) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
