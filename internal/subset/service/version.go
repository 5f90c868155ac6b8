package service

import (
	"context"
	"encoding/json"
	"errors"

	"subsets/internal/audit"
	"subsets/internal/subset/models"
	"subsets/internal/subset/validity"
	dErrors "subsets/pkg/domain-errors"
	pstrings "subsets/pkg/platform/strings"
)

// VersionResult pairs a persisted version with the non-fatal warnings
// collected while enriching it.
type VersionResult struct {
	Version  *models.Version `json:"version"`
	Warnings []string        `json:"warnings,omitempty"`
}

// CreateVersion runs the full creation pipeline: reconcile the submitted
// document against the version definition, enrich its codes, aggregate
// statistical units, and, when publishing, validate the validity interval
// and apply the cascade — all writes inside one per-series boundary.
func (s *Service) CreateVersion(ctx context.Context, seriesID string, doc map[string]any) (*VersionResult, error) {
	if _, err := models.ParseID(seriesID); err != nil {
		return nil, err
	}

	payload, err := s.decodeVersion(ctx, doc)
	if err != nil {
		return nil, err
	}
	if payload.IsOpen() && len(payload.Codes) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "a version cannot be published with an empty code list")
	}

	// External lookups are read-only; they run before the write boundary so
	// the series lock is never held across reference-service calls.
	codes := payload.Codes
	var warnings []string
	var units []string
	if len(codes) > 0 {
		codes, warnings, err = s.enrichCodes(ctx, codes, payload.ValidFrom, payload.ValidUntil)
		if err != nil {
			return nil, err
		}
		units, err = s.aggregateUnits(ctx, codes)
		if err != nil {
			return nil, err
		}
	}

	var created *models.Version
	err = s.store.InTransaction(ctx, seriesID, func(ctx context.Context) error {
		if _, err := s.store.GetSeries(ctx, seriesID); err != nil {
			return storeErr("get series", err)
		}
		versionID, err := s.store.NextVersionID(ctx, seriesID)
		if err != nil {
			return storeErr("allocate version id", err)
		}

		now := s.now()
		version := &models.Version{
			VersionID:            versionID,
			SeriesID:             seriesID,
			AdministrativeStatus: payload.AdministrativeStatus,
			ValidFrom:            payload.ValidFrom,
			ValidUntil:           payload.ValidUntil,
			Codes:                codes,
			StatisticalUnits:     units,
			CreatedDate:          models.DateOf(now),
			CreatedBy:            payload.CreatedBy,
			LastModified:         now,
			LastUpdatedBy:        payload.LastUpdatedBy,
		}

		if version.IsOpen() {
			if err := s.publish(ctx, version, true); err != nil {
				return err
			}
		} else {
			if err := s.store.InsertVersion(ctx, version); err != nil {
				return storeErr("insert version", err)
			}
		}

		if err := s.foldIntoSeries(ctx, seriesID, units, version.LastUpdatedBy); err != nil {
			return err
		}
		created = version
		return nil
	})
	if err != nil {
		s.metrics.IncLifecycleOp("create_version", "error")
		return nil, err
	}

	action := audit.ActionVersionCreated
	if created.IsOpen() {
		action = audit.ActionVersionPublished
	}
	s.metrics.IncLifecycleOp("create_version", "ok")
	s.emit(ctx, audit.Event{Action: action, SeriesID: seriesID, VersionID: created.VersionID, Actor: created.LastUpdatedBy})
	return &VersionResult{Version: created, Warnings: warnings}, nil
}

// UpdateVersion applies the state machine's edit rules:
//
//	DRAFT -> DRAFT  free replacement except identity fields
//	DRAFT -> OPEN   publish: interval validation plus cascade
//	OPEN  -> OPEN   only validUntil, lastUpdatedBy, statisticalUnits
//	OPEN  -> DRAFT  always rejected
func (s *Service) UpdateVersion(ctx context.Context, seriesID, versionID string, doc map[string]any) (*VersionResult, error) {
	uid, err := versionUID(seriesID, versionID)
	if err != nil {
		return nil, err
	}

	payload, err := s.decodeVersion(ctx, doc)
	if err != nil {
		return nil, err
	}

	// Peek outside the write boundary to decide whether enrichment applies:
	// published versions are never re-enriched.
	peek, err := s.store.GetVersion(ctx, uid)
	if err != nil {
		return nil, storeErr("get version", err)
	}

	codes := payload.Codes
	var warnings []string
	var units []string
	if !peek.IsOpen() && len(codes) > 0 {
		codes, warnings, err = s.enrichCodes(ctx, codes, payload.ValidFrom, payload.ValidUntil)
		if err != nil {
			return nil, err
		}
		units, err = s.aggregateUnits(ctx, codes)
		if err != nil {
			return nil, err
		}
	}

	var updated *models.Version
	var action audit.Action
	err = s.store.InTransaction(ctx, seriesID, func(ctx context.Context) error {
		// Lock the series row first so every mutation of this series
		// serializes on the same point.
		if _, err := s.store.GetSeries(ctx, seriesID); err != nil {
			return storeErr("get series", err)
		}
		stored, err := s.store.GetVersion(ctx, uid)
		if err != nil {
			return storeErr("get version", err)
		}

		now := s.now()
		switch {
		case stored.IsOpen():
			if err := checkOpenEdit(stored, payload); err != nil {
				return err
			}
			next := *stored
			next.ValidUntil = payload.ValidUntil
			next.LastUpdatedBy = payload.LastUpdatedBy
			next.LastModified = now
			if len(payload.StatisticalUnits) > 0 {
				next.StatisticalUnits = pstrings.Union(stored.StatisticalUnits, payload.StatisticalUnits...)
			}
			if !next.ValidUntil.Equal(stored.ValidUntil) {
				siblings, err := s.publishedSiblings(ctx, seriesID, uid)
				if err != nil {
					return err
				}
				if err := validity.CheckInterval(&next, siblings); err != nil {
					return err
				}
			}
			if err := s.store.PutVersion(ctx, &next); err != nil {
				return storeErr("put version", err)
			}
			updated, action = &next, audit.ActionVersionUpdated
			return nil

		case payload.IsOpen():
			if len(codes) == 0 {
				return dErrors.New(dErrors.CodeValidation, "a version cannot be published with an empty code list")
			}
			next := &models.Version{
				VersionID:            stored.VersionID,
				SeriesID:             stored.SeriesID,
				AdministrativeStatus: models.StatusOpen,
				ValidFrom:            payload.ValidFrom,
				ValidUntil:           payload.ValidUntil,
				Codes:                codes,
				StatisticalUnits:     units,
				CreatedDate:          stored.CreatedDate,
				CreatedBy:            stored.CreatedBy,
				LastModified:         now,
				LastUpdatedBy:        payload.LastUpdatedBy,
			}
			if err := s.publish(ctx, next, false); err != nil {
				return err
			}
			if err := s.foldIntoSeries(ctx, seriesID, units, next.LastUpdatedBy); err != nil {
				return err
			}
			updated, action = next, audit.ActionVersionPublished
			return nil

		default:
			next := &models.Version{
				VersionID:            stored.VersionID,
				SeriesID:             stored.SeriesID,
				AdministrativeStatus: models.StatusDraft,
				ValidFrom:            payload.ValidFrom,
				ValidUntil:           payload.ValidUntil,
				Codes:                codes,
				StatisticalUnits:     units,
				CreatedDate:          stored.CreatedDate,
				CreatedBy:            stored.CreatedBy,
				LastModified:         now,
				LastUpdatedBy:        payload.LastUpdatedBy,
			}
			if err := s.store.PutVersion(ctx, next); err != nil {
				return storeErr("put version", err)
			}
			updated, action = next, audit.ActionVersionUpdated
			return nil
		}
	})
	if err != nil {
		s.metrics.IncLifecycleOp("update_version", "error")
		return nil, err
	}

	s.metrics.IncLifecycleOp("update_version", "ok")
	s.emit(ctx, audit.Event{Action: action, SeriesID: seriesID, VersionID: versionID, Actor: updated.LastUpdatedBy})
	return &VersionResult{Version: updated, Warnings: warnings}, nil
}

// DeleteVersion removes a draft. Published versions are part of the public
// timeline and cannot be deleted; their id is never reused either way.
func (s *Service) DeleteVersion(ctx context.Context, seriesID, versionID string) error {
	uid, err := versionUID(seriesID, versionID)
	if err != nil {
		return err
	}

	err = s.store.InTransaction(ctx, seriesID, func(ctx context.Context) error {
		if _, err := s.store.GetSeries(ctx, seriesID); err != nil {
			return storeErr("get series", err)
		}
		stored, err := s.store.GetVersion(ctx, uid)
		if err != nil {
			return storeErr("get version", err)
		}
		if stored.IsOpen() {
			return dErrors.New(dErrors.CodeConflict, "a published version cannot be deleted")
		}
		if err := s.store.DeleteVersion(ctx, seriesID, uid); err != nil {
			return storeErr("delete version", err)
		}

		series, err := s.store.GetSeries(ctx, seriesID)
		if err != nil {
			return storeErr("get series", err)
		}
		series.LastModified = s.now()
		if err := s.store.PutSeries(ctx, series); err != nil {
			return storeErr("put series", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.IncLifecycleOp("delete_version", "error")
		return err
	}

	s.metrics.IncLifecycleOp("delete_version", "ok")
	s.emit(ctx, audit.Event{Action: audit.ActionVersionDeleted, SeriesID: seriesID, VersionID: versionID})
	return nil
}

// GetVersion fetches one version, optionally projected to a single language.
func (s *Service) GetVersion(ctx context.Context, seriesID, versionID, language string) (*models.Version, error) {
	uid, err := versionUID(seriesID, versionID)
	if err != nil {
		return nil, err
	}
	version, err := s.store.GetVersion(ctx, uid)
	if err != nil {
		return nil, storeErr("get version", err)
	}
	projectVersion(version, language)
	return version, nil
}

// ListVersions returns a series' versions, drafts included only on request.
func (s *Service) ListVersions(ctx context.Context, seriesID string, includeDrafts bool, language string) ([]*models.Version, error) {
	if _, err := models.ParseID(seriesID); err != nil {
		return nil, err
	}
	versions, err := s.store.ListVersions(ctx, seriesID)
	if err != nil {
		return nil, storeErr("list versions", err)
	}
	out := make([]*models.Version, 0, len(versions))
	for _, v := range versions {
		if !includeDrafts && !v.IsOpen() {
			continue
		}
		projectVersion(v, language)
		out = append(out, v)
	}
	return out, nil
}

// publish validates the candidate's interval against its published siblings
// and applies the side effects the overlap report calls for: capping a new
// first version's open end, and closing the previous latest (the cascade).
// insert selects between inserting a brand new version and rewriting a
// promoted draft.
func (s *Service) publish(ctx context.Context, version *models.Version, insert bool) error {
	siblings, err := s.publishedSiblings(ctx, version.SeriesID, version.UID())
	if err != nil {
		return err
	}
	report, err := validity.CheckOverlap(version, siblings)
	if err != nil {
		return err
	}
	if !report.CapUntil.IsZero() {
		version.ValidUntil = report.CapUntil
	}

	if insert {
		if err := s.store.InsertVersion(ctx, version); err != nil {
			return storeErr("insert version", err)
		}
	} else {
		if err := s.store.PutVersion(ctx, version); err != nil {
			return storeErr("put version", err)
		}
	}

	if report.PreviousLatest != nil {
		if err := s.cascade(ctx, report.PreviousLatest, version.ValidFrom); err != nil {
			return err
		}
	}
	return nil
}

// cascade closes the previous latest version's open-ended interval at the
// new latest's validFrom. This is the one sanctioned write to a published
// version's interval outside the edit rules; only validUntil changes.
func (s *Service) cascade(ctx context.Context, previous *models.Version, until models.Date) error {
	target, err := s.store.GetVersion(ctx, previous.UID())
	if err != nil {
		// The sibling was listed moments ago; its absence now is an
		// invariant breach, not a client problem.
		return dErrors.Wrap(dErrors.CodeInternal, "cascade target "+previous.UID()+" missing", err)
	}
	next := *target
	next.ValidUntil = until
	next.LastModified = s.now()
	if err := s.store.PutVersion(ctx, &next); err != nil {
		return dErrors.Wrap(dErrors.CodeUpstream, "close previous latest version "+previous.UID(), err)
	}
	s.logger.InfoContext(ctx, "closed previous latest version",
		"version_uid", previous.UID(),
		"valid_until", until.String(),
	)
	return nil
}

// foldIntoSeries unions freshly aggregated units into the series document
// and stamps it. Runs inside the caller's transaction, after the version
// write, so the re-read sees the new version link.
func (s *Service) foldIntoSeries(ctx context.Context, seriesID string, units []string, actor string) error {
	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return storeErr("get series", err)
	}
	series.StatisticalUnits = pstrings.Union(series.StatisticalUnits, units...)
	series.LastModified = s.now()
	if actor != "" {
		series.LastUpdatedBy = actor
	}
	if err := s.store.PutSeries(ctx, series); err != nil {
		return storeErr("put series", err)
	}
	return nil
}

func (s *Service) publishedSiblings(ctx context.Context, seriesID, excludeUID string) ([]*models.Version, error) {
	versions, err := s.store.ListVersions(ctx, seriesID)
	if err != nil {
		return nil, storeErr("list versions", err)
	}
	out := make([]*models.Version, 0, len(versions))
	for _, v := range versions {
		if v.IsOpen() && v.UID() != excludeUID {
			out = append(out, v)
		}
	}
	return out, nil
}

// checkOpenEdit enforces published-version immutability: everything outside
// the explicitly changeable set must match the stored document. An omitted
// code list counts as unchanged, since validUntil-only edits are the common
// case.
func checkOpenEdit(stored, payload *models.Version) error {
	if !payload.IsOpen() {
		return dErrors.New(dErrors.CodeValidation, "administrative status cannot regress from OPEN to DRAFT")
	}
	if !payload.ValidFrom.Equal(stored.ValidFrom) {
		return dErrors.New(dErrors.CodeValidation, "validFrom is immutable once published")
	}
	if len(payload.Codes) > 0 && !models.SameCodes(payload.Codes, stored.Codes) {
		return dErrors.New(dErrors.CodeValidation, "codes are immutable once published")
	}
	if !payload.CreatedDate.IsZero() && !payload.CreatedDate.Equal(stored.CreatedDate) {
		return dErrors.New(dErrors.CodeValidation, "createdDate is immutable")
	}
	if payload.CreatedBy != "" && payload.CreatedBy != stored.CreatedBy {
		return dErrors.New(dErrors.CodeValidation, "createdBy is immutable")
	}
	return nil
}

// decodeVersion reconciles a submitted document against the stored version
// definition and binds it to the domain model.
func (s *Service) decodeVersion(ctx context.Context, doc map[string]any) (*models.Version, error) {
	def, err := s.store.VersionDefinition(ctx)
	if err != nil {
		return nil, storeErr("get version definition", err)
	}
	stripped := Strip(doc, def)

	raw, err := json.Marshal(stripped)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeBadRequest, "invalid version document", err)
	}
	var version models.Version
	if err := json.Unmarshal(raw, &version); err != nil {
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, dErrors.Wrap(dErrors.CodeBadRequest, "invalid version document", err)
	}

	if _, err := models.ParseStatus(string(version.AdministrativeStatus)); err != nil {
		return nil, err
	}
	if version.ValidFrom.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "validFrom is required")
	}
	if !version.ValidUntil.IsZero() && !version.ValidUntil.After(version.ValidFrom) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "validUntil must be after validFrom")
	}
	return &version, nil
}

func versionUID(seriesID, versionID string) (string, error) {
	if _, err := models.ParseID(seriesID); err != nil {
		return "", err
	}
	if _, err := models.ParseID(versionID); err != nil {
		return "", err
	}
	return seriesID + "_" + versionID, nil
}

func projectVersion(v *models.Version, language string) {
	if language == "" {
		return
	}
	for i := range v.Codes {
		v.Codes[i].Name = models.FilterLanguage(v.Codes[i].Name, language)
		v.Codes[i].Notes = models.FilterLanguage(v.Codes[i].Notes, language)
	}
}
