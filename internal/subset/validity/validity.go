// Package validity implements the temporal-consistency check for published
// subset versions.
//
// Interval convention: every validity range is closed-open,
// [validFrom, validUntil). An absent validUntil reads as +infinity and is
// legal on at most one published version per series (the current latest).
// Two versions are adjacent, not overlapping, when one ends exactly where
// the next begins.
package validity

import (
	"subsets/internal/subset/models"
	dErrors "subsets/pkg/domain-errors"
)

// Report classifies a candidate version against its published siblings and
// drives the lifecycle controller's follow-up writes.
type Report struct {
	// NoOthers is set when the series has no published versions yet.
	NoOthers bool
	// IsFirst is set when the candidate starts before every published sibling.
	IsFirst bool
	// IsLatest is set when the candidate starts after every published sibling.
	IsLatest bool
	// PreviousLatest is the sibling whose open-ended interval must be closed
	// at the candidate's validFrom (the publish cascade). Nil when the
	// current latest is already bounded or the candidate is not the new latest.
	PreviousLatest *models.Version
	// CapUntil bounds an open-ended candidate that becomes the new first
	// version: its validUntil is set to the earliest sibling's validFrom so
	// the published intervals stay non-overlapping.
	CapUntil models.Date
}

// CheckOverlap validates candidate against the published versions of the same
// series. siblings must exclude the candidate itself and contain only OPEN
// versions. A rejected candidate yields a validation error naming the
// colliding sibling; callers treat it as a client error.
func CheckOverlap(candidate *models.Version, siblings []*models.Version) (Report, error) {
	if len(siblings) == 0 {
		return Report{NoOthers: true, IsFirst: true, IsLatest: true}, nil
	}

	earliestFrom := siblings[0].ValidFrom
	latestFrom := siblings[0].ValidFrom
	currentLatest := siblings[0]
	for _, s := range siblings[1:] {
		if s.ValidFrom.Before(earliestFrom) {
			earliestFrom = s.ValidFrom
		}
		if s.ValidFrom.After(latestFrom) {
			latestFrom = s.ValidFrom
			currentLatest = s
		}
	}

	openEnded := candidate.ValidUntil.IsZero()
	for _, s := range siblings {
		if err := checkSibling(candidate, s, openEnded); err != nil {
			return Report{}, err
		}
	}

	// Defensive guard: even when no single sibling collided, a validFrom
	// inside the published range [earliestFrom, latestFrom] (inclusive)
	// would fill a gap between siblings. New versions may only extend the
	// timeline at either end.
	if !candidate.ValidFrom.Before(earliestFrom) && !candidate.ValidFrom.After(latestFrom) {
		return Report{}, dErrors.Newf(dErrors.CodeValidation,
			"validFrom %s falls inside the published range %s to %s; a new version must lie before the first or after the last published version",
			candidate.ValidFrom, earliestFrom, latestFrom)
	}

	report := Report{
		IsFirst:  candidate.ValidFrom.Before(earliestFrom),
		IsLatest: candidate.ValidFrom.After(latestFrom),
	}
	if report.IsLatest && currentLatest.ValidUntil.IsZero() {
		report.PreviousLatest = currentLatest
	}
	if report.IsFirst && openEnded {
		report.CapUntil = earliestFrom
	}
	return report, nil
}

// CheckInterval rejects any closed-open intersection between the candidate's
// interval and its published siblings, with absent bounds reading as
// +infinity on both sides. Used when an edit moves a published version's
// validUntil: the version keeps its place in the ordering, so only pairwise
// intersection matters, not first/latest classification.
func CheckInterval(candidate *models.Version, siblings []*models.Version) error {
	for _, s := range siblings {
		if s.UID() == candidate.UID() {
			continue
		}
		startsBeforeSiblingEnds := s.ValidUntil.IsZero() || candidate.ValidFrom.Before(s.ValidUntil)
		siblingStartsBeforeEnd := candidate.ValidUntil.IsZero() || s.ValidFrom.Before(candidate.ValidUntil)
		if startsBeforeSiblingEnds && siblingStartsBeforeEnd {
			return overlapErr(s)
		}
	}
	return nil
}

// checkSibling rejects any closed-open intersection between the candidate and
// one published sibling.
//
// An open-ended candidate is special-cased: it must become the unambiguous
// new latest (strictly after the sibling's validFrom and at or after its
// validUntil), with two sanctioned exceptions. A sibling with no validUntil
// does not block it when the candidate starts later, because the publish
// cascade closes that sibling at the candidate's validFrom. A candidate that
// starts before every sibling is capped at the earliest validFrom by the
// caller, so here it only needs a strictly earlier start.
func checkSibling(candidate, s *models.Version, openEnded bool) error {
	if openEnded {
		if candidate.ValidFrom.Before(s.ValidFrom) {
			return nil
		}
		if candidate.ValidFrom.Equal(s.ValidFrom) {
			return overlapErr(s)
		}
		if !s.ValidUntil.IsZero() && candidate.ValidFrom.Before(s.ValidUntil) {
			return overlapErr(s)
		}
		return nil
	}

	// Bounded candidate: [cf, cu) intersects [sf, su) when cf < su && sf < cu,
	// with an absent su reading as +infinity.
	if s.ValidUntil.IsZero() || candidate.ValidFrom.Before(s.ValidUntil) {
		if s.ValidFrom.Before(candidate.ValidUntil) {
			return overlapErr(s)
		}
	}
	return nil
}

func overlapErr(s *models.Version) error {
	if s.ValidUntil.IsZero() {
		return dErrors.Newf(dErrors.CodeValidation,
			"validity interval overlaps published version %s (valid from %s, open ended)", s.UID(), s.ValidFrom)
	}
	return dErrors.Newf(dErrors.CodeValidation,
		"validity interval overlaps published version %s (valid from %s until %s)", s.UID(), s.ValidFrom, s.ValidUntil)
}
