package service

import (
	"context"

	"subsets/internal/subset/models"
	dErrors "subsets/pkg/domain-errors"
	pstrings "subsets/pkg/platform/strings"
)

// aggregateUnits derives the statistical units implied by the distinct
// classifications a version's codes reference. Any lookup failure aborts the
// whole operation: a version must never be persisted with a partial unit set.
func (s *Service) aggregateUnits(ctx context.Context, codes []models.SubsetCode) ([]string, error) {
	seen := make(map[string]struct{})
	var units []string

	for _, code := range codes {
		if _, ok := seen[code.ClassificationID]; ok {
			continue
		}
		seen[code.ClassificationID] = struct{}{}

		cls, err := s.lookup.Classification(ctx, code.ClassificationID)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeUpstream,
				"resolve statistical units for classification "+code.ClassificationID, err)
		}
		units = append(units, cls.StatisticalUnits...)
	}

	return pstrings.DedupeAndTrim(units), nil
}
