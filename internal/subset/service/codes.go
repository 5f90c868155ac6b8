package service

import (
	"context"

	"subsets/internal/subset/models"
	pstrings "subsets/pkg/platform/strings"
)

// CodesAt returns the codes valid on a single date. Published intervals are
// pairwise disjoint, so at most one version contributes.
func (s *Service) CodesAt(ctx context.Context, seriesID string, date models.Date, language string) ([]models.SubsetCode, error) {
	versions, err := s.ListVersions(ctx, seriesID, false, language)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.Covers(date) {
			return v.Codes, nil
		}
	}
	return []models.SubsetCode{}, nil
}

// CodesInRange unions the codes of every published version whose interval
// intersects [from, to), deduplicated by classification and code value.
// A code present in several versions keeps the first resolved name and
// accumulates the classification-version references.
func (s *Service) CodesInRange(ctx context.Context, seriesID string, from, to models.Date, language string) ([]models.SubsetCode, error) {
	versions, err := s.ListVersions(ctx, seriesID, false, language)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	out := []models.SubsetCode{}
	for _, v := range versions {
		if !v.Intersects(from, to) {
			continue
		}
		for _, code := range v.Codes {
			key := code.ClassificationID + "_" + code.Code
			if i, ok := index[key]; ok {
				out[i].ClassificationVersions = pstrings.Union(out[i].ClassificationVersions, code.ClassificationVersions...)
				continue
			}
			index[key] = len(out)
			out = append(out, code)
		}
	}
	return out, nil
}
