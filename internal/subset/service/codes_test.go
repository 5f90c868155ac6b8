package service

import (
	"context"

	"subsets/internal/subset/models"
	dErrors "subsets/pkg/domain-errors"
)

// =============================================================================
// Code Read Tests
// =============================================================================

// seedTimeline publishes two adjacent versions and leaves one draft:
//
//	v1 OPEN  [2020-01-01, 2022-01-01)  codes 0301, 1103
//	v2 OPEN  [2022-01-01, +inf)        codes 0301, 5001
//	v3 DRAFT open ended                codes 1103
func (s *SubsetServiceSuite) seedTimeline() {
	ctx := context.Background()
	s.createSeries("kommuner")

	_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2020-01-01", "", "0301", "1103"))
	s.Require().NoError(err)
	_, err = s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2022-01-01", "", "0301", "5001"))
	s.Require().NoError(err)
	_, err = s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2030-01-01", "", "1103"))
	s.Require().NoError(err)
}

func (s *SubsetServiceSuite) TestCodesAt() {
	ctx := context.Background()
	s.seedTimeline()

	s.Run("date inside the first interval", func() {
		codes, err := s.service.CodesAt(ctx, "kommuner", models.MustDate("2021-06-15"), "")
		s.Require().NoError(err)
		s.Equal([]string{"0301", "1103"}, codeValues(codes))
	})

	s.Run("interval end belongs to the next version", func() {
		codes, err := s.service.CodesAt(ctx, "kommuner", models.MustDate("2022-01-01"), "")
		s.Require().NoError(err)
		s.Equal([]string{"0301", "5001"}, codeValues(codes))
	})

	s.Run("open end covers the far future, drafts excluded", func() {
		codes, err := s.service.CodesAt(ctx, "kommuner", models.MustDate("2035-01-01"), "")
		s.Require().NoError(err)
		s.Equal([]string{"0301", "5001"}, codeValues(codes))
	})

	s.Run("date before the timeline yields an empty list", func() {
		codes, err := s.service.CodesAt(ctx, "kommuner", models.MustDate("2019-12-31"), "")
		s.Require().NoError(err)
		s.Empty(codes)
	})

	s.Run("unknown series is not found", func() {
		_, err := s.service.CodesAt(ctx, "absent", models.MustDate("2021-01-01"), "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *SubsetServiceSuite) TestCodesInRange() {
	ctx := context.Background()
	s.seedTimeline()

	s.Run("range spanning both versions unions and deduplicates", func() {
		codes, err := s.service.CodesInRange(ctx, "kommuner",
			models.MustDate("2021-01-01"), models.MustDate("2023-01-01"), "")
		s.Require().NoError(err)
		s.Equal([]string{"0301", "1103", "5001"}, codeValues(codes))
	})

	s.Run("range within one version touches only it", func() {
		codes, err := s.service.CodesInRange(ctx, "kommuner",
			models.MustDate("2020-06-01"), models.MustDate("2021-06-01"), "")
		s.Require().NoError(err)
		s.Equal([]string{"0301", "1103"}, codeValues(codes))
	})

	s.Run("range ending at a validFrom excludes that version", func() {
		codes, err := s.service.CodesInRange(ctx, "kommuner",
			models.MustDate("2020-01-01"), models.MustDate("2022-01-01"), "")
		s.Require().NoError(err)
		s.Equal([]string{"0301", "1103"}, codeValues(codes))
	})

	s.Run("open bounds cover the whole timeline", func() {
		codes, err := s.service.CodesInRange(ctx, "kommuner", models.Date{}, models.Date{}, "")
		s.Require().NoError(err)
		s.Equal([]string{"0301", "1103", "5001"}, codeValues(codes))
	})
}

func codeValues(codes []models.SubsetCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.Code
	}
	return out
}
