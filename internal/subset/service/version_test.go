package service

import (
	"context"

	"subsets/internal/subset/models"
	dErrors "subsets/pkg/domain-errors"
)

// =============================================================================
// Version Creation Tests
// =============================================================================

func (s *SubsetServiceSuite) TestCreateVersion() {
	ctx := context.Background()
	s.createSeries("kommuner")

	s.Run("draft gets an allocated id and enriched codes", func() {
		result, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2020-01-01", "", "0301"))
		s.Require().NoError(err)
		s.Empty(result.Warnings)

		v := result.Version
		s.Equal("1", v.VersionID)
		s.Equal("kommuner", v.SeriesID)
		s.Equal(models.StatusDraft, v.AdministrativeStatus)
		s.Equal(models.DateOf(fixedNow), v.CreatedDate)

		s.Require().Len(v.Codes, 1)
		s.Equal("Oslo (nb)", models.TextFor(v.Codes[0].Name, "nb"))
		s.Equal("Oslo (nn)", models.TextFor(v.Codes[0].Name, "nn"))
		s.Equal("Oslo (en)", models.TextFor(v.Codes[0].Name, "en"))
		s.Equal([]string{"Kommuneinndeling 2020"}, v.Codes[0].ClassificationVersions)
		s.Equal([]string{"Kommune"}, v.StatisticalUnits)
	})

	s.Run("aggregated units fold into the series", func() {
		series, err := s.service.GetSeries(ctx, "kommuner", "")
		s.Require().NoError(err)
		s.Equal([]string{"Kommune"}, series.StatisticalUnits)
		s.True(series.HasVersion("kommuner_1"))
	})

	s.Run("submitted versionId is ignored in favor of the allocated one", func() {
		doc := versionDoc("DRAFT", "2021-01-01", "2021-06-01", "1103")
		doc["versionId"] = "999"
		result, err := s.service.CreateVersion(ctx, "kommuner", doc)
		s.Require().NoError(err)
		s.Equal("2", result.Version.VersionID)
	})

	s.Run("unknown fields are stripped before binding", func() {
		doc := versionDoc("DRAFT", "2022-01-01", "2022-06-01", "5001")
		doc["shoeSize"] = 47
		result, err := s.service.CreateVersion(ctx, "kommuner", doc)
		s.Require().NoError(err)
		s.Equal("3", result.Version.VersionID)
	})

	s.Run("unknown series is not found", func() {
		_, err := s.service.CreateVersion(ctx, "absent", versionDoc("DRAFT", "2020-01-01", ""))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *SubsetServiceSuite) TestCreateVersionValidation() {
	ctx := context.Background()
	s.createSeries("kommuner")

	tests := []struct {
		name string
		doc  map[string]any
		code dErrors.Code
	}{
		{
			name: "missing validFrom",
			doc:  map[string]any{"administrativeStatus": "DRAFT"},
			code: dErrors.CodeBadRequest,
		},
		{
			name: "malformed validFrom",
			doc:  versionDoc("DRAFT", "01.01.2020", ""),
			code: dErrors.CodeBadRequest,
		},
		{
			name: "validUntil not after validFrom",
			doc:  versionDoc("DRAFT", "2020-01-01", "2020-01-01"),
			code: dErrors.CodeBadRequest,
		},
		{
			name: "unknown administrative status",
			doc:  versionDoc("PUBLISHED", "2020-01-01", ""),
			code: dErrors.CodeBadRequest,
		},
		{
			name: "publishing an empty code list",
			doc:  versionDoc("OPEN", "2020-01-01", ""),
			code: dErrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreateVersion(ctx, "kommuner", tt.doc)
			s.True(dErrors.HasCode(err, tt.code), "want %s, got %v", tt.code, err)
		})
	}
}

func (s *SubsetServiceSuite) TestEnrichment() {
	ctx := context.Background()
	s.createSeries("kommuner")

	s.Run("snapshots are fetched once per language and memoized across codes", func() {
		_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2020-01-01", "", "0301", "1103", "5001"))
		s.Require().NoError(err)
		// Three codes share one classification and window: one fetch per language.
		s.Equal(3, s.lookup.calls())
	})

	s.Run("a failing language is omitted with no error", func() {
		s.lookup.failLanguage["en"] = dErrors.New(dErrors.CodeUpstream, "reference service unreachable")
		result, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2021-01-01", "2021-06-01", "0301"))
		s.Require().NoError(err)
		s.Empty(result.Warnings)
		s.Len(result.Version.Codes[0].Name, 2)
		s.Empty(models.FilterLanguage(result.Version.Codes[0].Name, "en"))
		delete(s.lookup.failLanguage, "en")
	})

	s.Run("a code absent from every snapshot yields a warning", func() {
		result, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2022-01-01", "2022-06-01", "9999"))
		s.Require().NoError(err)
		s.Require().Len(result.Warnings, 1)
		s.Contains(result.Warnings[0], "9999")
		s.Empty(result.Version.Codes[0].Name)
	})

	s.Run("aggregation failure aborts the whole operation", func() {
		s.lookup.classificationErr = dErrors.New(dErrors.CodeUpstream, "reference service unreachable")
		_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2023-01-01", "2023-06-01", "0301"))
		s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
		s.lookup.classificationErr = nil

		versions, listErr := s.service.ListVersions(ctx, "kommuner", true, "")
		s.Require().NoError(listErr)
		for _, v := range versions {
			s.NotEqual(models.MustDate("2023-01-01"), v.ValidFrom)
		}
	})
}

// =============================================================================
// Publish Lifecycle Tests
// =============================================================================

func (s *SubsetServiceSuite) TestPublishLifecycle() {
	ctx := context.Background()
	s.createSeries("kommuner")

	s.Run("first published version may be open ended", func() {
		result, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2020-01-01", "", "0301"))
		s.Require().NoError(err)
		s.True(result.Version.ValidUntil.IsZero())
	})

	s.Run("publishing a later open ended version closes the previous latest", func() {
		result, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2022-01-01", "", "0301", "1103"))
		s.Require().NoError(err)
		s.True(result.Version.ValidUntil.IsZero())

		previous, err := s.service.GetVersion(ctx, "kommuner", "1", "")
		s.Require().NoError(err)
		s.Equal(models.MustDate("2022-01-01"), previous.ValidUntil)
	})

	s.Run("overlapping bounded version is rejected", func() {
		_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2020-07-01", "2021-01-01", "0301"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("validFrom equal to a sibling's is rejected", func() {
		_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2022-01-01", "", "0301"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("validFrom inside the published range is rejected", func() {
		_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2021-01-01", "", "0301"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("an earlier open ended version is capped at the first sibling's start", func() {
		result, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2018-01-01", "", "5001"))
		s.Require().NoError(err)
		s.Equal(models.MustDate("2020-01-01"), result.Version.ValidUntil)
	})

	s.Run("adjacent bounded version before the timeline is accepted", func() {
		result, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2016-01-01", "2018-01-01", "0301"))
		s.Require().NoError(err)
		s.Equal(models.MustDate("2018-01-01"), result.Version.ValidUntil)
	})
}

// =============================================================================
// Version Edit Tests
// =============================================================================

func (s *SubsetServiceSuite) TestUpdateVersionDraft() {
	ctx := context.Background()
	s.createSeries("kommuner")
	_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2020-01-01", "", "0301"))
	s.Require().NoError(err)

	s.Run("draft content is freely replaced", func() {
		result, err := s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("DRAFT", "2021-06-01", "2022-01-01", "1103"))
		s.Require().NoError(err)
		s.Equal(models.MustDate("2021-06-01"), result.Version.ValidFrom)
		s.Require().Len(result.Version.Codes, 1)
		s.Equal("1103", result.Version.Codes[0].Code)
		s.Equal("Stavanger (nb)", models.TextFor(result.Version.Codes[0].Name, "nb"))
	})

	s.Run("identity fields survive the replacement", func() {
		stored, err := s.service.GetVersion(ctx, "kommuner", "1", "")
		s.Require().NoError(err)
		s.Equal("ada", stored.CreatedBy)
		s.Equal(models.DateOf(fixedNow), stored.CreatedDate)
		s.Equal("1", stored.VersionID)
	})

	s.Run("promoting a draft with an empty code list is rejected", func() {
		_, err := s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("OPEN", "2021-06-01", ""))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("promoting a draft publishes it", func() {
		result, err := s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("OPEN", "2021-06-01", "", "1103"))
		s.Require().NoError(err)
		s.Equal(models.StatusOpen, result.Version.AdministrativeStatus)
		s.True(result.Version.ValidUntil.IsZero())
	})

	s.Run("unknown version is not found", func() {
		_, err := s.service.UpdateVersion(ctx, "kommuner", "42", versionDoc("DRAFT", "2020-01-01", ""))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *SubsetServiceSuite) TestUpdateVersionPublished() {
	ctx := context.Background()
	s.createSeries("kommuner")
	_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2020-01-01", "", "0301"))
	s.Require().NoError(err)

	s.Run("status cannot regress to draft", func() {
		_, err := s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("DRAFT", "2020-01-01", "", "0301"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("validFrom is immutable", func() {
		_, err := s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("OPEN", "2020-02-01", "", "0301"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("codes are immutable", func() {
		_, err := s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("OPEN", "2020-01-01", "", "1103"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("resubmitting the original stubs counts as unchanged", func() {
		// Clients edit by round-tripping the document they first submitted,
		// so the unenriched stubs must match the stored enriched codes.
		result, err := s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("OPEN", "2020-01-01", "2024-06-01", "0301"))
		s.Require().NoError(err)
		s.Equal(models.MustDate("2024-06-01"), result.Version.ValidUntil)
		s.Require().Len(result.Version.Codes, 1)
		s.Equal("Oslo (nb)", models.TextFor(result.Version.Codes[0].Name, "nb"), "stored enrichment survives the edit")
	})

	s.Run("an omitted code list counts as unchanged", func() {
		result, err := s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("OPEN", "2020-01-01", "2024-01-01"))
		s.Require().NoError(err)
		s.Equal(models.MustDate("2024-01-01"), result.Version.ValidUntil)
		s.Require().Len(result.Version.Codes, 1)
		s.Equal("0301", result.Version.Codes[0].Code)
	})

	s.Run("statistical units union on edit", func() {
		doc := versionDoc("OPEN", "2020-01-01", "2024-01-01")
		doc["statisticalUnits"] = []any{"Fylke"}
		result, err := s.service.UpdateVersion(ctx, "kommuner", "1", doc)
		s.Require().NoError(err)
		s.Equal([]string{"Kommune", "Fylke"}, result.Version.StatisticalUnits)
	})

	s.Run("moving validUntil onto a sibling is rejected", func() {
		_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2024-01-01", "", "1103"))
		s.Require().NoError(err)

		_, err = s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("OPEN", "2020-01-01", "2025-01-01"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("shrinking validUntil away from siblings is allowed", func() {
		result, err := s.service.UpdateVersion(ctx, "kommuner", "1", versionDoc("OPEN", "2020-01-01", "2023-01-01"))
		s.Require().NoError(err)
		s.Equal(models.MustDate("2023-01-01"), result.Version.ValidUntil)
	})
}

// =============================================================================
// Version Deletion Tests
// =============================================================================

func (s *SubsetServiceSuite) TestDeleteVersion() {
	ctx := context.Background()
	s.createSeries("kommuner")

	s.Run("drafts can be deleted", func() {
		_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2020-01-01", "", "0301"))
		s.Require().NoError(err)

		s.Require().NoError(s.service.DeleteVersion(ctx, "kommuner", "1"))

		_, err = s.service.GetVersion(ctx, "kommuner", "1", "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		series, err := s.service.GetSeries(ctx, "kommuner", "")
		s.Require().NoError(err)
		s.False(series.HasVersion("kommuner_1"))
	})

	s.Run("a deleted version's id is never reused", func() {
		result, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2020-01-01", "", "0301"))
		s.Require().NoError(err)
		s.Equal("2", result.Version.VersionID)
	})

	s.Run("published versions cannot be deleted", func() {
		_, err := s.service.UpdateVersion(ctx, "kommuner", "2", versionDoc("OPEN", "2020-01-01", "", "0301"))
		s.Require().NoError(err)

		err = s.service.DeleteVersion(ctx, "kommuner", "2")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown version is not found", func() {
		err := s.service.DeleteVersion(ctx, "kommuner", "42")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Version Listing Tests
// =============================================================================

func (s *SubsetServiceSuite) TestListVersions() {
	ctx := context.Background()
	s.createSeries("kommuner")
	_, err := s.service.CreateVersion(ctx, "kommuner", versionDoc("OPEN", "2020-01-01", "", "0301"))
	s.Require().NoError(err)
	_, err = s.service.CreateVersion(ctx, "kommuner", versionDoc("DRAFT", "2025-01-01", "", "1103"))
	s.Require().NoError(err)

	s.Run("drafts are hidden by default", func() {
		versions, err := s.service.ListVersions(ctx, "kommuner", false, "")
		s.Require().NoError(err)
		s.Require().Len(versions, 1)
		s.Equal(models.StatusOpen, versions[0].AdministrativeStatus)
	})

	s.Run("drafts appear on request", func() {
		versions, err := s.service.ListVersions(ctx, "kommuner", true, "")
		s.Require().NoError(err)
		s.Len(versions, 2)
	})

	s.Run("language projection filters code names", func() {
		versions, err := s.service.ListVersions(ctx, "kommuner", false, "en")
		s.Require().NoError(err)
		s.Require().Len(versions, 1)
		s.Require().Len(versions[0].Codes, 1)
		s.Equal([]models.MultilingualText{{LanguageCode: "en", LanguageText: "Oslo (en)"}}, versions[0].Codes[0].Name)
	})
}
