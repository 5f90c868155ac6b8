// Package models holds the subset domain model: series, versions, codes, and
// the parse-time primitives (identifiers, dates, statuses) that enforce
// validity at trust boundaries.
package models

import (
	"regexp"
	"time"

	dErrors "subsets/pkg/domain-errors"
)

// cleanID is the only shape identifiers may take. It keeps ids safe for use
// in URLs and as document keys across both storage backends.
var cleanID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ParseID validates a series or version identifier.
func ParseID(s string) (string, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "id must not be empty")
	}
	if !cleanID.MatchString(s) {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "id %q may only contain letters, digits, '-' and '_'", s)
	}
	return s, nil
}

// Status is a version's administrative status.
type Status string

const (
	// StatusDraft marks an unpublished, freely editable version.
	StatusDraft Status = "DRAFT"
	// StatusOpen marks a published version: interval-constrained against its
	// siblings and immutable except for a small set of fields.
	StatusOpen Status = "OPEN"
)

// ParseStatus validates an administrative status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusOpen:
		return Status(s), nil
	default:
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown administrative status %q", s)
	}
}

// SupportedLanguages is the fixed language set resolved during enrichment.
var SupportedLanguages = []string{"nb", "nn", "en"}

// MultilingualText is one language's rendering of a name or note.
type MultilingualText struct {
	LanguageCode string `json:"languageCode"`
	LanguageText string `json:"languageText"`
}

// SetText replaces or appends the entry for lang, keeping one entry per
// language and preserving insertion order.
func SetText(list []MultilingualText, lang, text string) []MultilingualText {
	for i := range list {
		if list[i].LanguageCode == lang {
			list[i].LanguageText = text
			return list
		}
	}
	return append(list, MultilingualText{LanguageCode: lang, LanguageText: text})
}

// TextFor returns the text for lang, or the first entry as a fallback.
func TextFor(list []MultilingualText, lang string) string {
	for _, t := range list {
		if t.LanguageCode == lang {
			return t.LanguageText
		}
	}
	if len(list) > 0 {
		return list[0].LanguageText
	}
	return ""
}

// FilterLanguage reduces a multilingual list to the single entry for lang.
// Read-side projection only; it never touches stored documents.
func FilterLanguage(list []MultilingualText, lang string) []MultilingualText {
	if lang == "" {
		return list
	}
	for _, t := range list {
		if t.LanguageCode == lang {
			return []MultilingualText{t}
		}
	}
	return nil
}

// Series is a named, long-lived container for successive time-bounded
// versions of a classification subset.
type Series struct {
	ID               string             `json:"id"`
	Name             []MultilingualText `json:"name,omitempty"`
	Description      []MultilingualText `json:"description,omitempty"`
	CreatedDate      Date               `json:"createdDate"`
	LastModified     time.Time          `json:"lastModified"`
	LastUpdatedBy    string             `json:"lastUpdatedBy,omitempty"`
	StatisticalUnits []string           `json:"statisticalUnits,omitempty"`
	Versions         []string           `json:"versions,omitempty"`
}

// HasVersion reports whether the series links the given version UID.
func (s *Series) HasVersion(uid string) bool {
	for _, v := range s.Versions {
		if v == uid {
			return true
		}
	}
	return false
}

// Version is one immutable-once-published snapshot of a subset's code list,
// valid over a half-open date interval [ValidFrom, ValidUntil).
type Version struct {
	VersionID            string       `json:"versionId"`
	SeriesID             string       `json:"seriesId"`
	AdministrativeStatus Status       `json:"administrativeStatus"`
	ValidFrom            Date         `json:"validFrom"`
	ValidUntil           Date         `json:"validUntil,omitempty"`
	Codes                []SubsetCode `json:"codes,omitempty"`
	StatisticalUnits     []string     `json:"statisticalUnits,omitempty"`
	CreatedDate          Date         `json:"createdDate"`
	CreatedBy            string       `json:"createdBy,omitempty"`
	LastModified         time.Time    `json:"lastModified"`
	LastUpdatedBy        string       `json:"lastUpdatedBy,omitempty"`
}

// UID is the globally unique version key: seriesId + "_" + versionId.
func (v *Version) UID() string {
	return v.SeriesID + "_" + v.VersionID
}

// IsOpen reports whether the version is published.
func (v *Version) IsOpen() bool {
	return v.AdministrativeStatus == StatusOpen
}

// Covers reports whether date falls inside [ValidFrom, ValidUntil).
// An absent ValidUntil reads as +infinity.
func (v *Version) Covers(date Date) bool {
	if date.Before(v.ValidFrom) {
		return false
	}
	return v.ValidUntil.IsZero() || date.Before(v.ValidUntil)
}

// Intersects reports whether the version's interval intersects [from, to).
// Absent bounds read as open ends on either side.
func (v *Version) Intersects(from, to Date) bool {
	if !to.IsZero() && !v.ValidFrom.Before(to) {
		return false
	}
	if !from.IsZero() && !v.ValidUntil.IsZero() && !from.Before(v.ValidUntil) {
		return false
	}
	return true
}

// SubsetCode is one code drawn from an external reference classification,
// enriched with the names and notes resolved from that source.
type SubsetCode struct {
	ClassificationID       string             `json:"classificationId"`
	Code                   string             `json:"code"`
	Name                   []MultilingualText `json:"name,omitempty"`
	Notes                  []MultilingualText `json:"notes,omitempty"`
	Level                  int                `json:"level,omitempty"`
	ClassificationVersions []string           `json:"classificationVersions,omitempty"`
	ValidFromInRange       Date               `json:"validFromInRequestedRange,omitempty"`
	ValidToInRange         Date               `json:"validToInRequestedRange,omitempty"`
}

// SameCodes reports whether two code lists name the same codes in the same
// order. Only identity fields count: enrichment output (names, notes, level,
// version references) is derived data, and comparing it would reject edits
// that submit the unenriched stubs a client originally sent.
func SameCodes(a, b []SubsetCode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ClassificationID != b[i].ClassificationID ||
			a[i].Code != b[i].Code {
			return false
		}
	}
	return true
}

// Definition is a stored schema document: the reconciler strips submitted
// documents down to the fields a definition names.
type Definition struct {
	Properties map[string]DefinitionProperty `json:"properties"`
}

// DefinitionProperty describes one field of a definition. Items is set for
// array fields whose elements have their own definition (the codes list).
type DefinitionProperty struct {
	Type  string      `json:"type,omitempty"`
	Items *Definition `json:"items,omitempty"`
}
