package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "subsets/pkg/domain-errors"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple id", input: "kommuner"},
		{name: "digits and separators", input: "urban_settlements-2020"},
		{name: "numeric version id", input: "1"},
		{name: "empty", input: "", wantErr: true},
		{name: "space", input: "two words", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "path traversal", input: "../etc", wantErr: true},
		{name: "unicode", input: "kommuneræ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.input, id)
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"DRAFT", "OPEN"} {
		status, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, Status(valid), status)
	}
	for _, invalid := range []string{"", "draft", "open", "PUBLISHED"} {
		_, err := ParseStatus(invalid)
		assert.Error(t, err, "status %q", invalid)
	}
}

func TestDate(t *testing.T) {
	t.Run("round trips through JSON", func(t *testing.T) {
		d := MustDate("2020-01-01")
		raw, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2020-01-01"`, string(raw))

		var back Date
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.True(t, d.Equal(back))
	})

	t.Run("absent date marshals as null", func(t *testing.T) {
		raw, err := json.Marshal(Date{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(raw))

		var back Date
		require.NoError(t, json.Unmarshal([]byte("null"), &back))
		assert.True(t, back.IsZero())
	})

	t.Run("empty string parses to absent", func(t *testing.T) {
		d, err := ParseDate("")
		require.NoError(t, err)
		assert.True(t, d.IsZero())
	})

	t.Run("malformed input is a bad request", func(t *testing.T) {
		_, err := ParseDate("01.01.2020")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestSetText(t *testing.T) {
	var list []MultilingualText

	list = SetText(list, "nb", "Oslo")
	list = SetText(list, "en", "Oslo")
	require.Len(t, list, 2)

	list = SetText(list, "nb", "Kristiania")
	require.Len(t, list, 2)
	assert.Equal(t, "Kristiania", TextFor(list, "nb"))
	assert.Equal(t, "Oslo", TextFor(list, "en"))
}

func TestFilterLanguage(t *testing.T) {
	list := []MultilingualText{
		{LanguageCode: "nb", LanguageText: "Kommuner"},
		{LanguageCode: "en", LanguageText: "Municipalities"},
	}

	assert.Equal(t, list, FilterLanguage(list, ""))
	assert.Equal(t, []MultilingualText{{LanguageCode: "en", LanguageText: "Municipalities"}}, FilterLanguage(list, "en"))
	assert.Nil(t, FilterLanguage(list, "nn"))
}

func TestVersionCovers(t *testing.T) {
	bounded := &Version{ValidFrom: MustDate("2020-01-01"), ValidUntil: MustDate("2022-01-01")}
	open := &Version{ValidFrom: MustDate("2022-01-01")}

	assert.False(t, bounded.Covers(MustDate("2019-12-31")))
	assert.True(t, bounded.Covers(MustDate("2020-01-01")))
	assert.True(t, bounded.Covers(MustDate("2021-12-31")))
	assert.False(t, bounded.Covers(MustDate("2022-01-01")), "interval end is exclusive")

	assert.True(t, open.Covers(MustDate("2022-01-01")))
	assert.True(t, open.Covers(MustDate("2099-01-01")))
}

func TestVersionIntersects(t *testing.T) {
	bounded := &Version{ValidFrom: MustDate("2020-01-01"), ValidUntil: MustDate("2022-01-01")}
	open := &Version{ValidFrom: MustDate("2022-01-01")}

	assert.True(t, bounded.Intersects(MustDate("2021-01-01"), MustDate("2023-01-01")))
	assert.False(t, bounded.Intersects(MustDate("2022-01-01"), MustDate("2023-01-01")), "adjacent is disjoint")
	assert.False(t, bounded.Intersects(MustDate("2019-01-01"), MustDate("2020-01-01")), "adjacent is disjoint")
	assert.True(t, bounded.Intersects(Date{}, Date{}), "open bounds cover everything")
	assert.True(t, open.Intersects(MustDate("2030-01-01"), Date{}))
	assert.False(t, open.Intersects(MustDate("2020-01-01"), MustDate("2022-01-01")))
}

func TestSameCodes(t *testing.T) {
	a := []SubsetCode{{ClassificationID: "131", Code: "0301", Level: 1}}

	assert.True(t, SameCodes(a, []SubsetCode{{ClassificationID: "131", Code: "0301", Level: 1}}))
	assert.True(t, SameCodes(a, []SubsetCode{{
		ClassificationID: "131", Code: "0301", Level: 1,
		Name: []MultilingualText{{LanguageCode: "nb", LanguageText: "Oslo"}},
	}}), "enrichment output does not affect identity")
	assert.True(t, SameCodes(a, []SubsetCode{{ClassificationID: "131", Code: "0301"}}),
		"unenriched stubs match their enriched counterparts")
	assert.False(t, SameCodes(a, []SubsetCode{{ClassificationID: "131", Code: "1103", Level: 1}}))
	assert.False(t, SameCodes(a, nil))
}
