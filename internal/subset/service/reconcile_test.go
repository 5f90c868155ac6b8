package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"subsets/internal/subset/models"
)

func codeListDef() *models.Definition {
	return &models.Definition{
		Properties: map[string]models.DefinitionProperty{
			"validFrom": {Type: "string"},
			"codes": {
				Type: "array",
				Items: &models.Definition{
					Properties: map[string]models.DefinitionProperty{
						"classificationId": {Type: "string"},
						"code":             {Type: "string"},
					},
				},
			},
		},
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name     string
		doc      map[string]any
		def      *models.Definition
		expected map[string]any
	}{
		{
			name:     "nil document passes through",
			doc:      nil,
			def:      codeListDef(),
			expected: nil,
		},
		{
			name:     "nil definition passes through",
			doc:      map[string]any{"anything": 1},
			def:      nil,
			expected: map[string]any{"anything": 1},
		},
		{
			name:     "unknown top level fields are dropped",
			doc:      map[string]any{"validFrom": "2020-01-01", "shoeSize": 47},
			def:      codeListDef(),
			expected: map[string]any{"validFrom": "2020-01-01"},
		},
		{
			name: "code elements are stripped against the item definition",
			doc: map[string]any{
				"codes": []any{
					map[string]any{"classificationId": "131", "code": "0301", "rank": 1},
				},
			},
			def: codeListDef(),
			expected: map[string]any{
				"codes": []any{
					map[string]any{"classificationId": "131", "code": "0301"},
				},
			},
		},
		{
			name: "non map code elements pass through untouched",
			doc: map[string]any{
				"codes": []any{"0301"},
			},
			def: codeListDef(),
			expected: map[string]any{
				"codes": []any{"0301"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Strip(tt.doc, tt.def)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestStripIsIdempotent(t *testing.T) {
	doc := map[string]any{
		"validFrom": "2020-01-01",
		"shoeSize":  47,
		"codes": []any{
			map[string]any{"classificationId": "131", "code": "0301", "rank": 1},
		},
	}
	def := codeListDef()

	once := Strip(doc, def)
	twice := Strip(once, def)
	assert.Equal(t, once, twice)
}

func TestStripDoesNotMutateInput(t *testing.T) {
	doc := map[string]any{
		"validFrom": "2020-01-01",
		"shoeSize":  47,
		"codes": []any{
			map[string]any{"classificationId": "131", "code": "0301", "rank": 1},
		},
	}

	_ = Strip(doc, codeListDef())

	assert.Contains(t, doc, "shoeSize")
	assert.Contains(t, doc["codes"].([]any)[0], "rank")
}
