package service

import (
	"subsets/internal/subset/models"
)

// Strip returns a copy of doc containing only the top-level fields named by
// the definition. When the definition's codes property describes an array
// with its own item definition, each element of doc's codes list is stripped
// against it recursively. Pure: the input document is never mutated.
//
// Stripping is idempotent: strip(strip(doc)) == strip(doc).
func Strip(doc map[string]any, def *models.Definition) map[string]any {
	if doc == nil || def == nil || def.Properties == nil {
		return doc
	}

	out := make(map[string]any, len(doc))
	for field, value := range doc {
		prop, ok := def.Properties[field]
		if !ok {
			continue
		}
		if field == "codes" && prop.Items != nil {
			out[field] = stripCodes(value, prop.Items)
			continue
		}
		out[field] = value
	}
	return out
}

func stripCodes(value any, codeDef *models.Definition) any {
	list, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]any, len(list))
	for i, element := range list {
		if code, ok := element.(map[string]any); ok {
			out[i] = Strip(code, codeDef)
		} else {
			out[i] = element
		}
	}
	return out
}
