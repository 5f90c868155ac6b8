package store

import (
	"embed"
	"encoding/json"
	"fmt"

	"subsets/internal/subset/models"
)

//go:embed definitions/*.json
var definitionFS embed.FS

// loadDefinition reads one embedded definition document. The memory and
// relational backends serve definitions from the binary; the LDS backend
// fetches them from the store, which owns its own schema.
func loadDefinition(name string) (*models.Definition, error) {
	raw, err := definitionFS.ReadFile("definitions/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("read %s definition: %w", name, err)
	}
	var def models.Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decode %s definition: %w", name, err)
	}
	return &def, nil
}
