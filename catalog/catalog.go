// Package catalog serves the static item list the frontend uses for
// autocomplete. The data ships inside the binary and never changes at
// runtime.
package catalog

import (
	_ "embed"
	"encoding/json"

	"github.com/bazaarhq/bazaar-server/models"
)

//go:embed items.json
var rawItems []byte

// Load parses the embedded item catalog.
func Load() ([]models.CatalogItem, error) {
	items := make([]models.CatalogItem, 0)
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return nil, err
	}
	return items, nil
}
