package catalog

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	apperrors "github.com/louisbranch/les-coureurs/internal/platform/errors"
	"github.com/louisbranch/les-coureurs/internal/platform/validation"
)

// Load reads a TOML catalog from path. An empty path yields Default().
// Sections the file leaves out fall back to the built-in records.
//
//	[[missions]]
//	id = "salt-barge"
//	status = "available"
//	...
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}

// Decode parses and validates TOML catalog data.
func Decode(data []byte) (*Catalog, error) {
	var parsed Catalog
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidCatalog, fmt.Sprintf("decode catalog: %v", err), err)
	}

	defaults := Default()
	if parsed.Missions == nil {
		parsed.Missions = defaults.Missions
	}
	if parsed.Inventory == nil {
		parsed.Inventory = defaults.Inventory
	}
	if parsed.Travel == nil {
		parsed.Travel = defaults.Travel
	}

	if err := validation.StructCode(&parsed, apperrors.CodeInvalidCatalog); err != nil {
		return nil, err
	}
	return &parsed, nil
}
