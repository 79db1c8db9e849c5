package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matst80/slask-storefront/pkg/types"
)

// LoadBaseline reads the local baseline catalog from a json file of raw
// product records. Records that fail normalization are skipped, not fatal.
func LoadBaseline(path string) ([]types.Product, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw := []types.RawProduct{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("baseline %s: %w", path, err)
	}
	return types.NormalizeAll(raw), nil
}
