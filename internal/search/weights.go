// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/scholaros/search-service/pkg/types"
)

// LoadWeights returns the ranking weights, optionally overridden from a
// YAML file. Keys absent from the file keep their default values; an
// empty path returns the defaults unchanged.
func LoadWeights(path string) (types.RankingWeights, error) {
	w := types.DefaultRankingWeights()
	if path == "" {
		return w, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("reading weights file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("parsing weights file %s: %w", path, err)
	}
	return w, nil
}
