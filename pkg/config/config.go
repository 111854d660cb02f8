// Package config defines the engine-wide configuration struct, loadable
// either by constructing it directly or from a TOML document via
// github.com/BurntSushi/toml, the way this codebase's CLI-tool sibling
// projects load their settings.
package config

import "github.com/BurntSushi/toml"

// SortAlgorithm selects how RepositoryCore sorts a Selection.
type SortAlgorithm string

const (
	SortAuto       SortAlgorithm = "AUTO"
	SortInsertion  SortAlgorithm = "INSERTION"
	SortComparison SortAlgorithm = "COMPARISON"
	SortParallel   SortAlgorithm = "PARALLEL"
)

// Config holds every tunable the engine recognizes.
type Config struct {
	SortAlgorithm         SortAlgorithm `toml:"sort_algorithm"`
	ParallelSortEnabled   bool          `toml:"parallel_sort_enabled"`
	ParallelSortThreshold int           `toml:"parallel_sort_threshold"`
	PageSize              int           `toml:"page_size"`
	MaxPages              int           `toml:"max_pages"`
}

// Default returns the engine's built-in configuration: automatic sort
// selection, parallel sort enabled past 1000 rows, 1024-row pages, and
// MaxPages 1024. MaxPages is carried in the config only; the column
// store does not cap the number of pages a column grows to.
func Default() *Config {
	return &Config{
		SortAlgorithm:         SortAuto,
		ParallelSortEnabled:   true,
		ParallelSortThreshold: 1000,
		PageSize:              1024,
		MaxPages:              1024,
	}
}

// LoadTOML decodes a TOML document into a Config seeded with defaults,
// so a partial file only overrides the fields it mentions.
func LoadTOML(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOMLFile reads and decodes path the same way LoadTOML does.
func LoadTOMLFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
