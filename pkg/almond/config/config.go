// Package config loads the tokenizer server configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Server holds the listener settings.
type Server struct {
	// Addr is the TCP address the JSON-lines protocol listens on.
	Addr string `yaml:"addr"`
	// AdminAddr is the HTTP admin address; empty disables the admin endpoint.
	AdminAddr string `yaml:"admin_addr"`
	// MaxConnections bounds concurrently served TCP clients.
	MaxConnections int `yaml:"max_connections"`
	// Workers sets the per-connection request worker count.
	Workers int `yaml:"workers"`
}

// Lexicon holds the remote lookup endpoints.
type Lexicon struct {
	// LocationURL is the geocoding endpoint (Nominatim-compatible).
	LocationURL string `yaml:"location_url"`
	// LocationAPIKey is sent as the "key" query parameter when set.
	LocationAPIKey string `yaml:"location_api_key"`
	// LocationRatePerSec throttles geocoding requests; 0 disables throttling.
	LocationRatePerSec float64 `yaml:"location_rate_per_sec"`
	// EntityURL is the entity lookup endpoint.
	EntityURL string `yaml:"entity_url"`
	// SnapshotDB is an optional local sqlite entity snapshot consulted
	// instead of EntityURL when set.
	SnapshotDB string `yaml:"snapshot_db"`
	// CacheSize is the per-language LRU size for lookup results.
	CacheSize int `yaml:"cache_size"`
}

// Engine holds the normalization heuristics.
type Engine struct {
	ApplyHeuristics     bool `yaml:"apply_heuristics"`
	LiteralTwoHeuristic bool `yaml:"literal_two_heuristic"`
	// PresentRefNow makes the PRESENT_REF date literal resolve to the
	// current instant instead of being rejected.
	PresentRefNow bool `yaml:"present_ref_now"`

	MissingTokenPenalty float64 `yaml:"missing_token_penalty"`
	DomainContextBonus  float64 `yaml:"domain_context_bonus"`

	LocationDenylist []string `yaml:"location_denylist"`
	EntityDenylist   []string `yaml:"entity_denylist"`

	// EntityOverrides pins colloquial names to entities, replacing the
	// built-in table when non-empty. Keyed by the lowercase mention.
	EntityOverrides map[string]EntityOverride `yaml:"entity_overrides"`

	// RegexpPatternFile points at a tab-separated "TAG<TAB>pattern" file
	// for the regexp annotator; empty disables it.
	RegexpPatternFile string `yaml:"regexp_pattern_file"`
}

// EntityOverride is one pinned entity resolution.
type EntityOverride struct {
	Type      string `yaml:"type"`
	ID        string `yaml:"id"`
	Display   string `yaml:"display"`
	Canonical string `yaml:"canonical"`
}

// Config is the root configuration document.
type Config struct {
	Server  Server  `yaml:"server"`
	Lexicon Lexicon `yaml:"lexicon"`
	Engine  Engine  `yaml:"engine"`
	// Languages lists the language tags the server accepts; requests for
	// other tags fall back to the first entry.
	Languages []string `yaml:"languages"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:           "127.0.0.1:8888",
			MaxConnections: 128,
			Workers:        4,
		},
		Lexicon: Lexicon{
			LocationURL: "https://nominatim.openstreetmap.org/search",
			EntityURL:   "https://thingpedia.stanford.edu/thingpedia/api/entities/lookup",
			CacheSize:   256,
		},
		Engine: Engine{
			ApplyHeuristics:     true,
			LiteralTwoHeuristic: true,
		},
		Languages: []string{"en"},
	}
}

// Load reads a YAML file over the defaults, so partial files work.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"en"}
	}
	return cfg, nil
}
