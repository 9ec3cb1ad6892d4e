// Package config holds the tunable thresholds and the catalog of well-known
// third-party cache locations consumed by the scanner.
package config

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"
)

// Threshold defaults and documented clamp bounds.
const (
	DefaultLargeFileBytes = 100 * 1000 * 1000 // 100 MB
	DefaultOldFileDays    = 365
	DefaultDuplicateMin   = 1 << 20 // 1 MiB
	DefaultScanBatchSize  = 1000
	MinOldFileDays        = 30
	MaxOldFileDays        = 1095
)

// Thresholds are the knobs classification and scanning run with.
type Thresholds struct {
	LargeFileBytes    int64 `yaml:"large_file_bytes"`
	OldFileDays       int   `yaml:"old_file_days"`
	DuplicateMinBytes int64 `yaml:"duplicate_min_bytes"`
	ScanBatchSize     int   `yaml:"scan_batch_size"`
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LargeFileBytes:    DefaultLargeFileBytes,
		OldFileDays:       DefaultOldFileDays,
		DuplicateMinBytes: DefaultDuplicateMin,
		ScanBatchSize:     DefaultScanBatchSize,
	}
}

// ClampAgeDays clamps an old-file age threshold to the supported range.
// Out-of-range input (including negative or huge values) is pulled back to
// the nearest bound rather than rejected.
func ClampAgeDays(days int) int {
	if days < MinOldFileDays {
		return MinOldFileDays
	}
	if days > MaxOldFileDays {
		return MaxOldFileDays
	}
	return days
}

// CatalogEntry is one well-known third-party cache location. Paths may
// contain glob wildcards for versioned directories.
type CatalogEntry struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Paths []string `yaml:"paths"`
}

// Config is the full engine configuration.
type Config struct {
	Thresholds Thresholds     `yaml:"thresholds"`
	Catalog    []CatalogEntry `yaml:"catalog"`
}

//go:embed catalog.yaml
var embedded []byte

// LoadEmbedded loads the configuration shipped with the binary.
func LoadEmbedded() (*Config, error) {
	return parse(embedded)
}

// Load loads configuration from a user-supplied file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := Config{Thresholds: DefaultThresholds()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Thresholds.ScanBatchSize <= 0 {
		cfg.Thresholds.ScanBatchSize = DefaultScanBatchSize
	}
	cfg.Thresholds.OldFileDays = ClampAgeDays(cfg.Thresholds.OldFileDays)
	return &cfg, nil
}
