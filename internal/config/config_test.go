package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampAgeDays_KeepsValuesInRange(t *testing.T) {
	assert.Equal(t, 365, ClampAgeDays(365))
	assert.Equal(t, MinOldFileDays, ClampAgeDays(MinOldFileDays))
	assert.Equal(t, MaxOldFileDays, ClampAgeDays(MaxOldFileDays))
}

func TestClampAgeDays_RaisesLowValues(t *testing.T) {
	assert.Equal(t, MinOldFileDays, ClampAgeDays(5))
	assert.Equal(t, MinOldFileDays, ClampAgeDays(0))
	assert.Equal(t, MinOldFileDays, ClampAgeDays(-100))
}

func TestClampAgeDays_LowersHugeValues(t *testing.T) {
	assert.Equal(t, MaxOldFileDays, ClampAgeDays(10000))
	assert.Equal(t, MaxOldFileDays, ClampAgeDays(1<<30))
}

func TestLoadEmbedded_ParsesCatalogAndThresholds(t *testing.T) {
	cfg, err := LoadEmbedded()

	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Catalog)
	assert.Equal(t, int64(DefaultLargeFileBytes), cfg.Thresholds.LargeFileBytes)
	assert.Equal(t, DefaultScanBatchSize, cfg.Thresholds.ScanBatchSize)

	for _, entry := range cfg.Catalog {
		assert.NotEmpty(t, entry.ID)
		assert.NotEmpty(t, entry.Paths, entry.ID)
	}
}

func TestLoad_ClampsUserThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("thresholds:\n  old_file_days: 3\n  scan_batch_size: 0\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, MinOldFileDays, cfg.Thresholds.OldFileDays)
	assert.Equal(t, DefaultScanBatchSize, cfg.Thresholds.ScanBatchSize)
}

func TestLoad_FailsOnMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")

	assert.Error(t, err)
}

func TestDefaultThresholds_MatchDocumentedValues(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, int64(100*1000*1000), th.LargeFileBytes)
	assert.Equal(t, 365, th.OldFileDays)
	assert.Equal(t, int64(1<<20), th.DuplicateMinBytes)
	assert.Equal(t, 1000, th.ScanBatchSize)
}
