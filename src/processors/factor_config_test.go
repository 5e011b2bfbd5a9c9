package processors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/folioletter/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestLoadFactorConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFactorConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultFactorConfig(), cfg)
}

func TestShippedFactorConfigMatchesDefaults(t *testing.T) {
	cfg, err := LoadFactorConfig(filepath.Join("..", "..", "config", "factors.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultFactorConfig(), cfg, "the shipped artifact must mirror the compiled-in table")
}

func TestLoadFactorConfigUnparseableFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("factors: [unclosed"), 0o600))

	_, err := LoadFactorConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse factor config")
}

func TestLoadFactorConfigOverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factors.yaml")
	content := `
factors:
  - name: Crypto
    symbols: [COIN, MSTR]
thresholds:
  min_positions: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFactorConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Factors, 1)
	assert.Equal(t, "Crypto", cfg.Factors[0].Name)
	assert.Equal(t, 8, cfg.Thresholds.MinPositions)

	defaults := DefaultFactorConfig()
	assert.Equal(t, defaults.CashExempt, cfg.CashExempt, "omitted sections fall back to defaults")
	assert.Equal(t, defaults.Thresholds.ValueConcentration, cfg.Thresholds.ValueConcentration)
	assert.Equal(t, defaults.Thresholds.BalanceFactor, cfg.Thresholds.BalanceFactor)
}
