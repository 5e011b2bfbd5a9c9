package processors

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/username/folioletter/src/logger"
)

// UnclassifiedFactor is the catch-all bucket for symbols absent from every
// configured factor list.
const UnclassifiedFactor = "Unclassified"

// FactorGroup is one thematic classification bucket. Order within the config
// matters: a symbol belongs to the first group that lists it.
type FactorGroup struct {
	Name    string   `yaml:"name"`
	Symbols []string `yaml:"symbols"`
}

// AdvisoryThresholds are the tunables for the portfolio-health rule list.
type AdvisoryThresholds struct {
	MinPositions          int     `yaml:"min_positions"`
	ValueConcentration    float64 `yaml:"value_concentration"`
	QuantityConcentration float64 `yaml:"quantity_concentration"`
	BalanceFactor         string  `yaml:"balance_factor"`
	BalanceShare          float64 `yaml:"balance_share"`
}

// FactorConfig is the injectable classification artifact: factor lists, the
// cash-equivalent concentration exemptions and the advisory thresholds.
type FactorConfig struct {
	Factors    []FactorGroup      `yaml:"factors"`
	CashExempt []string           `yaml:"cash_exempt"`
	Thresholds AdvisoryThresholds `yaml:"thresholds"`
}

// DefaultFactorConfig returns the compiled-in classification table, used when
// no YAML artifact is configured.
func DefaultFactorConfig() *FactorConfig {
	return &FactorConfig{
		Factors: []FactorGroup{
			{Name: "Growth/Tech", Symbols: []string{
				"NVDA", "QQQ", "ARKK", "SOFI", "HOOD", "NET", "ZETA", "ONTO", "AMZN",
				"GOOG", "MSFT", "AAPL", "TSM", "NBIS", "OSCR", "PYPL", "JD", "BABA",
				"BIDU", "REGN",
			}},
			{Name: "Market/Core", Symbols: []string{"VOO", "SPY", "BRKB", "VUG"}},
			{Name: "Income/Yield", Symbols: []string{"JEPI", "JEPQ", "TLT", "EPD", "ET", "MPLX", "DKL", "PALL"}},
			{Name: "Defensive", Symbols: []string{"COST", "UPS", "UNH"}},
			{Name: "Cash/Equivalents", Symbols: []string{"SPAXX", "FDRXX"}},
		},
		CashExempt: []string{"SPAXX", "FDRXX"},
		Thresholds: AdvisoryThresholds{
			MinPositions:          5,
			ValueConcentration:    0.15,
			QuantityConcentration: 0.20,
			BalanceFactor:         "Growth/Tech",
			BalanceShare:          0.50,
		},
	}
}

// LoadFactorConfig reads the YAML classification artifact at path. A missing
// file falls back to the compiled-in defaults; a present but unparseable file
// is a startup error.
func LoadFactorConfig(path string) (*FactorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.L.Warn("Factor config not found, using compiled-in defaults", "path", path)
			return DefaultFactorConfig(), nil
		}
		return nil, fmt.Errorf("failed to read factor config: %w", err)
	}

	var cfg FactorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse factor config: %w", err)
	}

	defaults := DefaultFactorConfig()
	if len(cfg.Factors) == 0 {
		cfg.Factors = defaults.Factors
	}
	if cfg.CashExempt == nil {
		cfg.CashExempt = defaults.CashExempt
	}
	if cfg.Thresholds.MinPositions == 0 {
		cfg.Thresholds.MinPositions = defaults.Thresholds.MinPositions
	}
	if cfg.Thresholds.ValueConcentration == 0 {
		cfg.Thresholds.ValueConcentration = defaults.Thresholds.ValueConcentration
	}
	if cfg.Thresholds.QuantityConcentration == 0 {
		cfg.Thresholds.QuantityConcentration = defaults.Thresholds.QuantityConcentration
	}
	if cfg.Thresholds.BalanceFactor == "" {
		cfg.Thresholds.BalanceFactor = defaults.Thresholds.BalanceFactor
	}
	if cfg.Thresholds.BalanceShare == 0 {
		cfg.Thresholds.BalanceShare = defaults.Thresholds.BalanceShare
	}
	return &cfg, nil
}
