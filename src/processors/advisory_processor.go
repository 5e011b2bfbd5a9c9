package processors

import (
	"fmt"

	"github.com/username/folioletter/src/models"
)

// advisoryProcessorImpl implements the AdvisoryProcessor interface.
type advisoryProcessorImpl struct {
	thresholds AdvisoryThresholds
	cashExempt map[string]bool
}

// NewAdvisoryProcessor creates an AdvisoryProcessor using the thresholds and
// cash-equivalent exemptions from the factor config.
func NewAdvisoryProcessor(cfg *FactorConfig) AdvisoryProcessor {
	cashExempt := make(map[string]bool, len(cfg.CashExempt))
	for _, symbol := range cfg.CashExempt {
		cashExempt[symbol] = true
	}
	return &advisoryProcessorImpl{thresholds: cfg.Thresholds, cashExempt: cashExempt}
}

// Evaluate runs the advisory rule list in its fixed order: diversification,
// then concentration sorted by descending weight, then factor balance. The
// concentration threshold depends on the weighting scheme: value-weighted
// when holdings come from a snapshot, quantity-weighted under replay.
func (p *advisoryProcessorImpl) Evaluate(holdings *models.Holdings, exposure models.FactorExposure) []string {
	advisories := []string{}
	t := p.thresholds

	if len(holdings.Quantities) < t.MinPositions {
		advisories = append(advisories, fmt.Sprintf(
			"Consider diversifying your portfolio. You hold fewer than %d positions.", t.MinPositions))
	}

	total := holdings.TotalWeight()
	if total <= 0 {
		return advisories
	}

	threshold := t.QuantityConcentration
	unit := "share count"
	if holdings.FromSnapshot {
		threshold = t.ValueConcentration
		unit = "portfolio value"
	}
	for _, symbol := range holdings.SymbolsByWeight() {
		if p.cashExempt[symbol] {
			continue
		}
		share := holdings.Weight(symbol) / total
		if share > threshold { // strictly greater: exactly at threshold is fine
			advisories = append(advisories, fmt.Sprintf(
				"Concentration Alert: %s makes up %.1f%% of your %s.", symbol, share*100, unit))
		}
	}

	if exposure[t.BalanceFactor] > total*t.BalanceShare {
		advisories = append(advisories, fmt.Sprintf(
			"High exposure to %s. Consider balancing with Defensive or Income assets.", t.BalanceFactor))
	}

	return advisories
}
