package processors

import (
	"github.com/username/folioletter/src/models"
)

// factorProcessorImpl implements the FactorProcessor interface.
type factorProcessorImpl struct {
	classify map[string]string // symbol → first matching factor name
}

// NewFactorProcessor creates a FactorProcessor over the given classification
// table. A symbol matches at most one factor; with overlapping lists the
// first group in table order wins.
func NewFactorProcessor(cfg *FactorConfig) FactorProcessor {
	classify := make(map[string]string)
	for _, group := range cfg.Factors {
		for _, symbol := range group.Symbols {
			if _, exists := classify[symbol]; !exists {
				classify[symbol] = group.Name
			}
		}
	}
	return &factorProcessorImpl{classify: classify}
}

// Exposure attributes each held symbol's weight (current value when known,
// raw quantity otherwise) to its factor bucket. Factors with zero aggregate
// weight are omitted; unmatched symbols accrue to Unclassified.
func (p *factorProcessorImpl) Exposure(holdings *models.Holdings) models.FactorExposure {
	exposure := make(models.FactorExposure)
	for symbol := range holdings.Quantities {
		weight := holdings.Weight(symbol)
		if weight == 0 {
			continue
		}
		factor, ok := p.classify[symbol]
		if !ok {
			factor = UnclassifiedFactor
		}
		exposure[factor] += weight
	}
	return exposure
}
