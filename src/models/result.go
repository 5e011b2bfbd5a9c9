package models

import "sort"

// HoldingsTolerance is the float tolerance below which a residual position is
// treated as fully closed and removed from the holdings map.
const HoldingsTolerance = 1e-3

// Holdings is the canonical current-holdings view for one analysis run.
// Invariant: no symbol is present with a quantity at or below HoldingsTolerance.
type Holdings struct {
	Quantities map[string]float64  `json:"quantities"`
	Details    map[string]Position `json:"details"`
	// FromSnapshot is true when the holdings were taken from an authoritative
	// position snapshot rather than reconstructed by transaction replay. It
	// selects the weighting scheme for exposure and concentration checks.
	FromSnapshot bool `json:"from_snapshot"`
}

func NewHoldings() *Holdings {
	return &Holdings{
		Quantities: make(map[string]float64),
		Details:    make(map[string]Position),
	}
}

// Weight returns the exposure weight a symbol contributes: its current value
// when the snapshot knows it, otherwise its raw quantity.
func (h *Holdings) Weight(symbol string) float64 {
	if d, ok := h.Details[symbol]; ok && d.CurrentValue > 0 {
		return d.CurrentValue
	}
	return h.Quantities[symbol]
}

// TotalWeight is the sum of Weight over all held symbols.
func (h *Holdings) TotalWeight() float64 {
	var total float64
	for symbol := range h.Quantities {
		total += h.Weight(symbol)
	}
	return total
}

// SymbolsByWeight returns held symbols sorted by descending weight, ties
// broken alphabetically so report ordering is deterministic.
func (h *Holdings) SymbolsByWeight() []string {
	symbols := make([]string, 0, len(h.Quantities))
	for symbol := range h.Quantities {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool {
		wi, wj := h.Weight(symbols[i]), h.Weight(symbols[j])
		if wi != wj {
			return wi > wj
		}
		return symbols[i] < symbols[j]
	})
	return symbols
}

// FactorExposure maps factor names to their aggregate weight. Only non-zero
// factors are present.
type FactorExposure map[string]float64

// PerformanceSummary aggregates run-level income and valuation figures.
type PerformanceSummary struct {
	TotalDividends   float64 `json:"total_dividends"`
	TransactionCount int     `json:"transaction_count"`
	TotalValue       float64 `json:"total_value"`
	TotalGainLoss    float64 `json:"total_gain_loss"`
	TotalGainLossPct float64 `json:"total_gain_loss_pct"`
}

// AnalysisResult is the canonical output of one analysis run, consumed by the
// report layer.
type AnalysisResult struct {
	RunID           string              `json:"run_id"`
	Source          string              `json:"source"`
	Holdings        map[string]float64  `json:"holdings"`
	PositionDetails map[string]Position `json:"position_details"`
	Performance     PerformanceSummary  `json:"performance"`
	FactorExposure  FactorExposure      `json:"factor_exposure"`
	Allocation      map[string]float64  `json:"allocation"`
	Advisories      []string            `json:"advisories"`
	Skipped         []SkippedRow        `json:"skipped_rows"`
}
