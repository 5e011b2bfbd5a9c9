package processors

import (
	"github.com/username/folioletter/src/models"
	"github.com/username/folioletter/src/utils"
)

// performanceProcessorImpl implements the PerformanceProcessor interface.
type performanceProcessorImpl struct{}

// NewPerformanceProcessor creates a new instance of PerformanceProcessor.
func NewPerformanceProcessor() PerformanceProcessor {
	return &performanceProcessorImpl{}
}

// Calculate sums dividend income over the transaction stream and, when a
// snapshot exists, aggregate value and gain/loss over the positions.
func (p *performanceProcessorImpl) Calculate(transactions []models.Transaction, positions []models.Position) models.PerformanceSummary {
	summary := models.PerformanceSummary{TransactionCount: len(transactions)}

	for _, t := range transactions {
		if t.IsDividend() {
			summary.TotalDividends += t.Amount
		}
	}
	summary.TotalDividends = utils.RoundFloat(summary.TotalDividends, 2)

	for _, pos := range positions {
		summary.TotalValue += pos.CurrentValue
		summary.TotalGainLoss += pos.GainLossDollar
	}

	// Gain percent is measured against cost basis (value minus gain), guarded
	// against a zero denominator.
	costBasis := summary.TotalValue - summary.TotalGainLoss
	summary.TotalGainLossPct = utils.RoundFloat(utils.SafeRatio(summary.TotalGainLoss, costBasis)*100, 2)

	return summary
}
