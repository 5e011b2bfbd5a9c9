package processors

import (
	"github.com/username/folioletter/src/models"
)

// HoldingsProcessor folds a transaction stream or an authoritative position
// snapshot into the canonical holdings view for one run.
type HoldingsProcessor interface {
	Reconcile(transactions []models.Transaction, positions []models.Position) (*models.Holdings, []models.SkippedRow)
}

// PerformanceProcessor aggregates dividend income and valuation figures.
type PerformanceProcessor interface {
	Calculate(transactions []models.Transaction, positions []models.Position) models.PerformanceSummary
}

// FactorProcessor classifies held symbols into thematic factor buckets.
type FactorProcessor interface {
	Exposure(holdings *models.Holdings) models.FactorExposure
}

// AllocationProcessor groups snapshot rows by investment type.
type AllocationProcessor interface {
	Allocate(positions []models.Position) map[string]float64
}

// AdvisoryProcessor evaluates the deterministic portfolio-health rule list.
type AdvisoryProcessor interface {
	Evaluate(holdings *models.Holdings, exposure models.FactorExposure) []string
}
