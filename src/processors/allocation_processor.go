package processors

import (
	"github.com/username/folioletter/src/models"
	"github.com/username/folioletter/src/utils"
)

// allocationProcessorImpl implements the AllocationProcessor interface.
type allocationProcessorImpl struct{}

// NewAllocationProcessor creates a new instance of AllocationProcessor.
func NewAllocationProcessor() AllocationProcessor {
	return &allocationProcessorImpl{}
}

// Allocate groups snapshot rows by investment type and sums their current
// value. Without a snapshot, or without typed rows, the result is empty.
func (p *allocationProcessorImpl) Allocate(positions []models.Position) map[string]float64 {
	allocation := make(map[string]float64)
	for _, pos := range positions {
		if pos.InvestmentType == "" {
			continue
		}
		allocation[pos.InvestmentType] += pos.CurrentValue
	}
	for investmentType, value := range allocation {
		allocation[investmentType] = utils.RoundFloat(value, 2)
	}
	return allocation
}
