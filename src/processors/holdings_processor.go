package processors

import (
	"sort"

	"github.com/username/folioletter/src/models"
	"github.com/username/folioletter/src/utils"
)

// holdingsProcessorImpl implements the HoldingsProcessor interface.
type holdingsProcessorImpl struct{}

// NewHoldingsProcessor creates a new instance of HoldingsProcessor.
func NewHoldingsProcessor() HoldingsProcessor {
	return &holdingsProcessorImpl{}
}

// Reconcile produces the canonical holdings. A position snapshot, when
// supplied, is the source of truth: snapshots carry custodian-verified
// quantities, while transaction replay is an approximation that can drift on
// missing history, corporate actions or unrecorded transfers. Replay is used
// only when no snapshot exists.
func (p *holdingsProcessorImpl) Reconcile(transactions []models.Transaction, positions []models.Position) (*models.Holdings, []models.SkippedRow) {
	if len(positions) > 0 {
		return p.foldSnapshot(positions)
	}
	return p.replayTransactions(transactions)
}

func (p *holdingsProcessorImpl) foldSnapshot(positions []models.Position) (*models.Holdings, []models.SkippedRow) {
	holdings := models.NewHoldings()
	holdings.FromSnapshot = true

	var skipped []models.SkippedRow
	for i, pos := range positions {
		symbol := utils.CleanSymbol(pos.Symbol)
		if symbol == "" {
			skipped = append(skipped, models.SkippedRow{Line: i + 1, Reason: "position without symbol"})
			continue
		}
		if pos.Quantity <= models.HoldingsTolerance {
			skipped = append(skipped, models.SkippedRow{Line: i + 1, Reason: "position with non-positive quantity"})
			continue
		}
		// Last row wins on duplicate symbols within one file.
		holdings.Quantities[symbol] = pos.Quantity
		holdings.Details[symbol] = pos
	}
	return holdings, skipped
}

func (p *holdingsProcessorImpl) replayTransactions(transactions []models.Transaction) (*models.Holdings, []models.SkippedRow) {
	ordered := make([]models.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	holdings := models.NewHoldings()
	var skipped []models.SkippedRow
	for i, t := range ordered {
		switch t.Action {
		case models.ActionBuy, models.ActionSell, models.ActionDividendReinvest:
		default:
			continue // cash and income rows do not move share counts
		}
		if t.Symbol == "" {
			skipped = append(skipped, models.SkippedRow{Line: i + 1, Reason: "trade without symbol"})
			continue
		}

		// Quantities arrive signed from the adapters, so sells subtract here.
		holdings.Quantities[t.Symbol] += t.Quantity
		if holdings.Quantities[t.Symbol] <= models.HoldingsTolerance {
			// A closed position never lingers as a zero or negative residual.
			delete(holdings.Quantities, t.Symbol)
		}
	}
	return holdings, skipped
}
