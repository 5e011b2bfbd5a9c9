// src/parsers/fidelity/positions.go
package fidelity

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/folioletter/src/models"
	"github.com/username/folioletter/src/utils"
)

// Symbol-cell markers for rows that are account noise, not positions.
var footerMarkers = []string{"pending activity"}

// positionLayout binds the snapshot export's columns.
type positionLayout struct {
	symbol, quantity, lastPrice, currentValue, gainLossDollar, gainLossPercent, percentOfAccount, investmentType int
}

func mapPositionColumns(header []string) positionLayout {
	layout := positionLayout{
		symbol: -1, quantity: -1, lastPrice: -1, currentValue: -1,
		gainLossDollar: -1, gainLossPercent: -1, percentOfAccount: -1, investmentType: -1,
	}
	for i, name := range header {
		switch normalizeHeader(name) {
		case "symbol":
			layout.symbol = i
		case "quantity":
			layout.quantity = i
		case "last price":
			layout.lastPrice = i
		case "current value":
			layout.currentValue = i
		case "total gain/loss dollar":
			layout.gainLossDollar = i
		case "total gain/loss percent":
			layout.gainLossPercent = i
		case "percent of account":
			layout.percentOfAccount = i
		case "investment type", "type":
			layout.investmentType = i
		}
	}
	return layout
}

// ParsePositions reads the positions-snapshot export that accompanies the
// history file. Rows with an empty symbol or a known footer marker are
// dropped; duplicate symbols are resolved last-row-wins downstream.
func (p *FidelityParser) ParsePositions(file io.Reader) (*models.ParseResult, error) {
	header, records, err := readCSV(file)
	if err != nil {
		return nil, err
	}

	layout := mapPositionColumns(header)
	if layout.symbol < 0 || layout.quantity < 0 {
		return nil, fmt.Errorf("positions export missing required columns (Symbol, Quantity)")
	}

	result := &models.ParseResult{}
	for i, row := range records {
		line := i + 2

		symbol := utils.CleanSymbol(cell(row, layout.symbol))
		if symbol == "" {
			result.Skipped = append(result.Skipped, models.SkippedRow{Line: line, Reason: "empty symbol"})
			continue
		}
		if isFooterMarker(symbol) {
			result.Skipped = append(result.Skipped, models.SkippedRow{Line: line, Reason: fmt.Sprintf("footer marker %q", symbol)})
			continue
		}

		result.Positions = append(result.Positions, models.Position{
			Symbol:           symbol,
			Quantity:         utils.ScrubFloat(cell(row, layout.quantity)),
			LastPrice:        utils.ScrubFloat(cell(row, layout.lastPrice)),
			CurrentValue:     utils.ScrubFloat(cell(row, layout.currentValue)),
			GainLossDollar:   utils.ScrubFloat(cell(row, layout.gainLossDollar)),
			GainLossPercent:  utils.ScrubFloat(cell(row, layout.gainLossPercent)),
			PercentOfAccount: utils.ScrubFloat(cell(row, layout.percentOfAccount)),
			InvestmentType:   strings.TrimSpace(cell(row, layout.investmentType)),
		})
	}
	return result, nil
}

func isFooterMarker(symbol string) bool {
	lower := strings.ToLower(symbol)
	for _, marker := range footerMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
