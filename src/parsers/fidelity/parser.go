// src/parsers/fidelity/parser.go
package fidelity

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/username/folioletter/src/logger"
	"github.com/username/folioletter/src/models"
	"github.com/username/folioletter/src/utils"
)

// FidelityParser handles the legacy brokerage export pair: the transaction
// history CSV and the optional positions-snapshot CSV.
type FidelityParser struct{}

func NewParser() *FidelityParser {
	return &FidelityParser{}
}

// Parse reads a transaction-history export. The known column-shift defect is
// detected and repaired before any row is interpreted. Rows without a
// parseable date are footer or disclaimer text and are dropped, not errors.
func (p *FidelityParser) Parse(file io.Reader) (*models.ParseResult, error) {
	header, records, err := readCSV(file)
	if err != nil {
		return nil, err
	}

	layout := mapColumns(header)
	if layout.date < 0 || layout.action < 0 || layout.symbol < 0 {
		return nil, fmt.Errorf("history export missing required columns (Run Date, Action, Symbol)")
	}
	if detectShift(layout, records) {
		logger.L.Info("Detected misaligned history columns, rebinding Quantity/Price")
		layout = repairShift(layout)
	}

	result := &models.ParseResult{}
	for i, row := range records {
		line := i + 2 // 1-based, after the header row

		date, ok := utils.ParseAnyDate(cell(row, layout.date))
		if !ok {
			result.Skipped = append(result.Skipped, models.SkippedRow{Line: line, Reason: "no parseable date (footer text)"})
			continue
		}

		rawAction := strings.TrimSpace(cell(row, layout.action))
		symbol := utils.CleanSymbol(cell(row, layout.symbol))
		action := classifyAction(rawAction)

		quantity := utils.ScrubFloat(cell(row, layout.quantity))
		if action == models.ActionSell && quantity > 0 {
			quantity = -quantity
		}

		result.Transactions = append(result.Transactions, models.Transaction{
			Date:      date,
			Symbol:    symbol,
			Action:    action,
			RawAction: rawAction,
			Quantity:  quantity,
			Price:     utils.ScrubFloat(cell(row, layout.price)),
			Amount:    utils.ScrubFloat(cell(row, layout.amount)),
		})
	}
	return result, nil
}

func classifyAction(raw string) models.TransactionAction {
	action := strings.ToUpper(raw)
	switch {
	case strings.Contains(action, "REINVESTMENT"):
		return models.ActionDividendReinvest
	case strings.Contains(action, "BOUGHT"):
		return models.ActionBuy
	case strings.Contains(action, "SOLD"):
		return models.ActionSell
	case strings.Contains(action, "DIVIDEND"):
		return models.ActionDividend
	default:
		return models.ActionOther
	}
}

func readCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}
	return header, records, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
