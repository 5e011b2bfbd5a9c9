// src/parsers/robinhood/parser.go
package robinhood

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/username/folioletter/src/logger"
	"github.com/username/folioletter/src/models"
	"github.com/username/folioletter/src/utils"
)

// RobinhoodParser handles the retail orders-style export: one row per order,
// of which only filled orders represent executed transactions.
type RobinhoodParser struct {
	// now is injectable so the missing-date-column fallback is testable.
	now func() time.Time
}

func NewParser() *RobinhoodParser {
	return &RobinhoodParser{now: time.Now}
}

func (p *RobinhoodParser) Parse(file io.Reader) (*models.ParseResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeHeader(name)] = i
	}

	idxSymbol, okSymbol := cols["symbol"]
	idxSide, okSide := cols["side"]
	idxQuantity, okQuantity := cols["quantity"]
	if !okSymbol || !okSide || !okQuantity {
		return nil, fmt.Errorf("orders export missing required columns (symbol, side, quantity)")
	}

	idxPrice := pickColumn(cols, "price", "average_price")
	idxState := pickColumn(cols, "state")
	idxDate := pickColumn(cols, "date", "updated_at")
	if idxDate < 0 {
		// Best-effort default when the export carries no date column at all.
		// Replay ordering degrades to file order in that case.
		logger.L.Warn("Orders export has no date column, falling back to processing time")
	}

	result := &models.ParseResult{}
	for i, row := range records {
		line := i + 2

		if idxState >= 0 && !strings.EqualFold(strings.TrimSpace(cell(row, idxState)), "filled") {
			continue // unexecuted orders are not transactions
		}

		symbol := utils.CleanSymbol(cell(row, idxSymbol))
		if symbol == "" {
			result.Skipped = append(result.Skipped, models.SkippedRow{Line: line, Reason: "empty symbol"})
			continue
		}

		var action models.TransactionAction
		side := strings.ToLower(strings.TrimSpace(cell(row, idxSide)))
		switch side {
		case "buy":
			action = models.ActionBuy
		case "sell":
			action = models.ActionSell
		default:
			result.Skipped = append(result.Skipped, models.SkippedRow{Line: line, Reason: fmt.Sprintf("unknown side %q", side)})
			continue
		}

		var date time.Time
		if idxDate < 0 {
			date = p.now()
		} else {
			var ok bool
			date, ok = utils.ParseAnyDate(cell(row, idxDate))
			if !ok {
				result.Skipped = append(result.Skipped, models.SkippedRow{Line: line, Reason: "unparseable date"})
				continue
			}
		}

		quantity := utils.ScrubFloat(cell(row, idxQuantity))
		price := utils.ScrubFloat(cell(row, idxPrice))

		amount := math.Abs(quantity) * price
		if action == models.ActionBuy {
			amount = -amount
		}
		if action == models.ActionSell && quantity > 0 {
			quantity = -quantity
		}

		result.Transactions = append(result.Transactions, models.Transaction{
			Date:      date,
			Symbol:    symbol,
			Action:    action,
			RawAction: side,
			Quantity:  quantity,
			Price:     price,
			Amount:    amount,
		})
	}
	return result, nil
}

func normalizeHeader(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func pickColumn(cols map[string]int, names ...string) int {
	for _, name := range names {
		if idx, ok := cols[name]; ok {
			return idx
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
