// src/parsers/plaid/parser.go
package plaid

import (
	"fmt"
	"math"
	"strings"

	"github.com/username/folioletter/src/models"
	"github.com/username/folioletter/src/utils"
)

// Holding is one entry of the aggregator's holdings payload, with the
// security's ticker already resolved by the fetching client.
type Holding struct {
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	InstitutionValue float64 `json:"institution_value"`
	CostBasis        float64 `json:"cost_basis"`
	SecurityType     string  `json:"security_type"`
}

// TransactionRecord is one entry of the aggregator's transactions payload.
type TransactionRecord struct {
	Date     string  `json:"date"`
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Type     string  `json:"type"`
	Subtype  string  `json:"subtype"`
}

// PlaidParser maps pre-fetched aggregator payloads onto the common record
// stream. Unlike the CSV adapters it consumes structured data, so there is no
// schema repair and no io.Reader.
type PlaidParser struct{}

func NewParser() *PlaidParser {
	return &PlaidParser{}
}

// ParsePayloads converts the two payload sequences. A nil holdings and nil
// transactions pair is structurally absent input and fails the run.
func (p *PlaidParser) ParsePayloads(holdings []Holding, transactions []TransactionRecord) (*models.ParseResult, error) {
	if holdings == nil && transactions == nil {
		return nil, fmt.Errorf("aggregator returned no holdings and no transactions payload")
	}

	result := &models.ParseResult{}
	for i, h := range holdings {
		symbol := utils.CleanSymbol(h.Symbol)
		if symbol == "" {
			result.Skipped = append(result.Skipped, models.SkippedRow{Line: i + 1, Reason: "holding without symbol"})
			continue
		}
		result.Positions = append(result.Positions, models.Position{
			Symbol:         symbol,
			Quantity:       h.Quantity,
			CurrentValue:   h.InstitutionValue,
			InvestmentType: h.SecurityType,
			GainLossDollar: gainLoss(h),
		})
	}

	for i, t := range transactions {
		date, ok := utils.ParseAnyDate(t.Date)
		if !ok {
			result.Skipped = append(result.Skipped, models.SkippedRow{Line: i + 1, Reason: "transaction without parseable date"})
			continue
		}

		action := classifyType(t.Type, t.Subtype)
		quantity := t.Quantity
		if action == models.ActionSell && quantity > 0 {
			quantity = -quantity
		}
		amount := t.Amount
		if action == models.ActionDividend {
			// The provider reports dividend cash flow as a negative account
			// debit; income is its magnitude.
			amount = math.Abs(amount)
		}

		result.Transactions = append(result.Transactions, models.Transaction{
			Date:      date,
			Symbol:    utils.CleanSymbol(t.Symbol),
			Action:    action,
			RawAction: rawType(t),
			Quantity:  quantity,
			Price:     t.Price,
			Amount:    amount,
		})
	}
	return result, nil
}

// classifyType maps the provider's type taxonomy onto transaction actions.
func classifyType(typ, subtype string) models.TransactionAction {
	typ = strings.ToLower(strings.TrimSpace(typ))
	subtype = strings.ToLower(strings.TrimSpace(subtype))
	switch {
	case subtype == "dividend reinvestment":
		return models.ActionDividendReinvest
	case typ == "dividend" || subtype == "dividend":
		return models.ActionDividend
	case typ == "buy":
		return models.ActionBuy
	case typ == "sell":
		return models.ActionSell
	default:
		return models.ActionOther
	}
}

func rawType(t TransactionRecord) string {
	if t.Subtype != "" {
		return t.Type + "/" + t.Subtype
	}
	return t.Type
}

func gainLoss(h Holding) float64 {
	if h.CostBasis == 0 {
		return 0.0
	}
	return h.InstitutionValue - h.CostBasis
}
