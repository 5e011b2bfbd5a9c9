package models

import (
	"strings"
	"time"
)

// TransactionAction is the normalized classification of a brokerage transaction.
type TransactionAction string

const (
	ActionBuy              TransactionAction = "BUY"
	ActionSell             TransactionAction = "SELL"
	ActionDividend         TransactionAction = "DIVIDEND"
	ActionDividendReinvest TransactionAction = "DIVIDEND_REINVEST"
	ActionOther            TransactionAction = "OTHER"
)

// Transaction is the unified, intermediate representation of one transaction row.
// Each parser populates it directly from the source file, including the
// classification. Sell quantities are negated by the parser, so holdings replay
// can always add Quantity regardless of direction.
type Transaction struct {
	Date      time.Time         `json:"date"`
	Symbol    string            `json:"symbol"`
	Action    TransactionAction `json:"action"`
	RawAction string            `json:"raw_action"` // original action text from the source
	Quantity  float64           `json:"quantity"`
	Amount    float64           `json:"amount"`
	Price     float64           `json:"price"`
}

// IsDividend reports whether the transaction represents dividend income.
// Matching is a case-insensitive substring check on the source action text,
// falling back to the normalized action for sources without raw text.
func (t Transaction) IsDividend() bool {
	if strings.Contains(strings.ToUpper(t.RawAction), "DIVIDEND") {
		return true
	}
	return t.RawAction == "" && t.Action == ActionDividend
}

// Position is an authoritative point-in-time snapshot row from a custodian.
type Position struct {
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	LastPrice        float64 `json:"last_price"`
	CurrentValue     float64 `json:"current_value"`
	InvestmentType   string  `json:"investment_type"`
	GainLossDollar   float64 `json:"gain_loss_dollar"`
	GainLossPercent  float64 `json:"gain_loss_percent"`
	PercentOfAccount float64 `json:"percent_of_account"`
}

// SkippedRow records one input row that was dropped during parsing or
// reconciliation, so data-quality signals survive the run instead of being
// silently discarded.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseResult is what every source adapter produces: a transaction stream,
// an optional position snapshot, and the rows it had to drop.
type ParseResult struct {
	Transactions []Transaction `json:"transactions"`
	Positions    []Position    `json:"positions"`
	Skipped      []SkippedRow  `json:"skipped"`
}
