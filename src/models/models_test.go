package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionIsDividend(t *testing.T) {
	tests := []struct {
		name     string
		tx       Transaction
		expected bool
	}{
		{"raw dividend received", Transaction{RawAction: "DIVIDEND RECEIVED", Action: ActionDividend}, true},
		{"lowercase raw text", Transaction{RawAction: "dividend received", Action: ActionOther}, true},
		{"embedded in reinvestment", Transaction{RawAction: "REINVESTMENT DIVIDEND", Action: ActionDividendReinvest}, true},
		{"buy row", Transaction{RawAction: "YOU BOUGHT", Action: ActionBuy}, false},
		{"no raw text, dividend action", Transaction{RawAction: "", Action: ActionDividend}, true},
		{"no raw text, buy action", Transaction{RawAction: "", Action: ActionBuy}, false},
		{"raw text without dividend, dividend action", Transaction{RawAction: "INCOME", Action: ActionDividend}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.tx.IsDividend())
		})
	}
}

func TestHoldingsWeight(t *testing.T) {
	h := NewHoldings()
	h.Quantities["NVDA"] = 10
	h.Quantities["VOO"] = 5
	h.Details["NVDA"] = Position{Symbol: "NVDA", Quantity: 10, CurrentValue: 4500}

	assert.Equal(t, 4500.0, h.Weight("NVDA"), "snapshot value wins when known")
	assert.Equal(t, 5.0, h.Weight("VOO"), "falls back to quantity without a value")
	assert.Equal(t, 4505.0, h.TotalWeight())
}

func TestHoldingsSymbolsByWeight(t *testing.T) {
	h := NewHoldings()
	h.Quantities["AAA"] = 3
	h.Quantities["BBB"] = 7
	h.Quantities["CCC"] = 3

	assert.Equal(t, []string{"BBB", "AAA", "CCC"}, h.SymbolsByWeight(),
		"descending weight, alphabetical on ties")
}
