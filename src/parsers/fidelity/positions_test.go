package fidelity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const positionsSnapshot = `Symbol,Quantity,Last Price,Current Value,Total Gain/Loss Dollar,Total Gain/Loss Percent,Percent of Account,Type
NVDA,10,$450.00,"$4,500.00","$1,200.00",36.4%,44.5%,Stock
SPAXX**,500,$1.00,$500.00,$0.00,0.0%,4.9%,Cash
Pending Activity,,,,$125.00,,,
,,,,,,,
`

func TestParsePositions(t *testing.T) {
	result, err := NewParser().ParsePositions(strings.NewReader(positionsSnapshot))
	require.NoError(t, err)
	require.Len(t, result.Positions, 2)

	nvda := result.Positions[0]
	assert.Equal(t, "NVDA", nvda.Symbol)
	assert.Equal(t, 10.0, nvda.Quantity)
	assert.Equal(t, 450.0, nvda.LastPrice)
	assert.Equal(t, 4500.0, nvda.CurrentValue)
	assert.Equal(t, 1200.0, nvda.GainLossDollar)
	assert.Equal(t, 36.4, nvda.GainLossPercent)
	assert.Equal(t, "Stock", nvda.InvestmentType)

	sweep := result.Positions[1]
	assert.Equal(t, "SPAXX", sweep.Symbol, "footnote asterisks stripped")
	assert.Equal(t, 500.0, sweep.Quantity)
}

func TestParsePositionsSkipsNoise(t *testing.T) {
	result, err := NewParser().ParsePositions(strings.NewReader(positionsSnapshot))
	require.NoError(t, err)
	require.Len(t, result.Skipped, 2)

	assert.Equal(t, 4, result.Skipped[0].Line)
	assert.Contains(t, result.Skipped[0].Reason, "footer marker")
	assert.Equal(t, 5, result.Skipped[1].Line)
	assert.Equal(t, "empty symbol", result.Skipped[1].Reason)
}

func TestParsePositionsMissingRequiredColumns(t *testing.T) {
	_, err := NewParser().ParsePositions(strings.NewReader("Description,Value\nfoo,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}
