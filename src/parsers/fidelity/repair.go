// src/parsers/fidelity/repair.go
package fidelity

import "strings"

// columnLayout binds the meaning of each history column to its index in the
// export. -1 means the column is absent in this vintage.
type columnLayout struct {
	date, action, symbol, quantity, price, currency, amount int
}

func mapColumns(header []string) columnLayout {
	layout := columnLayout{date: -1, action: -1, symbol: -1, quantity: -1, price: -1, currency: -1, amount: -1}
	for i, name := range header {
		switch normalizeHeader(name) {
		case "run date", "date":
			if layout.date == -1 {
				layout.date = i
			}
		case "action":
			layout.action = i
		case "symbol":
			layout.symbol = i
		case "quantity":
			layout.quantity = i
		case "price", "price ($)":
			layout.price = i
		case "currency":
			layout.currency = i
		case "amount", "amount ($)":
			layout.amount = i
		}
	}
	return layout
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// detectShift reports whether the export suffers the known column-shift
// defect, identified by the Quantity column carrying a currency code instead
// of a share count. The decision is file-level: one shifted row means the
// whole file is shifted.
func detectShift(layout columnLayout, rows [][]string) bool {
	if layout.quantity < 0 || layout.price < 0 || layout.currency < 0 {
		return false
	}
	for _, row := range rows {
		if layout.quantity < len(row) && strings.Contains(row[layout.quantity], "USD") {
			return true
		}
	}
	return false
}

// repairShift rebinds the three affected columns to their true meaning: the
// column headed "Quantity" holds the currency code, "Currency" holds the
// price, and "Price" holds the quantity.
func repairShift(layout columnLayout) columnLayout {
	fixed := layout
	fixed.quantity = layout.price
	fixed.price = layout.currency
	fixed.currency = layout.quantity
	return fixed
}
