// src/parsers/parser.go
package parsers

import (
	"io"

	"github.com/username/folioletter/src/models"
)

// Parser turns one raw export file into the common intermediate record stream.
// Row-level problems never abort a parse; they are reported in the result's
// Skipped list. A structurally unreadable input is the only parse error.
type Parser interface {
	Parse(file io.Reader) (*models.ParseResult, error)
}

// PositionParser is implemented by sources that also ship an authoritative
// position-snapshot file alongside the transaction history.
type PositionParser interface {
	ParsePositions(file io.Reader) (*models.ParseResult, error)
}
