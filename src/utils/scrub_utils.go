package utils

import (
	"strconv"
	"strings"

	"github.com/username/folioletter/src/security/validation"
)

// Artifacts that legacy exports wrap around numeric fields.
var numericArtifacts = strings.NewReplacer("$", "", ",", "", "%", "", "(", "-", ")", "")

// ScrubFloat normalizes a numeric-looking text field from a broker export:
// currency symbols, thousands separators, percent signs and accounting-style
// parentheses are stripped before parsing. Unparseable values yield 0.0 rather
// than failing the row.
func ScrubFloat(s string) float64 {
	s = strings.TrimSpace(numericArtifacts.Replace(s))
	if s == "" || s == "--" || s == "-" {
		return 0.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// CleanSymbol strips whitespace, footnote asterisks and unprintable bytes from
// a ticker symbol cell.
func CleanSymbol(s string) string {
	s = validation.StripUnprintable(s)
	s = strings.ReplaceAll(s, "*", "")
	return strings.TrimSpace(s)
}
