package utils

import (
	"strings"
	"time"
)

// Date layouts observed across broker exports. Order matters: the US slash
// format common to legacy exports is tried before ISO.
var dateLayouts = []string{
	"01/02/2006",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
}

// ParseAnyDate parses a date string against the known export layouts.
// The boolean reports whether any layout matched.
func ParseAnyDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
