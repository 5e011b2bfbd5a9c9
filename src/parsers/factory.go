// src/parsers/factory.go
package parsers

import (
	"fmt"

	"github.com/username/folioletter/src/parsers/fidelity"
	"github.com/username/folioletter/src/parsers/robinhood"
)

func GetParser(source string) (Parser, error) {
	switch source {
	case "fidelity":
		return fidelity.NewParser(), nil
	case "robinhood":
		return robinhood.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
