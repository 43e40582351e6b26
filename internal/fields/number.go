package fields

import (
	"regexp"
	"strconv"
	"strings"

	"rfdestaques/pkg/contracts/domain"
)

var numeralPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// ParseNumber converts a cell into a float. Native numbers pass through.
// Text is read in Brazilian notation: "." groups thousands and "," is the
// decimal separator, so "1.234,56" is 1234.56 and "110% CDI" is 110.
func ParseNumber(c domain.Cell) (float64, bool) {
	switch c.Kind {
	case domain.CellNumber:
		return c.Number, true
	case domain.CellText:
		return parseBrazilianText(c.Text)
	default:
		return 0, false
	}
}

func parseBrazilianText(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	match := numeralPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
