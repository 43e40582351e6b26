package fields

import (
	"regexp"
	"strconv"
	"strings"

	"rfdestaques/pkg/contracts/domain"
)

// rateSuffixes are annotations brokers append to quoted rates
var rateSuffixes = []string{"A.A.", "A.A", "AOANO", "%"}

var rateNumeral = regexp.MustCompile(`-?\d[\d.,]*`)

// ParseRate extracts a numeric rate from a quoted value such as
// "110% CDI", "IPCA + 7,20%" or "13,45% a.a.". Native numbers pass through.
func ParseRate(c domain.Cell) (float64, bool) {
	switch c.Kind {
	case domain.CellNumber:
		return c.Number, true
	case domain.CellText:
		return parseRateText(c.Text)
	default:
		return 0, false
	}
}

func parseRateText(s string) (float64, bool) {
	s = strings.ToUpper(s)
	s = strings.Join(strings.Fields(s), "")
	for _, suffix := range rateSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}

	numeral := strings.TrimRight(rateNumeral.FindString(s), ".,")
	if numeral == "" || numeral == "-" {
		return 0, false
	}
	numeral = normalizeSeparators(numeral)

	v, err := strconv.ParseFloat(numeral, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeSeparators rewrites a numeral to Go syntax. When both separators
// appear, or the dot repeats, dots group thousands; a lone comma is decimal;
// a lone dot is kept as decimal.
func normalizeSeparators(n string) string {
	dots := strings.Count(n, ".")
	commas := strings.Count(n, ",")
	switch {
	case commas > 0:
		n = strings.ReplaceAll(n, ".", "")
		if idx := strings.LastIndex(n, ","); idx >= 0 {
			n = strings.ReplaceAll(n[:idx], ",", "") + "." + n[idx+1:]
		}
	case dots > 1:
		n = strings.ReplaceAll(n, ".", "")
	}
	return n
}
