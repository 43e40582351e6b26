package presentation

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the Brazilian day-first date format used in every output
const DateLayout = "02/01/2006"

// FormatCurrencyBRL renders an amount as whole reais, e.g. "R$ 25.000".
// Halves round to even. Nil and NaN render as "".
func FormatCurrencyBRL(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return ""
	}
	whole := decimal.NewFromFloat(*v).RoundBank(0).IntPart()
	return "R$ " + groupThousands(strconv.FormatInt(whole, 10), ".")
}

// FormatDateBR renders t as DD/MM/YYYY; nil renders as ""
func FormatDateBR(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// groupThousands inserts sep every three digits of an integer string,
// keeping a leading minus sign in place
func groupThousands(digits, sep string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
