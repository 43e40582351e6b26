package classify

import (
	"math"

	"rfdestaques/pkg/contracts/domain"
)

// CategorizeHorizon buckets a term in days. Negative and NaN terms have no
// horizon.
func CategorizeHorizon(days float64) (domain.HorizonClass, bool) {
	switch {
	case math.IsNaN(days), math.IsInf(days, 0), days < 0:
		return "", false
	case days <= domain.ShortHorizonMaxDays:
		return domain.HorizonShort, true
	case days <= domain.MediumHorizonMaxDays:
		return domain.HorizonMedium, true
	default:
		return domain.HorizonLong, true
	}
}
