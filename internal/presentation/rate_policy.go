package presentation

import (
	"math"
	"strconv"
	"strings"

	"rfdestaques/pkg/contracts/domain"
)

// RatePolicy decides when a parsed rate is a fraction that must be scaled
// to a percentage before display. Values at or below the threshold of
// their indexer are multiplied by 100.
type RatePolicy struct {
	PostCDIFractionMax float64 `yaml:"post_cdi_fraction_max" json:"post_cdi_fraction_max"`
	OtherFractionMax   float64 `yaml:"other_fraction_max" json:"other_fraction_max"`
}

// DefaultRatePolicy treats CDI percentages up to 2 (200%) and other rates
// up to 1.5 (150%) as fractions
func DefaultRatePolicy() RatePolicy {
	return RatePolicy{PostCDIFractionMax: 2, OtherFractionMax: 1.5}
}

// Format renders a rate with two decimals and a comma separator.
// Post-fixed rates also group thousands with dots ("1.050,00%").
func (p RatePolicy) Format(v float64, indexer domain.IndexerClass) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}

	threshold := p.OtherFractionMax
	if indexer == domain.IndexerPostCDI {
		threshold = p.PostCDIFractionMax
	}
	if v <= threshold {
		v *= 100
	}

	fixed := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(fixed, ".")
	if indexer == domain.IndexerPostCDI {
		intPart = groupThousands(intPart, ".")
	}
	return intPart + "," + frac + "%"
}
