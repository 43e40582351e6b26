package selection

import (
	"fmt"
	"strings"

	"rfdestaques/internal/classify"
	"rfdestaques/pkg/contracts/domain"
)

// Filter decides whether a record stays in the selection. Filters only
// remove records, so applying several in any order gives the same result.
type Filter interface {
	Keep(r domain.NormalizedRecord) bool
}

// FilterFunc adapts a plain function to Filter
type FilterFunc func(r domain.NormalizedRecord) bool

// Keep implements Filter
func (f FilterFunc) Keep(r domain.NormalizedRecord) bool { return f(r) }

// PassAll keeps every record. Disabled filters resolve to it.
var PassAll Filter = FilterFunc(func(domain.NormalizedRecord) bool { return true })

// Apply returns the records every filter keeps, in input order.
// Nil filters are ignored.
func Apply(records []domain.NormalizedRecord, filters ...Filter) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if keepAll(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func keepAll(r domain.NormalizedRecord, filters []Filter) bool {
	for _, f := range filters {
		if f != nil && !f.Keep(r) {
			return false
		}
	}
	return true
}

// RatingFloor keeps records rated at or above threshold, i.e. whose score
// is lower than or equal to the threshold's. Unrated records are removed.
//
// The filter is disabled (PassAll) with a warning when the threshold is not
// a known rating, when no record carries a rating, or when none of the
// ratings present is recognizable. An empty threshold disables it silently.
func RatingFloor(threshold string, records []domain.NormalizedRecord) (Filter, []string) {
	threshold = strings.TrimSpace(threshold)
	if threshold == "" {
		return PassAll, nil
	}

	floor, ok := classify.RatingScore(threshold)
	if !ok {
		return PassAll, []string{fmt.Sprintf("rating floor %q is not a recognized rating; filter disabled", threshold)}
	}

	var anyRaw, anyScored bool
	for _, r := range records {
		if r.RatingRaw != "" {
			anyRaw = true
		}
		if r.RatingScore != nil {
			anyScored = true
			break
		}
	}
	switch {
	case !anyRaw:
		return PassAll, []string{"rating column not found or empty; rating floor disabled"}
	case !anyScored:
		return PassAll, []string{"no recognizable rating in the data; rating floor disabled"}
	}

	return FilterFunc(func(r domain.NormalizedRecord) bool {
		return r.RatingScore != nil && *r.RatingScore <= floor
	}), nil
}

// MaxMinInvestment keeps records whose minimum investment does not exceed
// limit. Records without a minimum are kept. limit <= 0 disables the filter.
func MaxMinInvestment(limit float64) Filter {
	if limit <= 0 {
		return PassAll
	}
	return FilterFunc(func(r domain.NormalizedRecord) bool {
		return r.MinInvestment == nil || *r.MinInvestment <= limit
	})
}
