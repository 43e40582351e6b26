package selection

import (
	"sort"

	"rfdestaques/pkg/contracts/domain"
)

// TopN returns up to n records of the (idx, hz) bucket ordered by rate,
// highest first. Ties keep their input order. n <= 0 yields an empty slice.
func TopN(records []domain.NormalizedRecord, idx domain.IndexerClass, hz domain.HorizonClass, n int) []domain.NormalizedRecord {
	if n <= 0 {
		return []domain.NormalizedRecord{}
	}

	matched := make([]domain.NormalizedRecord, 0)
	for _, r := range records {
		if r.Indexer == idx && r.Horizon == hz {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Rate > matched[j].Rate
	})

	if len(matched) > n {
		matched = matched[:n]
	}
	return matched
}

// ByTerm returns every record of the horizon ordered by term, shortest
// first. It backs the public-bond listing, which is never truncated.
func ByTerm(records []domain.NormalizedRecord, hz domain.HorizonClass) []domain.NormalizedRecord {
	matched := make([]domain.NormalizedRecord, 0)
	for _, r := range records {
		if r.Horizon == hz {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].TermDays < matched[j].TermDays
	})
	return matched
}
