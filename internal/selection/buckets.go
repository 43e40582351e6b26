package selection

import (
	"rfdestaques/pkg/contracts/domain"
)

// Buckets holds the top records of every indexer x horizon cell.
// All nine keys are always present; empty cells hold empty slices.
type Buckets map[domain.BucketKey][]domain.NormalizedRecord

// AllBuckets runs TopN for each of the nine bucket keys
func AllBuckets(records []domain.NormalizedRecord, n int) Buckets {
	out := make(Buckets, 9)
	for _, key := range domain.BucketKeys() {
		out[key] = TopN(records, key.Indexer, key.Horizon, n)
	}
	return out
}

// Get returns the records of one bucket, never nil
func (b Buckets) Get(key domain.BucketKey) []domain.NormalizedRecord {
	if recs, ok := b[key]; ok && recs != nil {
		return recs
	}
	return []domain.NormalizedRecord{}
}

// Keys returns the bucket keys in display order
func (b Buckets) Keys() []domain.BucketKey {
	return domain.BucketKeys()
}

// BucketRow pairs a record with the bucket it was selected for
type BucketRow struct {
	Key    domain.BucketKey
	Record domain.NormalizedRecord
}

// Flatten lists every selected record, indexer-major then horizon, keeping
// the rate order inside each bucket
func (b Buckets) Flatten() []BucketRow {
	rows := make([]BucketRow, 0)
	for _, key := range b.Keys() {
		for _, r := range b.Get(key) {
			rows = append(rows, BucketRow{Key: key, Record: r})
		}
	}
	return rows
}

// Count is the number of selected records across all buckets
func (b Buckets) Count() int {
	total := 0
	for _, recs := range b {
		total += len(recs)
	}
	return total
}

// Filter returns a copy keeping only the records f accepts
func (b Buckets) Filter(f Filter) Buckets {
	out := make(Buckets, len(b))
	for _, key := range b.Keys() {
		out[key] = Apply(b.Get(key), f)
	}
	return out
}
