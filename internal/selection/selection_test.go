package selection

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfdestaques/pkg/contracts/domain"
)

func rec(issuer string, idx domain.IndexerClass, hz domain.HorizonClass, rate float64) domain.NormalizedRecord {
	return domain.NormalizedRecord{
		Kind:    domain.AssetBankCredit,
		Issuer:  issuer,
		Product: "CDB",
		Indexer: idx,
		Horizon: hz,
		Rate:    rate,
	}
}

func withMin(r domain.NormalizedRecord, v float64) domain.NormalizedRecord {
	r.MinInvestment = &v
	return r
}

func withRating(r domain.NormalizedRecord, raw string, score int) domain.NormalizedRecord {
	r.RatingRaw = raw
	r.RatingScore = &score
	return r
}

func issuers(records []domain.NormalizedRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Issuer)
	}
	return out
}

func fakeRecords(f *gofakeit.Faker, n int) []domain.NormalizedRecord {
	indexers := domain.Indexers()
	horizons := domain.Horizons()
	out := make([]domain.NormalizedRecord, n)
	for i := range out {
		r := rec(f.Company(),
			indexers[f.IntRange(0, len(indexers)-1)],
			horizons[f.IntRange(0, len(horizons)-1)],
			// coarse rates force ties
			float64(f.IntRange(80, 130)))
		r.TermDays = f.IntRange(0, 3000)
		r.Row = i
		if f.Bool() {
			r = withMin(r, float64(f.IntRange(1, 100))*1000)
		}
		out[i] = r
	}
	return out
}

func TestTopN(t *testing.T) {
	records := []domain.NormalizedRecord{
		rec("A", domain.IndexerPostCDI, domain.HorizonShort, 101),
		rec("B", domain.IndexerPostCDI, domain.HorizonShort, 110),
		rec("C", domain.IndexerPre, domain.HorizonShort, 150),
		rec("D", domain.IndexerPostCDI, domain.HorizonShort, 105),
		rec("E", domain.IndexerPostCDI, domain.HorizonShort, 110),
		rec("F", domain.IndexerPostCDI, domain.HorizonMedium, 200),
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"top two with tie keeps input order", 2, []string{"B", "E"}},
		{"n larger than bucket", 10, []string{"B", "E", "D", "A"}},
		{"zero", 0, []string{}},
		{"negative", -3, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopN(records, domain.IndexerPostCDI, domain.HorizonShort, tt.n)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, issuers(got))
		})
	}
}

func TestTopN_EmptyBucketIsValid(t *testing.T) {
	got := TopN([]domain.NormalizedRecord{rec("A", domain.IndexerPre, domain.HorizonLong, 12)}, domain.IndexerIPCA, domain.HorizonLong, 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTopN_Properties(t *testing.T) {
	f := gofakeit.New(42)

	for iter := 0; iter < 50; iter++ {
		records := fakeRecords(f, f.IntRange(0, 120))
		n := f.IntRange(0, 12)

		for _, key := range domain.BucketKeys() {
			got := TopN(records, key.Indexer, key.Horizon, n)
			assert.LessOrEqual(t, len(got), n)

			for i, r := range got {
				assert.Equal(t, key, r.Bucket())
				if i > 0 {
					prev := got[i-1]
					assert.GreaterOrEqual(t, prev.Rate, r.Rate)
					if prev.Rate == r.Rate {
						assert.Less(t, prev.Row, r.Row, "ties keep input order")
					}
				}
			}

			// nothing left out ranks above the last selected record
			if len(got) == n && n > 0 {
				last := got[len(got)-1].Rate
				selected := make(map[int]bool, len(got))
				for _, r := range got {
					selected[r.Row] = true
				}
				for _, r := range records {
					if r.Bucket() == key && !selected[r.Row] {
						assert.LessOrEqual(t, r.Rate, last)
					}
				}
			}
		}
	}
}

func TestAllBuckets(t *testing.T) {
	records := []domain.NormalizedRecord{
		rec("A", domain.IndexerPostCDI, domain.HorizonMedium, 115),
		rec("B", domain.IndexerIPCA, domain.HorizonMedium, 6.5),
		rec("C", domain.IndexerPre, domain.HorizonShort, 13.2),
	}

	buckets := AllBuckets(records, 5)
	require.Len(t, buckets, 9)
	for _, key := range domain.BucketKeys() {
		_, ok := buckets[key]
		assert.True(t, ok, key.Label())
		assert.NotNil(t, buckets.Get(key))
	}

	assert.Equal(t, []string{"A"}, issuers(buckets.Get(domain.BucketKey{Indexer: domain.IndexerPostCDI, Horizon: domain.HorizonMedium})))
	assert.Equal(t, []string{"B"}, issuers(buckets.Get(domain.BucketKey{Indexer: domain.IndexerIPCA, Horizon: domain.HorizonMedium})))
	assert.Equal(t, []string{"C"}, issuers(buckets.Get(domain.BucketKey{Indexer: domain.IndexerPre, Horizon: domain.HorizonShort})))
	assert.Empty(t, buckets.Get(domain.BucketKey{Indexer: domain.IndexerPre, Horizon: domain.HorizonLong}))
	assert.Equal(t, 3, buckets.Count())

	flat := buckets.Flatten()
	require.Len(t, flat, 3)
	assert.Equal(t, "Pós (CDI) | Médio (361 a 1080d)", flat[0].Key.Label())
	assert.Equal(t, "C", flat[1].Record.Issuer, "Pré precedes IPCA")
	assert.Equal(t, "B", flat[2].Record.Issuer)
}

func TestAllBuckets_EmptyInput(t *testing.T) {
	buckets := AllBuckets(nil, 5)
	assert.Len(t, buckets, 9)
	assert.Equal(t, 0, buckets.Count())
	assert.Empty(t, buckets.Flatten())
}

func TestByTerm(t *testing.T) {
	a := rec("A", domain.IndexerIPCA, domain.HorizonLong, 7)
	a.TermDays = 3000
	b := rec("B", domain.IndexerIPCA, domain.HorizonLong, 6)
	b.TermDays = 1500
	c := rec("C", domain.IndexerIPCA, domain.HorizonShort, 5)
	c.TermDays = 200

	got := ByTerm([]domain.NormalizedRecord{a, b, c}, domain.HorizonLong)
	assert.Equal(t, []string{"B", "A"}, issuers(got))
	assert.Empty(t, ByTerm([]domain.NormalizedRecord{a}, domain.HorizonMedium))
}

func TestRatingFloor(t *testing.T) {
	rated := []domain.NormalizedRecord{
		withRating(rec("AAA", domain.IndexerPre, domain.HorizonShort, 10), "AAA", 1),
		withRating(rec("AA-", domain.IndexerPre, domain.HorizonShort, 11), "AA-", 4),
		withRating(rec("BBB", domain.IndexerPre, domain.HorizonShort, 12), "BBB", 9),
		rec("unrated", domain.IndexerPre, domain.HorizonShort, 13),
	}

	t.Run("keeps ratings at or above floor", func(t *testing.T) {
		f, warnings := RatingFloor("aa-", rated)
		assert.Empty(t, warnings)
		assert.Equal(t, []string{"AAA", "AA-"}, issuers(Apply(rated, f)))
	})

	t.Run("empty threshold is silent pass-through", func(t *testing.T) {
		f, warnings := RatingFloor("  ", rated)
		assert.Empty(t, warnings)
		assert.Len(t, Apply(rated, f), 4)
	})

	t.Run("unknown threshold", func(t *testing.T) {
		f, warnings := RatingFloor("Z+", rated)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "Z+")
		assert.Len(t, Apply(rated, f), 4)
	})

	t.Run("no rating column", func(t *testing.T) {
		plain := []domain.NormalizedRecord{rec("X", domain.IndexerPre, domain.HorizonShort, 1)}
		f, warnings := RatingFloor("A", plain)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "column")
		assert.Len(t, Apply(plain, f), 1)
	})

	t.Run("no recognizable rating", func(t *testing.T) {
		odd := rec("X", domain.IndexerPre, domain.HorizonShort, 1)
		odd.RatingRaw = "brAA"
		f, warnings := RatingFloor("A", []domain.NormalizedRecord{odd})
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "recognizable")
		assert.Len(t, Apply([]domain.NormalizedRecord{odd}, f), 1)
	})
}

func TestMaxMinInvestment(t *testing.T) {
	records := []domain.NormalizedRecord{
		withMin(rec("small", domain.IndexerPostCDI, domain.HorizonShort, 100), 1000),
		withMin(rec("edge", domain.IndexerPostCDI, domain.HorizonShort, 101), 5000),
		withMin(rec("large", domain.IndexerPostCDI, domain.HorizonShort, 120), 50000),
		rec("unknown", domain.IndexerPostCDI, domain.HorizonShort, 99),
	}

	assert.Equal(t, []string{"small", "edge", "unknown"}, issuers(Apply(records, MaxMinInvestment(5000))))
	assert.Len(t, Apply(records, MaxMinInvestment(0)), 4)
	assert.Len(t, Apply(records, MaxMinInvestment(-1)), 4)

	// filtering before ranking can only remove entries from a bucket
	all := TopN(records, domain.IndexerPostCDI, domain.HorizonShort, 5)
	capped := TopN(Apply(records, MaxMinInvestment(5000)), domain.IndexerPostCDI, domain.HorizonShort, 5)
	assert.Equal(t, []string{"large", "edge", "small", "unknown"}, issuers(all))
	assert.Equal(t, []string{"edge", "small", "unknown"}, issuers(capped))
}

func TestFiltersCommute(t *testing.T) {
	f := gofakeit.New(7)
	records := fakeRecords(f, 200)
	ratings := []string{"AAA", "AA", "A", "BBB", "BB"}
	for i := range records {
		if f.Bool() {
			raw := ratings[f.IntRange(0, len(ratings)-1)]
			score := map[string]int{"AAA": 1, "AA": 3, "A": 6, "BBB": 9, "BB": 12}[raw]
			records[i] = withRating(records[i], raw, score)
		}
	}

	rating, warnings := RatingFloor("A", records)
	require.Empty(t, warnings)
	capFilter := MaxMinInvestment(30000)

	ab := Apply(Apply(records, rating), capFilter)
	ba := Apply(Apply(records, capFilter), rating)
	both := Apply(records, rating, capFilter)
	assert.Equal(t, ab, ba)
	assert.Equal(t, ab, both)
	assert.LessOrEqual(t, len(both), len(records))

	before := AllBuckets(records, 5).Count()
	after := AllBuckets(both, 5).Count()
	assert.LessOrEqual(t, after, before)
}

func TestBucketsFilter(t *testing.T) {
	records := []domain.NormalizedRecord{
		withMin(rec("A", domain.IndexerPre, domain.HorizonShort, 14), 100000),
		withMin(rec("B", domain.IndexerPre, domain.HorizonShort, 12), 1000),
	}
	filtered := AllBuckets(records, 5).Filter(MaxMinInvestment(5000))
	assert.Len(t, filtered, 9)
	assert.Equal(t, []string{"B"}, issuers(filtered.Get(domain.BucketKey{Indexer: domain.IndexerPre, Horizon: domain.HorizonShort})))
}
