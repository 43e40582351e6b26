package presentation

import (
	"rfdestaques/internal/selection"
	"rfdestaques/pkg/contracts/domain"
)

// Preview sizes for the treated-data tables
const (
	DefaultPreviewLimit = 80
	PublicPreviewLimit  = 150
)

// PreviewRow is a display-ready record: every value already formatted
type PreviewRow struct {
	Block         string `json:"block,omitempty"`
	Issuer        string `json:"issuer,omitempty"`
	Product       string `json:"product,omitempty"`
	Title         string `json:"title,omitempty"`
	Indexer       string `json:"indexer"`
	Rate          string `json:"rate"`
	MinInvestment string `json:"min_investment,omitempty"`
	Maturity      string `json:"maturity"`
	Horizon       string `json:"horizon"`
	TermDays      int    `json:"term_days"`
	Rating        string `json:"rating,omitempty"`
}

// Row formats a single record under the policy
func (p RatePolicy) Row(r domain.NormalizedRecord) PreviewRow {
	return PreviewRow{
		Issuer:        r.Issuer,
		Product:       r.Product,
		Title:         r.Title,
		Indexer:       r.IndexerRaw,
		Rate:          p.Format(r.Rate, r.Indexer),
		MinInvestment: FormatCurrencyBRL(r.MinInvestment),
		Maturity:      FormatDateBR(r.Maturity),
		Horizon:       r.Horizon.Label(),
		TermDays:      r.TermDays,
		Rating:        r.RatingRaw,
	}
}

// Preview formats the first limit records in input order. limit <= 0 uses
// DefaultPreviewLimit.
func Preview(records []domain.NormalizedRecord, limit int, policy RatePolicy) []PreviewRow {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}
	rows := make([]PreviewRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, policy.Row(r))
	}
	return rows
}

// BucketTable is the formatted content of one grid cell
type BucketTable struct {
	Key   domain.BucketKey `json:"key"`
	Label string           `json:"label"`
	Rows  []PreviewRow     `json:"rows"`
}

// BucketTables formats all nine buckets in display order. Empty buckets
// are kept with no rows.
func BucketTables(b selection.Buckets, policy RatePolicy) []BucketTable {
	tables := make([]BucketTable, 0, 9)
	for _, key := range b.Keys() {
		recs := b.Get(key)
		rows := make([]PreviewRow, 0, len(recs))
		for _, r := range recs {
			row := policy.Row(r)
			row.Block = key.Label()
			rows = append(rows, row)
		}
		tables = append(tables, BucketTable{Key: key, Label: key.Label(), Rows: rows})
	}
	return tables
}

// PublicListing formats the NTN-B records ordered by term, capped at
// PublicPreviewLimit
func PublicListing(records []domain.NormalizedRecord, policy RatePolicy) []PreviewRow {
	ordered := make([]domain.NormalizedRecord, 0, len(records))
	for _, hz := range domain.Horizons() {
		ordered = append(ordered, selection.ByTerm(records, hz)...)
	}
	rows := Preview(ordered, PublicPreviewLimit, policy)
	for i := range rows {
		rows[i].Indexer = domain.IndexerIPCA.Label()
	}
	return rows
}
