package domain

import (
	"time"
)

// AssetKind distinguishes the sheet a record was normalized from
type AssetKind string

const (
	AssetBankCredit AssetKind = "bank_credit"
	AssetPublicBond AssetKind = "public_bond"
)

// NormalizedRecord is one asset row after parsing and classification.
// Records that reach this type always carry a valid Indexer, Horizon and Rate.
type NormalizedRecord struct {
	Kind AssetKind `json:"kind"`
	Row  int       `json:"row"`

	Issuer  string `json:"issuer,omitempty"`
	Product string `json:"product,omitempty"`
	Title   string `json:"title,omitempty"`

	IndexerRaw string       `json:"indexer_raw"`
	Indexer    IndexerClass `json:"indexer"`

	RateRaw string  `json:"rate_raw"`
	Rate    float64 `json:"rate"`

	TermDays int          `json:"term_days"`
	Horizon  HorizonClass `json:"horizon"`

	Maturity      *time.Time `json:"maturity,omitempty"`
	MinInvestment *float64   `json:"min_investment,omitempty"`

	RatingRaw   string `json:"rating_raw,omitempty"`
	RatingScore *int   `json:"rating_score,omitempty"`
}

// Bucket returns the grid cell the record belongs to
func (r NormalizedRecord) Bucket() BucketKey {
	return BucketKey{Indexer: r.Indexer, Horizon: r.Horizon}
}

// DisplayName is the "product issuer" pair shown on message cards
func (r NormalizedRecord) DisplayName() string {
	switch {
	case r.Product == "":
		return r.Issuer
	case r.Issuer == "":
		return r.Product
	default:
		return r.Product + " " + r.Issuer
	}
}
