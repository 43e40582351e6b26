package domain

// IndexerClass is the remuneration family of a fixed-income asset
type IndexerClass string

const (
	IndexerPostCDI IndexerClass = "pos_cdi"
	IndexerPre     IndexerClass = "pre"
	IndexerIPCA    IndexerClass = "ipca"
)

// Label returns the display label used in tables and bucket names
func (c IndexerClass) Label() string {
	switch c {
	case IndexerPostCDI:
		return "Pós (CDI)"
	case IndexerPre:
		return "Pré"
	case IndexerIPCA:
		return "IPCA"
	default:
		return ""
	}
}

// Valid reports whether c is one of the known indexer classes
func (c IndexerClass) Valid() bool {
	switch c {
	case IndexerPostCDI, IndexerPre, IndexerIPCA:
		return true
	}
	return false
}

// HorizonClass is the maturity bucket of an asset measured in calendar days
type HorizonClass string

const (
	HorizonShort  HorizonClass = "short"
	HorizonMedium HorizonClass = "medium"
	HorizonLong   HorizonClass = "long"
)

// Horizon boundaries in days, inclusive on the upper end
const (
	ShortHorizonMaxDays  = 360
	MediumHorizonMaxDays = 1080
)

// Label returns the display label used in tables and bucket names
func (h HorizonClass) Label() string {
	switch h {
	case HorizonShort:
		return "Curto (até 360d)"
	case HorizonMedium:
		return "Médio (361 a 1080d)"
	case HorizonLong:
		return "Longo (acima de 1080d)"
	default:
		return ""
	}
}

// Title returns the section heading used in outbound messages
func (h HorizonClass) Title() string {
	switch h {
	case HorizonShort:
		return "Curto Prazo (até 360d)"
	case HorizonMedium:
		return "Médio Prazo (361 a 1080d)"
	case HorizonLong:
		return "Longo Prazo (acima de 1080d)"
	default:
		return ""
	}
}

// Valid reports whether h is one of the known horizon classes
func (h HorizonClass) Valid() bool {
	switch h {
	case HorizonShort, HorizonMedium, HorizonLong:
		return true
	}
	return false
}

// Indexers returns the indexer classes in display order
func Indexers() []IndexerClass {
	return []IndexerClass{IndexerPostCDI, IndexerPre, IndexerIPCA}
}

// Horizons returns the horizon classes in display order
func Horizons() []HorizonClass {
	return []HorizonClass{HorizonShort, HorizonMedium, HorizonLong}
}

// BucketKey identifies one cell of the indexer x horizon grid
type BucketKey struct {
	Indexer IndexerClass `json:"indexer"`
	Horizon HorizonClass `json:"horizon"`
}

// Label renders the key as "<indexer> | <horizon>"
func (k BucketKey) Label() string {
	return k.Indexer.Label() + " | " + k.Horizon.Label()
}

// BucketKeys returns all nine keys, indexer-major
func BucketKeys() []BucketKey {
	keys := make([]BucketKey, 0, 9)
	for _, idx := range Indexers() {
		for _, hz := range Horizons() {
			keys = append(keys, BucketKey{Indexer: idx, Horizon: hz})
		}
	}
	return keys
}
