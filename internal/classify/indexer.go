package classify

import (
	"regexp"
	"strings"

	"rfdestaques/pkg/contracts/domain"
)

var bareDIToken = regexp.MustCompile(`\bDI\b`)

// IndexerRules tunes indexer classification. The zero value applies the
// strict rule set; MatchBareDI also treats the standalone word "DI" as a
// CDI-linked asset.
type IndexerRules struct {
	MatchBareDI bool
}

// ClassifyIndexer maps a free-text indexer description to its class using
// the default rules.
func ClassifyIndexer(raw string) (domain.IndexerClass, bool) {
	return IndexerRules{}.Classify(raw)
}

// Classify checks, in order: IPCA, then CDI/POS, then PRE/FIXA. The first
// rule that matches wins, so "IPCA + CDI" is IPCA.
func (r IndexerRules) Classify(raw string) (domain.IndexerClass, bool) {
	s := Fold(raw)
	if s == "" {
		return "", false
	}

	switch {
	case strings.Contains(s, "IPCA"):
		return domain.IndexerIPCA, true
	case strings.Contains(s, "CDI"), strings.Contains(s, "POS"):
		return domain.IndexerPostCDI, true
	case r.MatchBareDI && bareDIToken.MatchString(s):
		return domain.IndexerPostCDI, true
	case strings.Contains(s, "PRE"), strings.Contains(s, "FIXA"):
		return domain.IndexerPre, true
	}
	return "", false
}
