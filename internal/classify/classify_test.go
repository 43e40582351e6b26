package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"rfdestaques/pkg/contracts/domain"
)

func TestClassifyIndexer(t *testing.T) {
	tests := []struct {
		raw    string
		want   domain.IndexerClass
		wantOK bool
	}{
		{"IPCA + 6,5%", domain.IndexerIPCA, true},
		{"ipca", domain.IndexerIPCA, true},
		{"IPCA + CDI", domain.IndexerIPCA, true},
		{"CDI", domain.IndexerPostCDI, true},
		{"110% do CDI", domain.IndexerPostCDI, true},
		{"Pós-fixado", domain.IndexerPostCDI, true},
		{"POS", domain.IndexerPostCDI, true},
		{"Pré", domain.IndexerPre, true},
		{"Prefixado", domain.IndexerPre, true},
		{"Prefixado 12%", domain.IndexerPre, true},
		{"IPCA + 6%", domain.IndexerIPCA, true},
		{"xyz", "", false},
		{"Taxa fixa", domain.IndexerPre, true},
		{"DI", "", false},
		{"IGP-M", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ClassifyIndexer(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyIndexerBareDI(t *testing.T) {
	rules := IndexerRules{MatchBareDI: true}

	got, ok := rules.Classify("100% DI")
	assert.True(t, ok)
	assert.Equal(t, domain.IndexerPostCDI, got)

	got, ok = rules.Classify("IPCA")
	assert.True(t, ok)
	assert.Equal(t, domain.IndexerIPCA, got)

	_, ok = rules.Classify("DIARIO")
	assert.False(t, ok)
}

func TestCategorizeHorizon(t *testing.T) {
	tests := []struct {
		name   string
		days   float64
		want   domain.HorizonClass
		wantOK bool
	}{
		{"zero", 0, domain.HorizonShort, true},
		{"short edge", 360, domain.HorizonShort, true},
		{"medium start", 361, domain.HorizonMedium, true},
		{"medium edge", 1080, domain.HorizonMedium, true},
		{"long start", 1081, domain.HorizonLong, true},
		{"far", 7300, domain.HorizonLong, true},
		{"negative", -1, "", false},
		{"nan", math.NaN(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CategorizeHorizon(tt.days)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHorizonIsTotalOverNonNegative(t *testing.T) {
	for d := 0; d <= 2000; d++ {
		got, ok := CategorizeHorizon(float64(d))
		assert.True(t, ok)
		assert.True(t, got.Valid())
	}
}

func TestRatingScore(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"AAA", 1, true},
		{"aa+", 2, true},
		{" A - ", 7, true},
		{"BBB-", 10, true},
		{"D", 20, true},
		{"brAA+", 0, false},
		{"AA(bra)", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := RatingScore(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRatingTokensOrdered(t *testing.T) {
	tokens := RatingTokens()
	assert.Len(t, tokens, 20)
	assert.Equal(t, "AAA", tokens[0])
	assert.Equal(t, "D", tokens[19])
	for i, token := range tokens {
		score, ok := RatingScore(token)
		assert.True(t, ok)
		assert.Equal(t, i+1, score)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "POS-FIXADO", Fold("  Pós-fixado "))
	assert.Equal(t, "APLICACAO MINIMA", Fold("Aplicação mínima"))
}
