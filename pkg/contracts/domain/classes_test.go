package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketKeys(t *testing.T) {
	keys := BucketKeys()
	assert.Len(t, keys, 9)
	assert.Equal(t, BucketKey{Indexer: IndexerPostCDI, Horizon: HorizonShort}, keys[0])
	assert.Equal(t, BucketKey{Indexer: IndexerIPCA, Horizon: HorizonLong}, keys[8])

	seen := make(map[BucketKey]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %v", k)
		seen[k] = true
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Pós (CDI) | Curto (até 360d)", BucketKey{Indexer: IndexerPostCDI, Horizon: HorizonShort}.Label())
	assert.Equal(t, "IPCA | Longo (acima de 1080d)", BucketKey{Indexer: IndexerIPCA, Horizon: HorizonLong}.Label())
	assert.Equal(t, "Médio Prazo (361 a 1080d)", HorizonMedium.Title())
	assert.Empty(t, IndexerClass("other").Label())
	assert.False(t, HorizonClass("").Valid())
	assert.True(t, IndexerPre.Valid())
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		record NormalizedRecord
		want   string
	}{
		{"both", NormalizedRecord{Product: "CDB", Issuer: "Banco X"}, "CDB Banco X"},
		{"product only", NormalizedRecord{Product: "LCA"}, "LCA"},
		{"issuer only", NormalizedRecord{Issuer: "Banco Y"}, "Banco Y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.DisplayName())
		})
	}
}
