package presentation

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfdestaques/internal/selection"
	"rfdestaques/pkg/contracts/domain"
)

var runDate = time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestFormatCurrencyBRL(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil", nil, ""},
		{"nan", ptr(math.NaN()), ""},
		{"zero", ptr(0.0), "R$ 0"},
		{"hundreds", ptr(999.0), "R$ 999"},
		{"thousands", ptr(25000.0), "R$ 25.000"},
		{"millions", ptr(1234567.4), "R$ 1.234.567"},
		{"half to even down", ptr(1000.5), "R$ 1.000"},
		{"half to even up", ptr(1001.5), "R$ 1.002"},
		{"round up", ptr(4999.6), "R$ 5.000"},
		{"negative", ptr(-1500.0), "R$ -1.500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrencyBRL(tt.in))
		})
	}
}

func TestFormatDateBR(t *testing.T) {
	assert.Equal(t, "", FormatDateBR(nil))
	assert.Equal(t, "05/03/2027", FormatDateBR(ptr(time.Date(2027, time.March, 5, 0, 0, 0, 0, time.UTC))))
}

func TestRatePolicyFormat(t *testing.T) {
	p := DefaultRatePolicy()

	tests := []struct {
		v    float64
		idx  domain.IndexerClass
		want string
	}{
		{1.10, domain.IndexerPostCDI, "110,00%"},
		{2, domain.IndexerPostCDI, "200,00%"},
		{2.01, domain.IndexerPostCDI, "2,01%"},
		{115, domain.IndexerPostCDI, "115,00%"},
		{1050, domain.IndexerPostCDI, "1.050,00%"},
		{0.072, domain.IndexerIPCA, "7,20%"},
		{6.5, domain.IndexerIPCA, "6,50%"},
		{13.2, domain.IndexerPre, "13,20%"},
		{1.5, domain.IndexerPre, "150,00%"},
		{1.51, domain.IndexerPre, "1,51%"},
		{1200, domain.IndexerPre, "1200,00%"},
		{math.NaN(), domain.IndexerPre, ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Format(tt.v, tt.idx))
		})
	}
}

func TestRatePolicyOverride(t *testing.T) {
	p := RatePolicy{PostCDIFractionMax: 0, OtherFractionMax: 0}
	assert.Equal(t, "1,10%", p.Format(1.10, domain.IndexerPostCDI))
	assert.Equal(t, "0,07%", p.Format(0.072, domain.IndexerIPCA))
}

func bankRecords() []domain.NormalizedRecord {
	return []domain.NormalizedRecord{
		{
			Kind: domain.AssetBankCredit, Issuer: "Banco A", Product: "CDB", IndexerRaw: "CDI",
			Indexer: domain.IndexerPostCDI, Rate: 115, TermDays: 400, Horizon: domain.HorizonMedium,
			Maturity: ptr(time.Date(2027, time.November, 17, 0, 0, 0, 0, time.UTC)), MinInvestment: ptr(1000.0),
		},
		{
			Kind: domain.AssetBankCredit, Issuer: "Banco B", Product: "LCA", IndexerRaw: "IPCA",
			Indexer: domain.IndexerIPCA, Rate: 6.5, TermDays: 900, Horizon: domain.HorizonMedium,
			Maturity: ptr(time.Date(2029, time.April, 1, 0, 0, 0, 0, time.UTC)), MinInvestment: ptr(5000.0),
		},
		{
			Kind: domain.AssetBankCredit, Issuer: "Banco C", Product: "LCI", IndexerRaw: "PRÉ",
			Indexer: domain.IndexerPre, Rate: 13.2, TermDays: 200, Horizon: domain.HorizonShort,
			Maturity: ptr(time.Date(2027, time.May, 2, 0, 0, 0, 0, time.UTC)),
		},
	}
}

func TestBankMessage_OmitEmpty(t *testing.T) {
	b := NewMessageBuilder(runDate)

	want := "*Destaques de ativos Bancários*\n" +
		"🚨*TAXAS DE HOJE (14/10/2026)*\n\n" +
		"📍*PÓS-FIXADOS*\n\n" +
		"*Médio Prazo (361 a 1080d)*\n\n" +
		"🏦*CDB Banco A*\n" +
		"⏰ Vencimento: 17/11/2027\n" +
		"📈 Taxa: 115,00%\n" +
		"💰mínimo: R$ 1.000\n" +
		"\n" +
		"\n"
	assert.Equal(t, want, b.BankMessage(bankRecords(), domain.IndexerPostCDI))
}

func TestBankMessage_ShowEmpty(t *testing.T) {
	b := NewMessageBuilder(runDate)
	b.OmitEmptyBuckets = false

	msg := b.BankMessage(bankRecords(), domain.IndexerIPCA)
	assert.Contains(t, msg, "📍*IPCA*\n\n")
	assert.Contains(t, msg, "*Curto Prazo (até 360d)*\n\n- (sem ativos hoje)\n\n")
	assert.Contains(t, msg, "📈 Taxa: IPCA+ 6,50%\n")
	assert.Contains(t, msg, "*Longo Prazo (acima de 1080d)*\n\n- (sem ativos hoje)\n\n")
	assert.Less(t, strings.Index(msg, "Curto Prazo"), strings.Index(msg, "Médio Prazo"))
}

func TestBankMessage_NoRecords(t *testing.T) {
	b := NewMessageBuilder(runDate)
	msg := b.BankMessage(nil, domain.IndexerPre)
	assert.Equal(t, "*Destaques de ativos Bancários*\n🚨*TAXAS DE HOJE (14/10/2026)*\n\n📍*PRÉ-FIXADOS*\n\n", msg)
}

func TestBankMessage_MissingMinimum(t *testing.T) {
	b := NewMessageBuilder(runDate)
	msg := b.BankMessage(bankRecords(), domain.IndexerPre)
	assert.Contains(t, msg, "🏦*LCI Banco C*\n⏰ Vencimento: 02/05/2027\n📈 Taxa: 13,20%\n💰mínimo: \n")
}

func TestBankMessage_TopNLimit(t *testing.T) {
	records := make([]domain.NormalizedRecord, 0, 8)
	for i := 0; i < 8; i++ {
		records = append(records, domain.NormalizedRecord{
			Issuer: string(rune('A' + i)), Product: "CDB",
			Indexer: domain.IndexerPre, Horizon: domain.HorizonLong, Rate: float64(10 + i),
		})
	}
	b := NewMessageBuilder(runDate)
	msg := b.BankMessage(records, domain.IndexerPre)
	assert.Equal(t, DefaultMessageTopN, strings.Count(msg, "🏦"))
	assert.Contains(t, msg, "CDB H")
	assert.NotContains(t, msg, "CDB A*")
}

func publicRecords() []domain.NormalizedRecord {
	return []domain.NormalizedRecord{
		{Kind: domain.AssetPublicBond, Title: "NTN-B 2035", Indexer: domain.IndexerIPCA, Rate: 7.45, TermDays: 3135,
			Horizon: domain.HorizonLong, Maturity: ptr(time.Date(2035, time.May, 15, 0, 0, 0, 0, time.UTC))},
		{Kind: domain.AssetPublicBond, Title: "NTN-B 2030", Indexer: domain.IndexerIPCA, Rate: 7.6, TermDays: 1309,
			Horizon: domain.HorizonLong, Maturity: ptr(time.Date(2030, time.May, 15, 0, 0, 0, 0, time.UTC))},
	}
}

func TestPublicMessage(t *testing.T) {
	b := NewMessageBuilder(runDate)

	want := "*Destaques de Títulos Públicos*\n" +
		"🚨*TAXAS DE HOJE (14/10/2026)*\n\n" +
		"📍*TESOURO IPCA+ (NTN-B)*\n\n" +
		"*Longo Prazo (acima de 1080d)*\n\n" +
		"🏛️*NTN-B 2030*\n⏰ Vencimento: 15/05/2030\n📈 Taxa: IPCA+ 7,60%\n\n" +
		"🏛️*NTN-B 2035*\n⏰ Vencimento: 15/05/2035\n📈 Taxa: IPCA+ 7,45%\n\n" +
		"\n"
	assert.Equal(t, want, b.PublicMessage(publicRecords()))

	b.OmitEmptyBuckets = false
	assert.Contains(t, b.PublicMessage(nil), "*Curto Prazo (até 360d)*\n\n- (sem títulos hoje)\n\n")
}

func TestCombinedMessage(t *testing.T) {
	assert.Equal(t, "a\n\nb\n", CombinedMessage("a\n\n", "", "  \n", "b"))
	assert.Equal(t, "", CombinedMessage("", "\n"))
}

func TestMessages(t *testing.T) {
	b := NewMessageBuilder(runDate)

	set := b.Messages(bankRecords(), publicRecords())
	assert.Contains(t, set.PostCDI, "PÓS-FIXADOS")
	assert.Contains(t, set.Pre, "PRÉ-FIXADOS")
	assert.Contains(t, set.IPCA, "📍*IPCA*")
	assert.Contains(t, set.Public, "NTN-B 2035")
	assert.Equal(t, CombinedMessage(set.PostCDI, set.Pre, set.IPCA, set.Public), set.Combined)
	assert.Equal(t, []string{set.PostCDI, set.Pre, set.IPCA, set.Public}, set.Outbound())

	again := b.Messages(bankRecords(), publicRecords())
	assert.Equal(t, set, again, "rendering is deterministic")

	noPublic := b.Messages(bankRecords(), nil)
	assert.Empty(t, noPublic.Public)
	assert.Len(t, noPublic.Outbound(), 3)
}

func TestPreview(t *testing.T) {
	records := bankRecords()
	rows := Preview(records, 2, DefaultRatePolicy())
	require.Len(t, rows, 2)
	assert.Equal(t, PreviewRow{
		Issuer: "Banco A", Product: "CDB", Indexer: "CDI", Rate: "115,00%",
		MinInvestment: "R$ 1.000", Maturity: "17/11/2027", Horizon: "Médio (361 a 1080d)", TermDays: 400,
	}, rows[0])

	assert.Len(t, Preview(records, 0, DefaultRatePolicy()), 3)
}

func TestBucketTables(t *testing.T) {
	tables := BucketTables(selection.AllBuckets(bankRecords(), 5), DefaultRatePolicy())
	require.Len(t, tables, 9)
	assert.Equal(t, "Pós (CDI) | Curto (até 360d)", tables[0].Label)
	assert.Empty(t, tables[0].Rows)
	require.Len(t, tables[1].Rows, 1)
	assert.Equal(t, "Pós (CDI) | Médio (361 a 1080d)", tables[1].Rows[0].Block)
}

func TestPublicListing(t *testing.T) {
	rows := PublicListing(publicRecords(), DefaultRatePolicy())
	require.Len(t, rows, 2)
	assert.Equal(t, "NTN-B 2030", rows[0].Title)
	assert.Equal(t, "IPCA", rows[0].Indexer)
	assert.Equal(t, "7,60%", rows[0].Rate)
}
