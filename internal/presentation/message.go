package presentation

import (
	"strings"
	"time"

	"rfdestaques/internal/selection"
	"rfdestaques/pkg/contracts/domain"
)

// DefaultMessageTopN is how many records per horizon a message card list shows
const DefaultMessageTopN = 5

// Templates holds the fixed text blocks of the outbound messages
type Templates struct {
	BankHeader     string
	PublicHeader   string
	TodayLine      string // %s receives the DD/MM/YYYY date
	PublicSection  string
	BankEmpty      string
	PublicEmpty    string
	IPCARatePrefix string
}

// DefaultTemplates returns the WhatsApp texts sent to client groups
func DefaultTemplates() Templates {
	return Templates{
		BankHeader:     "*Destaques de ativos Bancários*",
		PublicHeader:   "*Destaques de Títulos Públicos*",
		TodayLine:      "🚨*TAXAS DE HOJE (%s)*",
		PublicSection:  "TESOURO IPCA+ (NTN-B)",
		BankEmpty:      "- (sem ativos hoje)",
		PublicEmpty:    "- (sem títulos hoje)",
		IPCARatePrefix: "IPCA+ ",
	}
}

// sectionTitle is the "📍" heading of a bank message
func sectionTitle(idx domain.IndexerClass) string {
	switch idx {
	case domain.IndexerPostCDI:
		return "PÓS-FIXADOS"
	case domain.IndexerPre:
		return "PRÉ-FIXADOS"
	case domain.IndexerIPCA:
		return "IPCA"
	default:
		return ""
	}
}

// MessageBuilder renders selected records into WhatsApp-ready text
type MessageBuilder struct {
	Policy           RatePolicy
	OmitEmptyBuckets bool
	TopN             int
	Date             time.Time
	Templates        Templates
}

// NewMessageBuilder returns a builder with the default policy and templates,
// omitting empty horizons
func NewMessageBuilder(date time.Time) *MessageBuilder {
	return &MessageBuilder{
		Policy:           DefaultRatePolicy(),
		OmitEmptyBuckets: true,
		TopN:             DefaultMessageTopN,
		Date:             date,
		Templates:        DefaultTemplates(),
	}
}

// BankMessage renders the top records of one indexer, horizon by horizon
func (b *MessageBuilder) BankMessage(records []domain.NormalizedRecord, idx domain.IndexerClass) string {
	var sb strings.Builder
	b.writeHeader(&sb, b.Templates.BankHeader, sectionTitle(idx))

	prefix := ""
	if idx == domain.IndexerIPCA {
		prefix = b.Templates.IPCARatePrefix
	}

	for _, hz := range domain.Horizons() {
		top := selection.TopN(records, idx, hz, b.TopN)
		if !b.writeSectionStart(&sb, hz, len(top), b.Templates.BankEmpty) {
			continue
		}
		for _, r := range top {
			b.writeBankCard(&sb, r, prefix)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// PublicMessage lists every NTN-B by horizon, shortest maturity first
func (b *MessageBuilder) PublicMessage(records []domain.NormalizedRecord) string {
	var sb strings.Builder
	b.writeHeader(&sb, b.Templates.PublicHeader, b.Templates.PublicSection)

	for _, hz := range domain.Horizons() {
		listed := selection.ByTerm(records, hz)
		if !b.writeSectionStart(&sb, hz, len(listed), b.Templates.PublicEmpty) {
			continue
		}
		for _, r := range listed {
			sb.WriteString("🏛️*" + strings.TrimSpace(r.Title) + "*\n")
			sb.WriteString("⏰ Vencimento: " + FormatDateBR(r.Maturity) + "\n")
			sb.WriteString("📈 Taxa: IPCA+ " + b.Policy.Format(r.Rate, domain.IndexerIPCA) + "\n")
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *MessageBuilder) writeHeader(sb *strings.Builder, header, section string) {
	sb.WriteString(header + "\n")
	sb.WriteString(strings.Replace(b.Templates.TodayLine, "%s", FormatDateBR(&b.Date), 1) + "\n\n")
	sb.WriteString("📍*" + section + "*\n\n")
}

// writeSectionStart writes a horizon title, and the placeholder when the
// horizon is empty. It returns false when nothing more should be written.
func (b *MessageBuilder) writeSectionStart(sb *strings.Builder, hz domain.HorizonClass, count int, empty string) bool {
	if count == 0 && b.OmitEmptyBuckets {
		return false
	}
	sb.WriteString("*" + hz.Title() + "*\n\n")
	if count == 0 {
		sb.WriteString(empty + "\n\n")
		return false
	}
	return true
}

func (b *MessageBuilder) writeBankCard(sb *strings.Builder, r domain.NormalizedRecord, prefix string) {
	rate := b.Policy.Format(r.Rate, r.Indexer)
	if rate != "" {
		rate = prefix + rate
	}
	sb.WriteString("🏦*" + strings.TrimSpace(r.DisplayName()) + "*\n")
	sb.WriteString("⏰ Vencimento: " + FormatDateBR(r.Maturity) + "\n")
	sb.WriteString("📈 Taxa: " + rate + "\n")
	sb.WriteString("💰mínimo: " + FormatCurrencyBRL(r.MinInvestment) + "\n")
}

// CombinedMessage joins the non-blank messages with one blank line between
func CombinedMessage(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimRight(p, "\n"); strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n\n") + "\n"
}

// MessageSet is the full set of texts produced for one run
type MessageSet struct {
	PostCDI  string `json:"pos_cdi"`
	Pre      string `json:"pre"`
	IPCA     string `json:"ipca"`
	Public   string `json:"public,omitempty"`
	Combined string `json:"combined"`
}

// Outbound returns the messages in send order: Pós, Pré, IPCA, then NTN-B.
// Blank messages are skipped.
func (m MessageSet) Outbound() []string {
	out := make([]string, 0, 4)
	for _, msg := range []string{m.PostCDI, m.Pre, m.IPCA, m.Public} {
		if strings.TrimSpace(msg) != "" {
			out = append(out, msg)
		}
	}
	return out
}

// Messages builds one message per indexer plus the NTN-B listing. A nil
// public slice means the public sheet was not available and yields no
// public message.
func (b *MessageBuilder) Messages(bank, public []domain.NormalizedRecord) MessageSet {
	set := MessageSet{
		PostCDI: b.BankMessage(bank, domain.IndexerPostCDI),
		Pre:     b.BankMessage(bank, domain.IndexerPre),
		IPCA:    b.BankMessage(bank, domain.IndexerIPCA),
	}
	if public != nil {
		set.Public = b.PublicMessage(public)
	}
	set.Combined = CombinedMessage(set.PostCDI, set.Pre, set.IPCA, set.Public)
	return set
}
