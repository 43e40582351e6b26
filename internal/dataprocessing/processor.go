package dataprocessing

import (
	"log/slog"
	"strings"
	"time"

	"rfdestaques/internal/classify"
	"rfdestaques/internal/fields"
	"rfdestaques/pkg/contracts/domain"
)

// Normalizer turns sheet tables into classified records. Today anchors the
// maturity-to-term computation so a run is reproducible.
type Normalizer struct {
	Today   time.Time
	Indexer classify.IndexerRules
	logger  *slog.Logger
}

// NewNormalizer creates a normalizer anchored at today
func NewNormalizer(today time.Time, rules classify.IndexerRules, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		Today:   today,
		Indexer: rules,
		logger:  logger.With(slog.String("component", "normalizer")),
	}
}

// NormalizeBank resolves the bank-credit columns once and classifies every
// row. Rows without a rate, indexer class or horizon are dropped.
func (n *Normalizer) NormalizeBank(t *Table) (*NormalizationResult, error) {
	res, err := Resolve(t.Sheet, t.Headers, BankCreditProfile())
	if err != nil {
		return nil, err
	}

	out := n.newResult(t, res)
	termCol, hasTerm := res.Column(RoleTerm)

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		rateCell := n.cell(row, res, RoleRate)
		indexerRaw := strings.TrimSpace(n.cell(row, res, RoleIndexer).String())

		rate, ok := fields.ParseRate(rateCell)
		if !ok {
			n.drop(out, row, DropMissingRate)
			continue
		}
		indexer, ok := n.Indexer.Classify(indexerRaw)
		if !ok {
			n.drop(out, row, DropMissingIndexer)
			continue
		}

		maturity := n.maturity(row, res)
		var days float64
		var haveDays bool
		if hasTerm {
			days, haveDays = fields.ParseNumber(row.Cell(termCol))
		} else if maturity != nil {
			days, haveDays = float64(fields.DaysBetween(n.Today, *maturity)), true
		}
		if !haveDays {
			n.drop(out, row, DropMissingHorizon)
			continue
		}
		horizon, ok := classify.CategorizeHorizon(days)
		if !ok {
			n.drop(out, row, DropMissingHorizon)
			continue
		}

		rec := domain.NormalizedRecord{
			Kind:       domain.AssetBankCredit,
			Row:        row.SourceRow(),
			Issuer:     strings.TrimSpace(n.cell(row, res, RoleIssuer).String()),
			Product:    strings.TrimSpace(n.cell(row, res, RoleProduct).String()),
			IndexerRaw: indexerRaw,
			Indexer:    indexer,
			RateRaw:    strings.TrimSpace(rateCell.String()),
			Rate:       rate,
			TermDays:   int(days),
			Horizon:    horizon,
			Maturity:   maturity,
		}
		if v, ok := fields.ParseNumber(n.cell(row, res, RoleMinInvestment)); ok {
			rec.MinInvestment = &v
		}
		if res.Has(RoleRating) {
			rec.RatingRaw = strings.TrimSpace(n.cell(row, res, RoleRating).String())
			if score, ok := classify.RatingScore(rec.RatingRaw); ok {
				rec.RatingScore = &score
			}
		}
		out.Records = append(out.Records, rec)
	}

	n.logSummary(out)
	return out, nil
}

// NormalizePublic keeps only NTN-B titles. They are IPCA-linked by
// definition and their term always comes from the maturity date.
func (n *Normalizer) NormalizePublic(t *Table) (*NormalizationResult, error) {
	res, err := Resolve(t.Sheet, t.Headers, PublicBondProfile())
	if err != nil {
		return nil, err
	}

	out := n.newResult(t, res)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		title := strings.TrimSpace(n.cell(row, res, RoleTitle).String())
		if !strings.Contains(strings.ToUpper(title), "NTN-B") {
			n.drop(out, row, DropNotNTNB)
			continue
		}

		rateCell := n.cell(row, res, RoleRate)
		rate, ok := fields.ParseRate(rateCell)
		if !ok {
			n.drop(out, row, DropMissingRate)
			continue
		}

		maturity := n.maturity(row, res)
		if maturity == nil {
			n.drop(out, row, DropMissingHorizon)
			continue
		}
		days := fields.DaysBetween(n.Today, *maturity)
		horizon, ok := classify.CategorizeHorizon(float64(days))
		if !ok {
			n.drop(out, row, DropMissingHorizon)
			continue
		}

		out.Records = append(out.Records, domain.NormalizedRecord{
			Kind:       domain.AssetPublicBond,
			Row:        row.SourceRow(),
			Title:      title,
			IndexerRaw: "IPCA",
			Indexer:    domain.IndexerIPCA,
			RateRaw:    strings.TrimSpace(rateCell.String()),
			Rate:       rate,
			TermDays:   days,
			Horizon:    horizon,
			Maturity:   maturity,
		})
	}

	n.logSummary(out)
	return out, nil
}

func (n *Normalizer) newResult(t *Table, res Resolution) *NormalizationResult {
	return &NormalizationResult{
		Sheet:      t.Sheet,
		Headers:    t.Headers,
		Resolution: res,
		RowsRead:   t.Len(),
		Records:    make([]domain.NormalizedRecord, 0, t.Len()),
		Dropped:    make(DropStats),
	}
}

func (n *Normalizer) cell(row RawRow, res Resolution, role ColumnRole) domain.Cell {
	col, ok := res.Column(role)
	if !ok {
		return domain.Cell{}
	}
	return row.Cell(col)
}

func (n *Normalizer) maturity(row RawRow, res Resolution) *time.Time {
	t, ok := fields.ParseDate(n.cell(row, res, RoleMaturity))
	if !ok {
		return nil
	}
	return &t
}

func (n *Normalizer) drop(out *NormalizationResult, row RawRow, reason DropReason) {
	out.Dropped[reason]++
	n.logger.Debug("row dropped",
		slog.String("sheet", out.Sheet),
		slog.Int("row", row.SourceRow()),
		slog.String("reason", string(reason)))
}

func (n *Normalizer) logSummary(out *NormalizationResult) {
	n.logger.Info("sheet normalized",
		slog.String("sheet", out.Sheet),
		slog.Int("rows_read", out.RowsRead),
		slog.Int("records", len(out.Records)),
		slog.Int("dropped", out.Dropped.Total()))
}
