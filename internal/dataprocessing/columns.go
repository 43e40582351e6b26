package dataprocessing

import (
	"strings"

	"rfdestaques/internal/classify"
	apperrors "rfdestaques/internal/errors"
)

// ColumnRole is a semantic column the normalizer needs
type ColumnRole string

const (
	RoleIssuer        ColumnRole = "issuer"
	RoleProduct       ColumnRole = "product"
	RoleIndexer       ColumnRole = "indexer"
	RoleRate          ColumnRole = "rate"
	RoleTerm          ColumnRole = "term"
	RoleMaturity      ColumnRole = "maturity"
	RoleMinInvestment ColumnRole = "min_investment"
	RoleRating        ColumnRole = "rating"
	RoleTitle         ColumnRole = "title"
)

// Requirement is satisfied when any of its roles resolves
type Requirement struct {
	Label string
	AnyOf []ColumnRole
}

// AliasTable lists, per role, the header texts to look for in priority order
type AliasTable map[ColumnRole][]string

// ColumnProfile describes how to find the columns of one kind of sheet
type ColumnProfile struct {
	Aliases      AliasTable
	Roles        []ColumnRole
	Requirements []Requirement
}

// BankCreditProfile matches the bank-issued credit sheet
func BankCreditProfile() ColumnProfile {
	return ColumnProfile{
		Aliases: AliasTable{
			RoleIssuer:        {"Emissor", "Banco", "Instituição"},
			RoleProduct:       {"Produto", "Ativo"},
			RoleIndexer:       {"Indexador", "Remuneração", "Benchmark"},
			RoleRate:          {"Tx. Portal", "Taxa Portal", "Tx. Máxima", "Taxa Máxima", "Taxa"},
			RoleTerm:          {"Prazo (dias)", "Prazo", "Dias"},
			RoleMaturity:      {"Vencimento", "Data Vencimento", "Dt. Vencimento"},
			RoleMinInvestment: {"Aplicação mínima", "Aplicação", "mínima", "Mínimo"},
			RoleRating:        {"Rating", "Classificação", "Nota"},
		},
		Roles: []ColumnRole{
			RoleIssuer, RoleProduct, RoleIndexer, RoleRate, RoleTerm,
			RoleMaturity, RoleMinInvestment, RoleRating,
		},
		Requirements: []Requirement{
			{Label: "Emissor", AnyOf: []ColumnRole{RoleIssuer}},
			{Label: "Produto", AnyOf: []ColumnRole{RoleProduct}},
			{Label: "Indexador", AnyOf: []ColumnRole{RoleIndexer}},
			{Label: "Tx. Portal/Taxa Portal", AnyOf: []ColumnRole{RoleRate}},
			{Label: "Prazo ou Vencimento", AnyOf: []ColumnRole{RoleTerm, RoleMaturity}},
			{Label: "Aplicação mínima", AnyOf: []ColumnRole{RoleMinInvestment}},
			{Label: "Vencimento", AnyOf: []ColumnRole{RoleMaturity}},
		},
	}
}

// PublicBondProfile matches the public-bond (Tesouro) sheet
func PublicBondProfile() ColumnProfile {
	return ColumnProfile{
		Aliases: AliasTable{
			RoleTitle:    {"Título"},
			RoleMaturity: {"Vencimento"},
			RoleRate:     {"Taxa do portal às 10h", "Taxa do portal"},
		},
		Roles: []ColumnRole{RoleTitle, RoleMaturity, RoleRate},
		Requirements: []Requirement{
			{Label: "Título", AnyOf: []ColumnRole{RoleTitle}},
			{Label: "Vencimento", AnyOf: []ColumnRole{RoleMaturity}},
			{Label: "Taxa do portal", AnyOf: []ColumnRole{RoleRate}},
		},
	}
}

// Resolution maps each resolved role to a column index
type Resolution struct {
	Columns map[ColumnRole]int    `json:"columns"`
	Headers map[ColumnRole]string `json:"headers"`
}

// Column returns the column index for role
func (r Resolution) Column(role ColumnRole) (int, bool) {
	col, ok := r.Columns[role]
	return col, ok
}

// Has reports whether role resolved
func (r Resolution) Has(role ColumnRole) bool {
	_, ok := r.Columns[role]
	return ok
}

// Resolve matches headers against the profile's aliases. For each role the
// aliases are tried in priority order; per alias an exact match anywhere in
// the header row beats a substring match, and the leftmost header wins ties.
// Comparison ignores case and accents.
func Resolve(sheet string, headers []string, profile ColumnProfile) (Resolution, error) {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = classify.Fold(h)
	}

	res := Resolution{
		Columns: make(map[ColumnRole]int),
		Headers: make(map[ColumnRole]string),
	}
	for _, role := range profile.Roles {
		if col, ok := matchAliases(folded, profile.Aliases[role]); ok {
			res.Columns[role] = col
			res.Headers[role] = headers[col]
		}
	}

	var missing []string
	for _, req := range profile.Requirements {
		satisfied := false
		for _, role := range req.AnyOf {
			if res.Has(role) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			missing = append(missing, req.Label)
		}
	}
	if len(missing) > 0 {
		detected := make([]string, 0, len(headers))
		for _, h := range headers {
			if h != "" {
				detected = append(detected, h)
			}
		}
		return res, apperrors.NewMissingColumnsError(sheet, missing, detected)
	}

	return res, nil
}

func matchAliases(folded []string, aliases []string) (int, bool) {
	for _, alias := range aliases {
		want := classify.Fold(alias)
		if want == "" {
			continue
		}
		for col, h := range folded {
			if h == want {
				return col, true
			}
		}
		for col, h := range folded {
			if h != "" && strings.Contains(h, want) {
				return col, true
			}
		}
	}
	return 0, false
}
