// Package query holds the pure, side-effect-free functions that turn a
// point-in-time collection snapshot into filtered, sorted and aggregated
// views. Nothing here touches storage or mutates its input; malformed dates
// in stored data are skipped or pushed aside, never a reason to fail.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
)

// PagamentoFilter is a set of independently-optional criteria. Supplied
// criteria AND together; zero values are no-ops.
type PagamentoFilter struct {
	Nome        string `form:"nome"`
	DataInicial string `form:"dataInicial"`
	DataFinal   string `form:"dataFinal"`
	Status      string `form:"status"`
	Historico   string `form:"historico"`
	Ano         string `form:"ano"`
}

// FilterPagamentos applies the filter and returns a new slice in canonical
// order (most recent date first, higher id first on ties).
func FilterPagamentos(records []model.Pagamento, f PagamentoFilter) []model.Pagamento {
	out := make([]model.Pagamento, 0, len(records))
	for _, p := range records {
		if f.Nome != "" && p.Nome != f.Nome {
			continue
		}
		if f.DataInicial != "" && p.Data < f.DataInicial {
			continue
		}
		if f.DataFinal != "" && p.Data > f.DataFinal {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Historico != "" && !strings.Contains(strings.ToLower(p.Historico), strings.ToLower(f.Historico)) {
			continue
		}
		if f.Ano != "" && !strings.HasPrefix(p.Data, f.Ano) {
			continue
		}
		out = append(out, p)
	}
	return SortPagamentos(out)
}

// SortPagamentos returns a copy in canonical order: date descending, id
// descending on equal dates. ISO dates compare lexicographically, so
// malformed ones simply sort wherever their text places them.
func SortPagamentos(records []model.Pagamento) []model.Pagamento {
	out := make([]model.Pagamento, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Data == out[j].Data {
			return out[i].ID > out[j].ID
		}
		return out[i].Data > out[j].Data
	})
	return out
}

// PagamentoStats summarizes a collection. StartDate/EndDate are nil for an
// empty input; Average is zero rather than a division by zero.
type PagamentoStats struct {
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
	Average   decimal.Decimal `json:"average"`
	StartDate *string         `json:"startDate"`
	EndDate   *string         `json:"endDate"`
	MinValue  decimal.Decimal `json:"minValue"`
	MaxValue  decimal.Decimal `json:"maxValue"`
}

func Statistics(records []model.Pagamento) PagamentoStats {
	if len(records) == 0 {
		return PagamentoStats{}
	}

	total := decimal.Zero
	min := records[0].Valor
	max := records[0].Valor
	datas := make([]string, 0, len(records))
	for _, p := range records {
		total = total.Add(p.Valor)
		if p.Valor.LessThan(min) {
			min = p.Valor
		}
		if p.Valor.GreaterThan(max) {
			max = p.Valor
		}
		datas = append(datas, p.Data)
	}
	sort.Strings(datas)

	start := datas[0]
	end := datas[len(datas)-1]
	return PagamentoStats{
		Total:     total,
		Count:     len(records),
		Average:   total.Div(decimal.NewFromInt(int64(len(records)))).Round(2),
		StartDate: &start,
		EndDate:   &end,
		MinValue:  min,
		MaxValue:  max,
	}
}

// AnnualRow is one payee line of the annual pivot; Values aligns with the
// summary's Months axis.
type AnnualRow struct {
	Nome   string            `json:"nome"`
	Values []decimal.Decimal `json:"values"`
	Total  decimal.Decimal   `json:"total"`
}

// AnnualSummary is the nome × mês pivot behind the annual report: month
// columns ascending chronologically, payee rows alphabetical (locale-aware),
// plus per-row and grand totals.
type AnnualSummary struct {
	Months []string        `json:"months"` // "MM/YYYY"
	Rows   []AnnualRow     `json:"rows"`
	Total  decimal.Decimal `json:"total"`
}

func BuildAnnualSummary(records []model.Pagamento, ano string) AnnualSummary {
	monthSet := map[string]bool{}
	nameSet := map[string]bool{}
	var yearData []model.Pagamento
	for _, p := range records {
		if !strings.HasPrefix(p.Data, ano) || len(p.Data) < 7 {
			continue
		}
		yearData = append(yearData, p)
		monthSet[p.Data[5:7]] = true
		nameSet[p.Nome] = true
	}

	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	names := make([]string, 0, len(nameSet))
	for n := range nameSet {
		names = append(names, n)
	}
	sortAlphabetically(names)

	monthIdx := make(map[string]int, len(months))
	for i, m := range months {
		monthIdx[m] = i
	}

	byName := make(map[string]*AnnualRow, len(names))
	rows := make([]AnnualRow, len(names))
	for i, n := range names {
		rows[i] = AnnualRow{Nome: n, Values: make([]decimal.Decimal, len(months))}
		byName[n] = &rows[i]
	}

	total := decimal.Zero
	for _, p := range yearData {
		row := byName[p.Nome]
		row.Values[monthIdx[p.Data[5:7]]] = row.Values[monthIdx[p.Data[5:7]]].Add(p.Valor)
		row.Total = row.Total.Add(p.Valor)
		total = total.Add(p.Valor)
	}

	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = m + "/" + ano
	}
	return AnnualSummary{Months: labels, Rows: rows, Total: total}
}

// NomeTotal is a payee with its accumulated value, used by chart consumers.
type NomeTotal struct {
	Nome  string          `json:"nome"`
	Total decimal.Decimal `json:"total"`
}

// TotaisPorNome groups by payee, largest contributor first.
func TotaisPorNome(records []model.Pagamento) []NomeTotal {
	acc := map[string]decimal.Decimal{}
	for _, p := range records {
		acc[p.Nome] = acc[p.Nome].Add(p.Valor)
	}
	out := make([]NomeTotal, 0, len(acc))
	for nome, total := range acc {
		out = append(out, NomeTotal{Nome: nome, Total: total})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total.Equal(out[j].Total) {
			return out[i].Nome < out[j].Nome
		}
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// NomesUnicos lists distinct payee names alphabetically, for selection lists.
func NomesUnicos(records []model.Pagamento) []string {
	set := map[string]bool{}
	for _, p := range records {
		set[p.Nome] = true
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sortAlphabetically(out)
	return out
}

var ptCollator = collate.New(language.BrazilianPortuguese, collate.IgnoreCase)

func sortAlphabetically(names []string) {
	ptCollator.SortStrings(names)
}

// IsValidDate reports whether s is a real calendar date in ISO form.
func IsValidDate(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
