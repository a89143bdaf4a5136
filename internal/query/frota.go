package query

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
)

// RecomputeVeiculo returns v with its derived aggregates rebuilt from the
// fills that reference it. With no fills the aggregates reset to zero/nil.
func RecomputeVeiculo(v model.Veiculo, fills []model.Abastecimento) model.Veiculo {
	v.TotalGasto = decimal.Zero
	v.TotalLitros = decimal.Zero
	v.UltimoAbastecimento = nil

	var last string
	for _, a := range fills {
		if a.VeiculoID != v.ID {
			continue
		}
		v.TotalGasto = v.TotalGasto.Add(a.ValorTotal)
		v.TotalLitros = v.TotalLitros.Add(a.Litros)
		if a.Data > last {
			last = a.Data
		}
	}
	if last != "" {
		v.UltimoAbastecimento = &last
	}
	return v
}

// AbastecimentoFilter narrows the fill listing.
type AbastecimentoFilter struct {
	VeiculoID   int64  `form:"veiculoId"`
	Combustivel string `form:"combustivel"`
	DataInicial string `form:"dataInicial"`
	DataFinal   string `form:"dataFinal"`
}

// FilterAbastecimentos applies the filter and sorts newest first.
func FilterAbastecimentos(fills []model.Abastecimento, f AbastecimentoFilter) []model.Abastecimento {
	out := make([]model.Abastecimento, 0, len(fills))
	for _, a := range fills {
		if f.VeiculoID != 0 && a.VeiculoID != f.VeiculoID {
			continue
		}
		if f.Combustivel != "" && a.Combustivel != f.Combustivel {
			continue
		}
		if f.DataInicial != "" && a.Data < f.DataInicial {
			continue
		}
		if f.DataFinal != "" && a.Data > f.DataFinal {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Data == out[j].Data {
			return out[i].ID > out[j].ID
		}
		return out[i].Data > out[j].Data
	})
	return out
}

// FrotaStats is the fleet dashboard summary.
type FrotaStats struct {
	TotalVeiculos       int             `json:"totalVeiculos"`
	TotalAbastecimentos int             `json:"totalAbastecimentos"`
	TotalGasto          decimal.Decimal `json:"totalGasto"`
	TotalLitros         decimal.Decimal `json:"totalLitros"`
	PrecoMedioLitro     decimal.Decimal `json:"precoMedioLitro"`
	UltimoAbastecimento *string         `json:"ultimoAbastecimento"`
}

// FleetStats aggregates over all vehicles and fills. The per-liter average is
// zero when no liters were recorded.
func FleetStats(veiculos []model.Veiculo, fills []model.Abastecimento) FrotaStats {
	s := FrotaStats{
		TotalVeiculos:       len(veiculos),
		TotalAbastecimentos: len(fills),
		TotalGasto:          decimal.Zero,
		TotalLitros:         decimal.Zero,
		PrecoMedioLitro:     decimal.Zero,
	}
	var last string
	for _, a := range fills {
		s.TotalGasto = s.TotalGasto.Add(a.ValorTotal)
		s.TotalLitros = s.TotalLitros.Add(a.Litros)
		if a.Data > last {
			last = a.Data
		}
	}
	if s.TotalLitros.IsPositive() {
		s.PrecoMedioLitro = s.TotalGasto.Div(s.TotalLitros).Round(2)
	}
	if last != "" {
		s.UltimoAbastecimento = &last
	}
	return s
}

// VeiculoGasto ranks one vehicle by accumulated spend.
type VeiculoGasto struct {
	Veiculo     string          `json:"veiculo"`
	TotalGasto  decimal.Decimal `json:"totalGasto"`
	TotalLitros decimal.Decimal `json:"totalLitros"`
	MediaLitro  decimal.Decimal `json:"mediaLitro"`
}

// GastosPorVeiculo orders vehicles by spend, largest first (chart axis).
func GastosPorVeiculo(veiculos []model.Veiculo) []VeiculoGasto {
	out := make([]VeiculoGasto, 0, len(veiculos))
	for _, v := range veiculos {
		g := VeiculoGasto{
			Veiculo:     v.Nome,
			TotalGasto:  v.TotalGasto,
			TotalLitros: v.TotalLitros,
			MediaLitro:  decimal.Zero,
		}
		if v.TotalLitros.IsPositive() {
			g.MediaLitro = v.TotalGasto.Div(v.TotalLitros).Round(2)
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalGasto.GreaterThan(out[j].TotalGasto)
	})
	return out
}

// MesTotal is one point of the monthly spend series.
type MesTotal struct {
	Mes   string          `json:"mes"` // "YYYY-MM"
	Total decimal.Decimal `json:"total"`
}

// EvolucaoMensal groups fill spend by month, ascending chronologically.
// Fills with dates too short to carry a month are skipped.
func EvolucaoMensal(fills []model.Abastecimento) []MesTotal {
	acc := map[string]decimal.Decimal{}
	for _, a := range fills {
		if len(a.Data) < 7 {
			continue
		}
		mes := a.Data[:7]
		acc[mes] = acc[mes].Add(a.ValorTotal)
	}
	out := make([]MesTotal, 0, len(acc))
	for mes, total := range acc {
		out = append(out, MesTotal{Mes: mes, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mes < out[j].Mes })
	return out
}

// CombustivelTotal is spend accumulated per fuel type.
type CombustivelTotal struct {
	Combustivel string          `json:"combustivel"`
	Total       decimal.Decimal `json:"total"`
	Litros      decimal.Decimal `json:"litros"`
}

// GastosPorCombustivel groups by fuel type, largest spend first.
func GastosPorCombustivel(fills []model.Abastecimento) []CombustivelTotal {
	type acc struct{ total, litros decimal.Decimal }
	m := map[string]*acc{}
	for _, a := range fills {
		e, ok := m[a.Combustivel]
		if !ok {
			e = &acc{total: decimal.Zero, litros: decimal.Zero}
			m[a.Combustivel] = e
		}
		e.total = e.total.Add(a.ValorTotal)
		e.litros = e.litros.Add(a.Litros)
	}
	out := make([]CombustivelTotal, 0, len(m))
	for c, e := range m {
		out = append(out, CombustivelTotal{Combustivel: c, Total: e.total, Litros: e.litros})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total.Equal(out[j].Total) {
			return out[i].Combustivel < out[j].Combustivel
		}
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}
