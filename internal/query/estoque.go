package query

import (
	"sort"
	"time"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
)

// MovimentacaoFilter narrows the stock movement report. Motivo only applies
// to exits; entries pass through a motivo filter untouched by design of the
// source reports (an entry has no motivo to match).
type MovimentacaoFilter struct {
	DataInicial string `form:"dataInicial"`
	DataFinal   string `form:"dataFinal"`
	ProdutoID   int64  `form:"produtoId"`
	Tipo        string `form:"tipo"`
	Motivo      string `form:"motivo"`
}

// FilterMovimentacoes applies the filter; newest movements first.
func FilterMovimentacoes(movs []model.Movimentacao, f MovimentacaoFilter) []model.Movimentacao {
	out := make([]model.Movimentacao, 0, len(movs))
	for _, m := range movs {
		if f.DataInicial != "" && m.Data < f.DataInicial {
			continue
		}
		if f.DataFinal != "" && m.Data > f.DataFinal {
			continue
		}
		if f.ProdutoID != 0 && m.ProdutoID != f.ProdutoID {
			continue
		}
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		if f.Motivo != "" && m.Tipo == model.TipoSaida && m.Motivo != f.Motivo {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Data == out[j].Data {
			return out[i].ID > out[j].ID
		}
		return out[i].Data > out[j].Data
	})
	return out
}

// EstoqueStats is the stock dashboard summary.
type EstoqueStats struct {
	TotalProdutos      int `json:"totalProdutos"`
	TotalUnidades      int `json:"totalUnidades"`
	ProdutosEmAlerta   int `json:"produtosEmAlerta"`
	LotesVencendo      int `json:"lotesVencendo"`
	TotalMovimentacoes int `json:"totalMovimentacoes"`
}

func StockStats(produtos []model.Produto, movs []model.Movimentacao, now time.Time) EstoqueStats {
	s := EstoqueStats{TotalProdutos: len(produtos), TotalMovimentacoes: len(movs)}
	for _, p := range produtos {
		s.TotalUnidades += p.TotalEstoque()
		if p.AbaixoDoMinimo() {
			s.ProdutosEmAlerta++
		}
	}
	s.LotesVencendo = len(LotesVencendo(produtos, 30, now))
	return s
}

// AlertaEstoque flags a product at or below its minimum stock.
type AlertaEstoque struct {
	ProdutoID     int64  `json:"produtoId"`
	Produto       string `json:"produto"`
	Categoria     string `json:"categoria"`
	EstoqueAtual  int    `json:"estoqueAtual"`
	EstoqueMinimo int    `json:"estoqueMinimo"`
}

func AlertasEstoque(produtos []model.Produto) []AlertaEstoque {
	var out []AlertaEstoque
	for _, p := range produtos {
		if p.AbaixoDoMinimo() {
			out = append(out, AlertaEstoque{
				ProdutoID:     p.ID,
				Produto:       p.Nome,
				Categoria:     p.Categoria,
				EstoqueAtual:  p.TotalEstoque(),
				EstoqueMinimo: p.EstoqueMinimo,
			})
		}
	}
	return out
}

// LoteVencendo is a lot close to (or past) its expiry date.
type LoteVencendo struct {
	ProdutoID      int64  `json:"produtoId"`
	Produto        string `json:"produto"`
	Lote           string `json:"lote"`
	Validade       string `json:"validade"`
	Quantidade     int    `json:"quantidade"`
	DiasParaVencer int    `json:"diasParaVencer"`
}

// LotesVencendo lists lots expiring within the next `dias` days, soonest
// first. Lots with unparseable expiry dates are skipped.
func LotesVencendo(produtos []model.Produto, dias int, now time.Time) []LoteVencendo {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var out []LoteVencendo
	for _, p := range produtos {
		for _, l := range p.Lotes {
			validade, err := time.Parse("2006-01-02", l.Validade)
			if err != nil {
				continue
			}
			restam := int(validade.Sub(today).Hours() / 24)
			if restam <= dias {
				out = append(out, LoteVencendo{
					ProdutoID:      p.ID,
					Produto:        p.Nome,
					Lote:           l.Numero,
					Validade:       l.Validade,
					Quantidade:     l.Quantidade,
					DiasParaVencer: restam,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Validade < out[j].Validade })
	return out
}

// OrdenarLotesPorValidade returns lots soonest-to-expire first, the order the
// exit form offers them in.
func OrdenarLotesPorValidade(lotes []model.Lote) []model.Lote {
	out := make([]model.Lote, len(lotes))
	copy(out, lotes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Validade < out[j].Validade })
	return out
}

// CategoriaResumo accumulates movement quantities per product category.
type CategoriaResumo struct {
	Categoria string `json:"categoria"`
	Entradas  int    `json:"entradas"`
	Saidas    int    `json:"saidas"`
}

// ResumoPorCategoria resolves each movement's product to its category and
// totals entry and exit quantities. Movements whose product no longer exists
// fall under "Outros".
func ResumoPorCategoria(produtos []model.Produto, movs []model.Movimentacao) []CategoriaResumo {
	catByProduto := make(map[int64]string, len(produtos))
	for _, p := range produtos {
		catByProduto[p.ID] = p.Categoria
	}

	acc := map[string]*CategoriaResumo{}
	for _, m := range movs {
		cat, ok := catByProduto[m.ProdutoID]
		if !ok {
			cat = model.CategoriaOutros
		}
		r, ok := acc[cat]
		if !ok {
			r = &CategoriaResumo{Categoria: cat}
			acc[cat] = r
		}
		if m.Tipo == model.TipoEntrada {
			r.Entradas += m.Quantidade
		} else {
			r.Saidas += m.Quantidade
		}
	}

	out := make([]CategoriaResumo, 0, len(acc))
	for _, r := range acc {
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Entradas+out[i].Saidas, out[j].Entradas+out[j].Saidas
		if ti == tj {
			return out[i].Categoria < out[j].Categoria
		}
		return ti > tj
	})
	return out
}

// PeriodoResumo totals a filtered movement set for report footers.
type PeriodoResumo struct {
	TotalEntradas int `json:"totalEntradas"`
	TotalSaidas   int `json:"totalSaidas"`
	Movimentacoes int `json:"movimentacoes"`
}

func ResumoPeriodo(movs []model.Movimentacao) PeriodoResumo {
	r := PeriodoResumo{Movimentacoes: len(movs)}
	for _, m := range movs {
		if m.Tipo == model.TipoEntrada {
			r.TotalEntradas += m.Quantidade
		} else {
			r.TotalSaidas += m.Quantidade
		}
	}
	return r
}
