package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
)

func TestFilterMovimentacoesMotivoOnlyAppliesToSaidas(t *testing.T) {
	movs := []model.Movimentacao{
		{ID: 1, Data: "2024-05-01", Tipo: model.TipoEntrada},
		{ID: 2, Data: "2024-05-02", Tipo: model.TipoSaida, Motivo: "venda"},
		{ID: 3, Data: "2024-05-03", Tipo: model.TipoSaida, Motivo: "vencimento"},
	}

	out := FilterMovimentacoes(movs, MovimentacaoFilter{Motivo: "venda"})
	require.Len(t, out, 2)
	// entries pass through a motivo filter, only non-matching exits drop
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, int64(1), out[1].ID)
}

func TestFilterMovimentacoesNewestFirst(t *testing.T) {
	movs := []model.Movimentacao{
		{ID: 1, Data: "2024-05-01", Tipo: model.TipoEntrada},
		{ID: 2, Data: "2024-05-03", Tipo: model.TipoEntrada},
		{ID: 3, Data: "2024-05-03", Tipo: model.TipoEntrada},
	}
	out := FilterMovimentacoes(movs, MovimentacaoFilter{})
	assert.Equal(t, []int64{3, 2, 1}, []int64{out[0].ID, out[1].ID, out[2].ID})
}

func TestAlertasEstoque(t *testing.T) {
	produtos := []model.Produto{
		{ID: 1, Nome: "Dipirona", EstoqueMinimo: 10, Lotes: []model.Lote{{Numero: "L1", Quantidade: 5}}},
		{ID: 2, Nome: "Amoxicilina", EstoqueMinimo: 10, Lotes: []model.Lote{{Numero: "L2", Quantidade: 50}}},
		{ID: 3, Nome: "Loratadina", EstoqueMinimo: 3, Lotes: nil},
	}
	alertas := AlertasEstoque(produtos)
	require.Len(t, alertas, 2)
	assert.Equal(t, "Dipirona", alertas[0].Produto)
	assert.Equal(t, 5, alertas[0].EstoqueAtual)
	assert.Equal(t, "Loratadina", alertas[1].Produto)
	assert.Equal(t, 0, alertas[1].EstoqueAtual)
}

func TestLotesVencendo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	produtos := []model.Produto{
		{ID: 1, Nome: "Dipirona", Lotes: []model.Lote{
			{Numero: "L1", Validade: "2024-06-20", Quantidade: 10},
			{Numero: "L2", Validade: "2024-09-01", Quantidade: 10},
			{Numero: "L3", Validade: "2024-06-05", Quantidade: 3},
			{Numero: "L4", Validade: "junho", Quantidade: 1}, // skipped
		}},
	}

	out := LotesVencendo(produtos, 30, now)
	require.Len(t, out, 2)
	assert.Equal(t, "L3", out[0].Lote, "soonest expiry first")
	assert.Equal(t, 4, out[0].DiasParaVencer)
	assert.Equal(t, "L1", out[1].Lote)
}

func TestResumoPorCategoriaUnknownProductFallsToOutros(t *testing.T) {
	produtos := []model.Produto{
		{ID: 1, Nome: "Dipirona", Categoria: "Analgésico"},
	}
	movs := []model.Movimentacao{
		{ID: 1, ProdutoID: 1, Tipo: model.TipoEntrada, Quantidade: 20},
		{ID: 2, ProdutoID: 1, Tipo: model.TipoSaida, Quantidade: 5},
		{ID: 3, ProdutoID: 99, Tipo: model.TipoSaida, Quantidade: 2}, // deleted product
	}

	out := ResumoPorCategoria(produtos, movs)
	require.Len(t, out, 2)
	assert.Equal(t, "Analgésico", out[0].Categoria)
	assert.Equal(t, 20, out[0].Entradas)
	assert.Equal(t, 5, out[0].Saidas)
	assert.Equal(t, model.CategoriaOutros, out[1].Categoria)
	assert.Equal(t, 2, out[1].Saidas)
}

func TestResumoPeriodo(t *testing.T) {
	movs := []model.Movimentacao{
		{Tipo: model.TipoEntrada, Quantidade: 10},
		{Tipo: model.TipoSaida, Quantidade: 4},
		{Tipo: model.TipoSaida, Quantidade: 1},
	}
	r := ResumoPeriodo(movs)
	assert.Equal(t, 10, r.TotalEntradas)
	assert.Equal(t, 5, r.TotalSaidas)
	assert.Equal(t, 3, r.Movimentacoes)
}

func TestStockStats(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	produtos := []model.Produto{
		{ID: 1, EstoqueMinimo: 10, Lotes: []model.Lote{{Numero: "L1", Validade: "2024-06-10", Quantidade: 5}}},
		{ID: 2, EstoqueMinimo: 1, Lotes: []model.Lote{{Numero: "L2", Validade: "2025-01-01", Quantidade: 30}}},
	}
	movs := []model.Movimentacao{{ID: 1}, {ID: 2}, {ID: 3}}

	s := StockStats(produtos, movs, now)
	assert.Equal(t, 2, s.TotalProdutos)
	assert.Equal(t, 35, s.TotalUnidades)
	assert.Equal(t, 1, s.ProdutosEmAlerta)
	assert.Equal(t, 1, s.LotesVencendo)
	assert.Equal(t, 3, s.TotalMovimentacoes)
}
