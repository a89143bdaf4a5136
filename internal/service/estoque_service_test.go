package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauloeilson-hash/ctrlpgto/internal/dto"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

func newEstoqueSvc() EstoqueService {
	kv := newMemKV()
	return NewEstoqueService(
		store.NewCollection[model.Produto](kv, store.KeyEstoque),
		store.NewCollection[model.Movimentacao](kv, store.KeyMovimentacoes),
		store.NewCollection[model.Categoria](kv, store.KeyCategorias).WithSeed(model.CategoriasPadrao),
	)
}

func criarProduto(t *testing.T, svc EstoqueService, nome string) *model.Produto {
	t.Helper()
	p, err := svc.CriarProduto(context.Background(), dto.CriarProdutoRequest{
		Nome: nome, Categoria: "Analgésico", EstoqueMinimo: 10,
	})
	require.NoError(t, err)
	return p
}

func entrada(produtoID int64, lote string, qtd int) dto.EntradaRequest {
	return dto.EntradaRequest{ProdutoID: produtoID, Quantidade: qtd, Lote: lote, Validade: "2027-06-30"}
}

func TestCriarProduto(t *testing.T) {
	svc := newEstoqueSvc()
	p := criarProduto(t, svc, "Dipirona 500mg")
	assert.Equal(t, int64(1), p.ID)
	assert.NotNil(t, p.Lotes, "lots start as an empty slice, not nil")
	assert.Empty(t, p.Lotes)
}

func TestCriarProdutoNomeDuplicado(t *testing.T) {
	svc := newEstoqueSvc()
	criarProduto(t, svc, "Dipirona 500mg")
	_, err := svc.CriarProduto(context.Background(), dto.CriarProdutoRequest{
		Nome: "dipirona 500MG", Categoria: "Analgésico",
	})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs[0], "Já existe um produto")
}

func TestRegistrarEntradaMergesSameLot(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")

	mov, err := svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 50))
	require.NoError(t, err)
	assert.Equal(t, model.TipoEntrada, mov.Tipo)
	assert.Equal(t, "Dipirona 500mg", mov.ProdutoNome)

	_, err = svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 30))
	require.NoError(t, err)

	produtos, err := svc.ListarProdutos(ctx)
	require.NoError(t, err)
	require.Len(t, produtos[0].Lotes, 1, "same lot number tops up the existing batch")
	assert.Equal(t, 80, produtos[0].Lotes[0].Quantidade)
}

func TestRegistrarEntradaOrdenaPorValidade(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")

	_, err := svc.RegistrarEntrada(ctx, dto.EntradaRequest{
		ProdutoID: p.ID, Quantidade: 10, Lote: "TARDE", Validade: "2028-01-01",
	})
	require.NoError(t, err)
	_, err = svc.RegistrarEntrada(ctx, dto.EntradaRequest{
		ProdutoID: p.ID, Quantidade: 10, Lote: "CEDO", Validade: "2026-01-01",
	})
	require.NoError(t, err)

	produtos, err := svc.ListarProdutos(ctx)
	require.NoError(t, err)
	require.Len(t, produtos[0].Lotes, 2)
	assert.Equal(t, "CEDO", produtos[0].Lotes[0].Numero, "soonest expiry first")
}

func TestRegistrarSaida(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")
	_, err := svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 50))
	require.NoError(t, err)

	mov, err := svc.RegistrarSaida(ctx, dto.SaidaRequest{
		ProdutoID: p.ID, Quantidade: 20, Lote: "L001", Motivo: "venda",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TipoSaida, mov.Tipo)

	produtos, err := svc.ListarProdutos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, produtos[0].Lotes[0].Quantidade)
}

func TestRegistrarSaidaInsuficiente(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")
	_, err := svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 5))
	require.NoError(t, err)

	_, err = svc.RegistrarSaida(ctx, dto.SaidaRequest{
		ProdutoID: p.ID, Quantidade: 10, Lote: "L001", Motivo: "venda",
	})
	var insuf ErrEstoqueInsuficiente
	require.ErrorAs(t, err, &insuf)
	assert.Equal(t, 5, insuf.Disponivel)
	assert.Equal(t, "Quantidade insuficiente no lote L001. Disponível: 5", insuf.Error())
}

func TestRegistrarSaidaRemovesEmptyLot(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")
	_, err := svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 10))
	require.NoError(t, err)

	_, err = svc.RegistrarSaida(ctx, dto.SaidaRequest{
		ProdutoID: p.ID, Quantidade: 10, Lote: "L001", Motivo: "venda",
	})
	require.NoError(t, err)

	produtos, err := svc.ListarProdutos(ctx)
	require.NoError(t, err)
	assert.Empty(t, produtos[0].Lotes, "a drained lot disappears")
}

func TestRegistrarSaidaLoteInexistente(t *testing.T) {
	svc := newEstoqueSvc()
	p := criarProduto(t, svc, "Dipirona 500mg")
	_, err := svc.RegistrarSaida(context.Background(), dto.SaidaRequest{
		ProdutoID: p.ID, Quantidade: 1, Lote: "NADA", Motivo: "venda",
	})
	assert.ErrorIs(t, err, ErrLoteNaoEncontrado)
}

func TestMovimentacoesNewestFirst(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")
	_, err := svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 50))
	require.NoError(t, err)
	_, err = svc.RegistrarSaida(ctx, dto.SaidaRequest{
		ProdutoID: p.ID, Quantidade: 5, Lote: "L001", Motivo: "venda",
	})
	require.NoError(t, err)

	movs, err := svc.ListarMovimentacoes(ctx, query.MovimentacaoFilter{})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, model.TipoSaida, movs[0].Tipo)
}

func TestExcluirProdutoCascades(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")
	_, err := svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 50))
	require.NoError(t, err)

	require.NoError(t, svc.ExcluirProduto(ctx, p.ID))

	movs, err := svc.ListarMovimentacoes(ctx, query.MovimentacaoFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestAtualizarProdutoRenameSyncsMovimentacoes(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")
	_, err := svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 50))
	require.NoError(t, err)

	nome := "Dipirona Sódica 500mg"
	_, err = svc.AtualizarProduto(ctx, p.ID, dto.AtualizarProdutoRequest{Nome: &nome})
	require.NoError(t, err)

	movs, err := svc.ListarMovimentacoes(ctx, query.MovimentacaoFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Dipirona Sódica 500mg", movs[0].ProdutoNome)
}

func TestCategoriasSeededOnFirstUse(t *testing.T) {
	svc := newEstoqueSvc()
	categorias, err := svc.ListarCategorias(context.Background())
	require.NoError(t, err)
	require.Len(t, categorias, 5)
	assert.Equal(t, model.CategoriaOutros, categorias[4].Nome)
}

func TestExcluirCategoriaOutros(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	categorias, err := svc.ListarCategorias(ctx)
	require.NoError(t, err)

	var outrosID int64
	for _, c := range categorias {
		if c.Nome == model.CategoriaOutros {
			outrosID = c.ID
		}
	}
	err = svc.ExcluirCategoria(ctx, outrosID)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs[0], "não pode ser excluída")
}

func TestExcluirCategoriaEmUso(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	criarProduto(t, svc, "Dipirona 500mg") // categoria Analgésico

	categorias, err := svc.ListarCategorias(ctx)
	require.NoError(t, err)
	var analgesicosID int64
	for _, c := range categorias {
		if c.Nome == "Analgésico" {
			analgesicosID = c.ID
		}
	}
	require.NotZero(t, analgesicosID)

	err = svc.ExcluirCategoria(ctx, analgesicosID)
	var emUso ErrCategoriaEmUso
	require.ErrorAs(t, err, &emUso)
	assert.Equal(t, 1, emUso.Produtos)
}

func TestAtualizarCategoriaRenameFollowsProducts(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	criarProduto(t, svc, "Dipirona 500mg")

	categorias, err := svc.ListarCategorias(ctx)
	require.NoError(t, err)
	var analgesicosID int64
	for _, c := range categorias {
		if c.Nome == "Analgésico" {
			analgesicosID = c.ID
		}
	}

	nome := "Analgésicos e Antitérmicos"
	_, err = svc.AtualizarCategoria(ctx, analgesicosID, dto.AtualizarCategoriaRequest{Nome: &nome})
	require.NoError(t, err)

	produtos, err := svc.ListarProdutos(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Analgésicos e Antitérmicos", produtos[0].Categoria)
}

func TestEstoqueBackupRoundTrip(t *testing.T) {
	svc := newEstoqueSvc()
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")
	_, err := svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 50))
	require.NoError(t, err)

	backup, err := svc.ExportarBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0", backup.Versao)

	other := newEstoqueSvc()
	require.NoError(t, other.ImportarBackup(ctx, mustJSON(t, backup), true))

	produtos, err := other.ListarProdutos(ctx)
	require.NoError(t, err)
	require.Len(t, produtos, 1)
	assert.Equal(t, 50, produtos[0].Lotes[0].Quantidade)

	// Merging the same backup again must not duplicate anything.
	require.NoError(t, other.ImportarBackup(ctx, mustJSON(t, backup), false))
	produtos, err = other.ListarProdutos(ctx)
	require.NoError(t, err)
	assert.Len(t, produtos, 1)
}

// failKV injects a write failure on a single key, letting tests exercise the
// persistence ordering of the entry and exit paths.
type failKV struct {
	*memKV
	failKey string
}

var errKVIndisponivel = errors.New("kv indisponível")

func (f *failKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failKey != "" && key == f.failKey {
		return errKVIndisponivel
	}
	return f.memKV.Set(ctx, key, value)
}

func TestRegistrarEntradaNaoGravaMovimentacaoOrfa(t *testing.T) {
	kv := &failKV{memKV: newMemKV()}
	svc := NewEstoqueService(
		store.NewCollection[model.Produto](kv, store.KeyEstoque),
		store.NewCollection[model.Movimentacao](kv, store.KeyMovimentacoes),
		store.NewCollection[model.Categoria](kv, store.KeyCategorias).WithSeed(model.CategoriasPadrao),
	)
	ctx := context.Background()
	p := criarProduto(t, svc, "Dipirona 500mg")

	kv.failKey = store.KeyEstoque
	_, err := svc.RegistrarEntrada(ctx, entrada(p.ID, "L001", 50))
	require.ErrorIs(t, err, errKVIndisponivel)

	kv.failKey = ""
	movs, err := svc.ListarMovimentacoes(ctx, query.MovimentacaoFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs, "a stock change that was never persisted leaves no movement behind")
}
