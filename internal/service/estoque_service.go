package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pauloeilson-hash/ctrlpgto/internal/dto"
	"github.com/pauloeilson-hash/ctrlpgto/internal/export"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

// ErrCategoriaEmUso rejects deleting a category that products still
// reference.
type ErrCategoriaEmUso struct {
	Nome     string
	Produtos int
}

func (e ErrCategoriaEmUso) Error() string {
	return fmt.Sprintf("Categoria %q está em uso por %d produto(s)", e.Nome, e.Produtos)
}

// ErrEstoqueInsuficiente rejects an exit larger than what the lot holds,
// telling the caller how much is actually available.
type ErrEstoqueInsuficiente struct {
	Lote       string
	Disponivel int
}

func (e ErrEstoqueInsuficiente) Error() string {
	return fmt.Sprintf("Quantidade insuficiente no lote %s. Disponível: %d", e.Lote, e.Disponivel)
}

// EstoqueService manages pharmacy products, their categories and the
// movement log. Entries append lots, exits decrement one lot at a time and
// drop it at zero, and every entry or exit prepends a movement record.
type EstoqueService interface {
	CriarProduto(ctx context.Context, req dto.CriarProdutoRequest) (*model.Produto, error)
	AtualizarProduto(ctx context.Context, id int64, req dto.AtualizarProdutoRequest) (*model.Produto, error)
	ExcluirProduto(ctx context.Context, id int64) error
	ListarProdutos(ctx context.Context) ([]model.Produto, error)

	CriarCategoria(ctx context.Context, req dto.CriarCategoriaRequest) (*model.Categoria, error)
	AtualizarCategoria(ctx context.Context, id int64, req dto.AtualizarCategoriaRequest) (*model.Categoria, error)
	ExcluirCategoria(ctx context.Context, id int64) error
	ListarCategorias(ctx context.Context) ([]model.Categoria, error)

	RegistrarEntrada(ctx context.Context, req dto.EntradaRequest) (*model.Movimentacao, error)
	RegistrarSaida(ctx context.Context, req dto.SaidaRequest) (*model.Movimentacao, error)
	ListarMovimentacoes(ctx context.Context, filter query.MovimentacaoFilter) ([]model.Movimentacao, error)

	Stats(ctx context.Context) (*query.EstoqueStats, error)
	Alertas(ctx context.Context) ([]query.AlertaEstoque, error)
	LotesVencendo(ctx context.Context, dias int) ([]query.LoteVencendo, error)

	ExportarBackup(ctx context.Context) (*export.BackupFarmacia, error)
	ImportarBackup(ctx context.Context, raw []byte, substituir bool) error
	LimparTudo(ctx context.Context) error
}

type estoqueService struct {
	produtos      *store.Collection[model.Produto]
	movimentacoes *store.Collection[model.Movimentacao]
	categorias    *store.Collection[model.Categoria]
	mu            sync.Mutex
}

func NewEstoqueService(
	produtos *store.Collection[model.Produto],
	movimentacoes *store.Collection[model.Movimentacao],
	categorias *store.Collection[model.Categoria],
) EstoqueService {
	return &estoqueService{produtos: produtos, movimentacoes: movimentacoes, categorias: categorias}
}

func maxID[T store.Record](records []T) int64 {
	var max int64
	for _, r := range records {
		if r.RecordID() > max {
			max = r.RecordID()
		}
	}
	return max
}

func (s *estoqueService) CriarProduto(ctx context.Context, req dto.CriarProdutoRequest) (*model.Produto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs ValidationErrors
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		errs = append(errs, "Nome do produto é obrigatório")
	}
	if strings.TrimSpace(req.Categoria) == "" {
		errs = append(errs, "Categoria é obrigatória")
	}
	if req.EstoqueMinimo < 0 {
		errs = append(errs, "Estoque mínimo não pode ser negativo")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range produtos {
		if strings.EqualFold(p.Nome, nome) {
			errs = append(errs, "Já existe um produto com este nome")
			return nil, errs
		}
	}

	novo := model.Produto{
		ID:            maxID(produtos) + 1,
		Nome:          nome,
		Categoria:     req.Categoria,
		EstoqueMinimo: req.EstoqueMinimo,
		Lotes:         []model.Lote{},
	}
	produtos = append(produtos, novo)
	if err := s.produtos.Save(ctx, produtos); err != nil {
		return nil, err
	}
	return &novo, nil
}

func (s *estoqueService) AtualizarProduto(ctx context.Context, id int64, req dto.AtualizarProdutoRequest) (*model.Produto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, p := range produtos {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrProdutoNaoEncontrado
	}

	p := produtos[idx]
	renamed := false
	if req.Nome != nil && strings.TrimSpace(*req.Nome) != "" {
		nome := strings.TrimSpace(*req.Nome)
		for i, outro := range produtos {
			if i != idx && strings.EqualFold(outro.Nome, nome) {
				return nil, ValidationErrors{"Já existe um produto com este nome"}
			}
		}
		p.Nome = nome
		renamed = true
	}
	if req.Categoria != nil && *req.Categoria != "" {
		p.Categoria = *req.Categoria
	}
	if req.EstoqueMinimo != nil {
		if *req.EstoqueMinimo < 0 {
			return nil, ValidationErrors{"Estoque mínimo não pode ser negativo"}
		}
		p.EstoqueMinimo = *req.EstoqueMinimo
	}
	produtos[idx] = p

	if err := s.produtos.Save(ctx, produtos); err != nil {
		return nil, err
	}

	if renamed {
		movs, err := s.movimentacoes.Load(ctx)
		if err != nil {
			return nil, err
		}
		changed := false
		for i := range movs {
			if movs[i].ProdutoID == id {
				movs[i].ProdutoNome = p.Nome
				changed = true
			}
		}
		if changed {
			if err := s.movimentacoes.Save(ctx, movs); err != nil {
				return nil, err
			}
		}
	}
	return &p, nil
}

// ExcluirProduto removes the product and every movement that references it.
func (s *estoqueService) ExcluirProduto(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return err
	}
	found := false
	kept := make([]model.Produto, 0, len(produtos))
	for _, p := range produtos {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return ErrProdutoNaoEncontrado
	}

	movs, err := s.movimentacoes.Load(ctx)
	if err != nil {
		return err
	}
	keptMovs := make([]model.Movimentacao, 0, len(movs))
	for _, m := range movs {
		if m.ProdutoID != id {
			keptMovs = append(keptMovs, m)
		}
	}

	if err := s.movimentacoes.Save(ctx, keptMovs); err != nil {
		return err
	}
	return s.produtos.Save(ctx, kept)
}

func (s *estoqueService) ListarProdutos(ctx context.Context) ([]model.Produto, error) {
	return s.produtos.Load(ctx)
}

func (s *estoqueService) CriarCategoria(ctx context.Context, req dto.CriarCategoriaRequest) (*model.Categoria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return nil, ValidationErrors{"Nome da categoria é obrigatório"}
	}

	categorias, err := s.categorias.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categorias {
		if strings.EqualFold(c.Nome, nome) {
			return nil, ValidationErrors{"Já existe uma categoria com este nome"}
		}
	}

	nova := model.Categoria{
		ID:        maxID(categorias) + 1,
		Nome:      nome,
		Descricao: strings.TrimSpace(req.Descricao),
	}
	categorias = append(categorias, nova)
	if err := s.categorias.Save(ctx, categorias); err != nil {
		return nil, err
	}
	return &nova, nil
}

func (s *estoqueService) AtualizarCategoria(ctx context.Context, id int64, req dto.AtualizarCategoriaRequest) (*model.Categoria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categorias, err := s.categorias.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, c := range categorias {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrCategoriaNaoEncontrada
	}

	c := categorias[idx]
	anterior := c.Nome
	if req.Nome != nil && strings.TrimSpace(*req.Nome) != "" {
		if c.Nome == model.CategoriaOutros {
			return nil, ValidationErrors{"A categoria Outros não pode ser renomeada"}
		}
		nome := strings.TrimSpace(*req.Nome)
		for i, outra := range categorias {
			if i != idx && strings.EqualFold(outra.Nome, nome) {
				return nil, ValidationErrors{"Já existe uma categoria com este nome"}
			}
		}
		c.Nome = nome
	}
	if req.Descricao != nil {
		c.Descricao = strings.TrimSpace(*req.Descricao)
	}
	categorias[idx] = c

	if err := s.categorias.Save(ctx, categorias); err != nil {
		return nil, err
	}

	// Products reference categories by name, so a rename follows through.
	if c.Nome != anterior {
		produtos, err := s.produtos.Load(ctx)
		if err != nil {
			return nil, err
		}
		changed := false
		for i := range produtos {
			if produtos[i].Categoria == anterior {
				produtos[i].Categoria = c.Nome
				changed = true
			}
		}
		if changed {
			if err := s.produtos.Save(ctx, produtos); err != nil {
				return nil, err
			}
		}
	}
	return &c, nil
}

func (s *estoqueService) ExcluirCategoria(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	categorias, err := s.categorias.Load(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, c := range categorias {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrCategoriaNaoEncontrada
	}
	alvo := categorias[idx]
	if alvo.Nome == model.CategoriaOutros {
		return ValidationErrors{"A categoria Outros não pode ser excluída"}
	}

	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return err
	}
	emUso := 0
	for _, p := range produtos {
		if p.Categoria == alvo.Nome {
			emUso++
		}
	}
	if emUso > 0 {
		return ErrCategoriaEmUso{Nome: alvo.Nome, Produtos: emUso}
	}

	return s.categorias.Save(ctx, append(categorias[:idx], categorias[idx+1:]...))
}

func (s *estoqueService) ListarCategorias(ctx context.Context) ([]model.Categoria, error) {
	return s.categorias.Load(ctx)
}

func (s *estoqueService) RegistrarEntrada(ctx context.Context, req dto.EntradaRequest) (*model.Movimentacao, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs ValidationErrors
	if req.Quantidade <= 0 {
		errs = append(errs, "Quantidade deve ser maior que zero")
	}
	if strings.TrimSpace(req.Lote) == "" {
		errs = append(errs, "Número do lote é obrigatório")
	}
	if req.Validade == "" {
		errs = append(errs, "Validade é obrigatória")
	} else if !query.IsValidDate(req.Validade) {
		errs = append(errs, "Validade inválida")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, p := range produtos {
		if p.ID == req.ProdutoID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrProdutoNaoEncontrado
	}

	lote := strings.TrimSpace(req.Lote)
	p := produtos[idx]

	// Same lot number tops up the existing batch instead of duplicating it.
	merged := false
	for i := range p.Lotes {
		if p.Lotes[i].Numero == lote {
			p.Lotes[i].Quantidade += req.Quantidade
			merged = true
			break
		}
	}
	if !merged {
		p.Lotes = append(p.Lotes, model.Lote{
			Numero:     lote,
			Validade:   req.Validade,
			Quantidade: req.Quantidade,
			Fornecedor: strings.TrimSpace(req.Fornecedor),
		})
	}
	p.Lotes = query.OrdenarLotesPorValidade(p.Lotes)
	produtos[idx] = p

	// Persist the stock change before its movement record: a movement that
	// describes stock never written would be an orphan.
	if err := s.produtos.Save(ctx, produtos); err != nil {
		return nil, err
	}
	return s.registrarMovimentacao(ctx, model.Movimentacao{
		Data:        time.Now().Format("2006-01-02"),
		ProdutoID:   p.ID,
		ProdutoNome: p.Nome,
		Tipo:        model.TipoEntrada,
		Quantidade:  req.Quantidade,
		Lote:        lote,
	})
}

func (s *estoqueService) RegistrarSaida(ctx context.Context, req dto.SaidaRequest) (*model.Movimentacao, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs ValidationErrors
	if req.Quantidade <= 0 {
		errs = append(errs, "Quantidade deve ser maior que zero")
	}
	if strings.TrimSpace(req.Motivo) == "" {
		errs = append(errs, "Motivo da saída é obrigatório")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, p := range produtos {
		if p.ID == req.ProdutoID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrProdutoNaoEncontrado
	}

	p := produtos[idx]
	loteIdx := -1
	for i, l := range p.Lotes {
		if l.Numero == req.Lote {
			loteIdx = i
			break
		}
	}
	if loteIdx == -1 {
		return nil, ErrLoteNaoEncontrado
	}
	if p.Lotes[loteIdx].Quantidade < req.Quantidade {
		return nil, ErrEstoqueInsuficiente{Lote: req.Lote, Disponivel: p.Lotes[loteIdx].Quantidade}
	}

	p.Lotes[loteIdx].Quantidade -= req.Quantidade
	if p.Lotes[loteIdx].Quantidade == 0 {
		p.Lotes = append(p.Lotes[:loteIdx], p.Lotes[loteIdx+1:]...)
	}
	produtos[idx] = p

	if err := s.produtos.Save(ctx, produtos); err != nil {
		return nil, err
	}
	return s.registrarMovimentacao(ctx, model.Movimentacao{
		Data:        time.Now().Format("2006-01-02"),
		ProdutoID:   p.ID,
		ProdutoNome: p.Nome,
		Tipo:        model.TipoSaida,
		Quantidade:  req.Quantidade,
		Lote:        req.Lote,
		Motivo:      strings.TrimSpace(req.Motivo),
		Observacoes: strings.TrimSpace(req.Observacoes),
	})
}

// registrarMovimentacao assigns the next id and prepends the record, keeping
// the log newest-first. Caller holds the lock.
func (s *estoqueService) registrarMovimentacao(ctx context.Context, mov model.Movimentacao) (*model.Movimentacao, error) {
	movs, err := s.movimentacoes.Load(ctx)
	if err != nil {
		return nil, err
	}
	mov.ID = maxID(movs) + 1
	movs = append([]model.Movimentacao{mov}, movs...)
	if err := s.movimentacoes.Save(ctx, movs); err != nil {
		return nil, err
	}
	return &mov, nil
}

func (s *estoqueService) ListarMovimentacoes(ctx context.Context, filter query.MovimentacaoFilter) ([]model.Movimentacao, error) {
	movs, err := s.movimentacoes.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterMovimentacoes(movs, filter), nil
}

func (s *estoqueService) Stats(ctx context.Context) (*query.EstoqueStats, error) {
	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return nil, err
	}
	movs, err := s.movimentacoes.Load(ctx)
	if err != nil {
		return nil, err
	}
	stats := query.StockStats(produtos, movs, time.Now())
	return &stats, nil
}

func (s *estoqueService) Alertas(ctx context.Context) ([]query.AlertaEstoque, error) {
	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.AlertasEstoque(produtos), nil
}

func (s *estoqueService) LotesVencendo(ctx context.Context, dias int) ([]query.LoteVencendo, error) {
	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.LotesVencendo(produtos, dias, time.Now()), nil
}

func (s *estoqueService) ExportarBackup(ctx context.Context) (*export.BackupFarmacia, error) {
	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return nil, err
	}
	movs, err := s.movimentacoes.Load(ctx)
	if err != nil {
		return nil, err
	}
	categorias, err := s.categorias.Load(ctx)
	if err != nil {
		return nil, err
	}
	return export.NewBackupFarmacia(produtos, movs, categorias), nil
}

// ImportarBackup restores a pharmacy backup. With substituir the current
// collections are replaced outright; otherwise records whose ids already
// exist are skipped and the rest merged in.
func (s *estoqueService) ImportarBackup(ctx context.Context, raw []byte, substituir bool) error {
	backup, err := export.ParseBackupFarmacia(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if substituir {
		if err := s.produtos.Save(ctx, backup.Dados.Estoque); err != nil {
			return err
		}
		if err := s.movimentacoes.Save(ctx, backup.Dados.Movimentacoes); err != nil {
			return err
		}
		if len(backup.Dados.Categorias) > 0 {
			return s.categorias.Save(ctx, backup.Dados.Categorias)
		}
		return nil
	}

	produtos, err := s.produtos.Load(ctx)
	if err != nil {
		return err
	}
	produtos = mergeByID(produtos, backup.Dados.Estoque)
	if err := s.produtos.Save(ctx, produtos); err != nil {
		return err
	}

	movs, err := s.movimentacoes.Load(ctx)
	if err != nil {
		return err
	}
	movs = mergeByID(movs, backup.Dados.Movimentacoes)
	if err := s.movimentacoes.Save(ctx, movs); err != nil {
		return err
	}

	categorias, err := s.categorias.Load(ctx)
	if err != nil {
		return err
	}
	categorias = mergeByID(categorias, backup.Dados.Categorias)
	return s.categorias.Save(ctx, categorias)
}

// mergeByID appends incoming records whose ids are not already present.
func mergeByID[T store.Record](existing, incoming []T) []T {
	seen := takenIDs(existing)
	for _, r := range incoming {
		if !seen[r.RecordID()] {
			existing = append(existing, r)
			seen[r.RecordID()] = true
		}
	}
	return existing
}

func (s *estoqueService) LimparTudo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.movimentacoes.Clear(ctx); err != nil {
		return err
	}
	return s.produtos.Clear(ctx)
}
