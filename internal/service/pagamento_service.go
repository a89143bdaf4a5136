package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pauloeilson-hash/ctrlpgto/internal/dto"
	"github.com/pauloeilson-hash/ctrlpgto/internal/export"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

// PagamentoService is the mutation boundary of the payments ledger: it is the
// only layer allowed to reject an operation, and every write goes through a
// full load-validate-save cycle over the collection snapshot.
type PagamentoService interface {
	Criar(ctx context.Context, req dto.CriarPagamentoRequest) (*model.Pagamento, error)
	Atualizar(ctx context.Context, id int64, req dto.AtualizarPagamentoRequest) (*model.Pagamento, error)
	Excluir(ctx context.Context, id int64) error
	AtualizarStatusEmLote(ctx context.Context, ids []int64, status string) (int, error)
	Listar(ctx context.Context, filter query.PagamentoFilter) (*dto.PagamentoListResponse, error)
	Snapshot(ctx context.Context) ([]model.Pagamento, error)
	ImportarCSV(ctx context.Context, r io.Reader) (*dto.ImportResultado, error)
	ExportarBackup(ctx context.Context) (*export.BackupPagamentos, error)
	ImportarBackup(ctx context.Context, raw []byte, mesclar bool) (*dto.ImportResultado, error)
	LimparTudo(ctx context.Context) error
}

type pagamentoService struct {
	col *store.Collection[model.Pagamento]
	// Serializes load-mutate-save cycles: the storage contract has no
	// transactions, so concurrent mutations would race to lost updates.
	mu sync.Mutex
}

func NewPagamentoService(col *store.Collection[model.Pagamento]) PagamentoService {
	return &pagamentoService{col: col}
}

// validatePagamento checks the full candidate record and returns every
// violated rule, never just the first.
func validatePagamento(p model.Pagamento) ValidationErrors {
	var errs ValidationErrors

	nome := strings.TrimSpace(p.Nome)
	if nome == "" {
		errs = append(errs, "Nome é obrigatório")
	} else if len([]rune(nome)) < 2 {
		errs = append(errs, "Nome deve ter pelo menos 2 caracteres")
	}

	if p.Data == "" {
		errs = append(errs, "Data é obrigatória")
	} else if !query.IsValidDate(p.Data) {
		errs = append(errs, "Data inválida")
	} else {
		hoje := time.Now().Format("2006-01-02")
		if p.Data > hoje {
			errs = append(errs, "Data não pode ser futura")
		}
	}

	if !p.Valor.IsPositive() {
		errs = append(errs, "Valor deve ser um número positivo")
	}

	if len([]rune(p.Historico)) > 500 {
		errs = append(errs, "Histórico não pode ter mais de 500 caracteres")
	}

	if p.Status != "" && p.Status != model.StatusPendente && p.Status != model.StatusEfetuado {
		errs = append(errs, `Status deve ser "pendente" ou "efetuado"`)
	}

	return errs
}

// normalizeNome keeps the casing of the first record that used this name:
// a case-insensitive match against existing records wins over the input.
func normalizeNome(nome string, existing []model.Pagamento) string {
	trimmed := strings.TrimSpace(nome)
	for _, p := range existing {
		if strings.EqualFold(p.Nome, trimmed) {
			return p.Nome
		}
	}
	return trimmed
}

func nextID(records []model.Pagamento) int64 {
	var max int64
	for _, p := range records {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

func (s *pagamentoService) Criar(ctx context.Context, req dto.CriarPagamentoRequest) (*model.Pagamento, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := model.Pagamento{
		Nome:      req.Nome,
		Data:      req.Data,
		Valor:     req.Valor,
		Historico: req.Historico,
		Status:    req.Status,
	}
	if errs := validatePagamento(candidate); len(errs) > 0 {
		return nil, errs
	}

	records, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = model.StatusPendente
	}
	novo := model.Pagamento{
		ID:        nextID(records),
		Nome:      normalizeNome(req.Nome, records),
		Data:      req.Data,
		Valor:     req.Valor.Round(2),
		Historico: req.Historico,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	records = append(records, novo)
	if err := s.col.Save(ctx, records); err != nil {
		return nil, err
	}
	return &novo, nil
}

func (s *pagamentoService) Atualizar(ctx context.Context, id int64, req dto.AtualizarPagamentoRequest) (*model.Pagamento, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, p := range records {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrPagamentoNaoEncontrado
	}

	// Merge into a candidate and re-validate the merged result, not just
	// the changed fields.
	candidate := records[idx]
	if req.Nome != nil {
		candidate.Nome = *req.Nome
	}
	if req.Data != nil {
		candidate.Data = *req.Data
	}
	if req.Valor != nil {
		candidate.Valor = *req.Valor
	}
	if req.Historico != nil {
		candidate.Historico = *req.Historico
	}
	if req.Status != nil {
		candidate.Status = *req.Status
	}
	if errs := validatePagamento(candidate); len(errs) > 0 {
		return nil, errs
	}

	if req.Nome != nil {
		others := make([]model.Pagamento, 0, len(records)-1)
		for _, p := range records {
			if p.ID != id {
				others = append(others, p)
			}
		}
		candidate.Nome = normalizeNome(*req.Nome, others)
	}
	if req.Valor != nil {
		candidate.Valor = candidate.Valor.Round(2)
	}
	candidate.UpdatedAt = time.Now().UTC()

	records[idx] = candidate
	if err := s.col.Save(ctx, records); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// Excluir removes the record. Deleting an id that no longer exists is a no-op
// success, matching the ledger's historical behavior.
func (s *pagamentoService) Excluir(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.col.Load(ctx)
	if err != nil {
		return err
	}
	kept := make([]model.Pagamento, 0, len(records))
	for _, p := range records {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.col.Save(ctx, kept)
}

// AtualizarStatusEmLote applies the status to each id independently and
// returns the number actually updated. Stale ids are skipped, already-applied
// updates are never rolled back.
func (s *pagamentoService) AtualizarStatusEmLote(ctx context.Context, ids []int64, status string) (int, error) {
	if status != model.StatusPendente && status != model.StatusEfetuado {
		return 0, ValidationErrors{`Status deve ser "pendente" ou "efetuado"`}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.col.Load(ctx)
	if err != nil {
		return 0, err
	}

	byID := make(map[int64]int, len(records))
	for i, p := range records {
		byID[p.ID] = i
	}

	now := time.Now().UTC()
	count := 0
	for _, id := range ids {
		idx, ok := byID[id]
		if !ok {
			continue
		}
		records[idx].Status = status
		records[idx].UpdatedAt = now
		count++
	}
	if count > 0 {
		if err := s.col.Save(ctx, records); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func (s *pagamentoService) Listar(ctx context.Context, filter query.PagamentoFilter) (*dto.PagamentoListResponse, error) {
	records, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := query.FilterPagamentos(records, filter)
	return &dto.PagamentoListResponse{
		Data:  filtered,
		Total: len(filtered),
		Stats: query.Statistics(filtered),
	}, nil
}

func (s *pagamentoService) Snapshot(ctx context.Context) ([]model.Pagamento, error) {
	return s.col.Load(ctx)
}

// ImportarCSV processes rows serially against one accumulating draft and
// persists once at the end. Per-row failures never abort the batch.
func (s *pagamentoService) ImportarCSV(ctx context.Context, r io.Reader) (*dto.ImportResultado, error) {
	rows, err := export.ParsePagamentosCSV(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResultado{Errors: []string{}}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.Nome == "" || row.Data == "" {
			result.Skipped++
			continue
		}
		if !row.Valor.IsPositive() {
			result.Errors = append(result.Errors, fmt.Sprintf("Linha %d: Valor inválido", row.Linha))
			continue
		}
		if !query.IsValidDate(row.Data) {
			result.Errors = append(result.Errors, fmt.Sprintf("Linha %d: Data inválida", row.Linha))
			continue
		}

		status := row.Status
		if status != model.StatusPendente && status != model.StatusEfetuado {
			status = model.StatusEfetuado
		}
		draft = append(draft, model.Pagamento{
			ID:        nextID(draft),
			Nome:      normalizeNome(row.Nome, draft),
			Data:      row.Data,
			Valor:     row.Valor.Round(2),
			Historico: row.Historico,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		})
		result.Added++
	}

	if result.Added > 0 {
		if err := s.col.Save(ctx, draft); err != nil {
			return nil, err
		}
	}
	result.Total = len(draft)
	return result, nil
}

func (s *pagamentoService) ExportarBackup(ctx context.Context) (*export.BackupPagamentos, error) {
	records, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	return export.NewBackupPagamentos(records), nil
}

// ImportarBackup replaces or merges the collection with a parsed backup file.
// Merging skips incoming records whose id already exists locally.
func (s *pagamentoService) ImportarBackup(ctx context.Context, raw []byte, mesclar bool) (*dto.ImportResultado, error) {
	incoming, err := export.ParseBackupPagamentos(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &dto.ImportResultado{Errors: []string{}}
	if !mesclar {
		if err := s.col.Save(ctx, incoming); err != nil {
			return nil, err
		}
		result.Added = len(incoming)
		result.Total = len(incoming)
		return result, nil
	}

	records, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	existing := make(map[int64]bool, len(records))
	for _, p := range records {
		existing[p.ID] = true
	}
	for _, p := range incoming {
		if existing[p.ID] {
			result.Skipped++
			continue
		}
		records = append(records, p)
		result.Added++
	}
	if err := s.col.Save(ctx, records); err != nil {
		return nil, err
	}
	result.Total = len(records)
	return result, nil
}

func (s *pagamentoService) LimparTudo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col.Clear(ctx)
}
