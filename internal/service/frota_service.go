package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pauloeilson-hash/ctrlpgto/internal/dto"
	"github.com/pauloeilson-hash/ctrlpgto/internal/export"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

// FrotaService manages vehicles and their fuel fills. Vehicle aggregates
// (totalGasto, totalLitros, ultimoAbastecimento) are derived: every fill
// mutation recomputes them for the affected vehicle, and deleting a vehicle
// cascades to its fills.
type FrotaService interface {
	CriarVeiculo(ctx context.Context, req dto.CriarVeiculoRequest) (*model.Veiculo, error)
	AtualizarVeiculo(ctx context.Context, id int64, req dto.AtualizarVeiculoRequest) (*model.Veiculo, error)
	ExcluirVeiculo(ctx context.Context, id int64) error
	ListarVeiculos(ctx context.Context) ([]model.Veiculo, error)

	CriarAbastecimento(ctx context.Context, req dto.CriarAbastecimentoRequest) (*model.Abastecimento, error)
	AtualizarAbastecimento(ctx context.Context, id int64, req dto.CriarAbastecimentoRequest) (*model.Abastecimento, error)
	ExcluirAbastecimento(ctx context.Context, id int64) error
	ListarAbastecimentos(ctx context.Context, filter query.AbastecimentoFilter) ([]model.Abastecimento, error)

	Stats(ctx context.Context) (*query.FrotaStats, error)
	ExportarBackup(ctx context.Context) (*export.BackupFrota, error)
	ImportarBackup(ctx context.Context, raw []byte) error
	LimparTudo(ctx context.Context) error
}

type frotaService struct {
	veiculos       *store.Collection[model.Veiculo]
	abastecimentos *store.Collection[model.Abastecimento]
	mu             sync.Mutex
}

func NewFrotaService(
	veiculos *store.Collection[model.Veiculo],
	abastecimentos *store.Collection[model.Abastecimento],
) FrotaService {
	return &frotaService{veiculos: veiculos, abastecimentos: abastecimentos}
}

// timestampID assigns millisecond-epoch ids the way the tracker always has,
// bumping on collision so two records created in the same millisecond stay
// distinct.
func timestampID(taken map[int64]bool) int64 {
	id := time.Now().UnixMilli()
	for taken[id] {
		id++
	}
	return id
}

func takenIDs[T store.Record](records []T) map[int64]bool {
	m := make(map[int64]bool, len(records))
	for _, r := range records {
		m[r.RecordID()] = true
	}
	return m
}

func (s *frotaService) CriarVeiculo(ctx context.Context, req dto.CriarVeiculoRequest) (*model.Veiculo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs ValidationErrors
	if strings.TrimSpace(req.Nome) == "" {
		errs = append(errs, "Nome do veículo é obrigatório")
	}
	if strings.TrimSpace(req.Placa) == "" {
		errs = append(errs, "Placa é obrigatória")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	veiculos, err := s.veiculos.Load(ctx)
	if err != nil {
		return nil, err
	}

	novo := model.Veiculo{
		ID:                timestampID(takenIDs(veiculos)),
		Nome:              strings.TrimSpace(req.Nome),
		Placa:             strings.ToUpper(strings.TrimSpace(req.Placa)),
		Tipo:              req.Tipo,
		CombustivelPadrao: req.CombustivelPadrao,
	}
	novo = query.RecomputeVeiculo(novo, nil)

	veiculos = append(veiculos, novo)
	if err := s.veiculos.Save(ctx, veiculos); err != nil {
		return nil, err
	}
	return &novo, nil
}

func (s *frotaService) AtualizarVeiculo(ctx context.Context, id int64, req dto.AtualizarVeiculoRequest) (*model.Veiculo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	veiculos, err := s.veiculos.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, v := range veiculos {
		if v.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrVeiculoNaoEncontrado
	}

	v := veiculos[idx]
	renamed := false
	if req.Nome != nil && strings.TrimSpace(*req.Nome) != "" {
		v.Nome = strings.TrimSpace(*req.Nome)
		renamed = true
	}
	if req.Placa != nil && strings.TrimSpace(*req.Placa) != "" {
		v.Placa = strings.ToUpper(strings.TrimSpace(*req.Placa))
	}
	if req.Tipo != nil {
		v.Tipo = *req.Tipo
	}
	if req.CombustivelPadrao != nil {
		v.CombustivelPadrao = *req.CombustivelPadrao
	}
	veiculos[idx] = v

	if err := s.veiculos.Save(ctx, veiculos); err != nil {
		return nil, err
	}

	// Keep the denormalized snapshot on the fills in sync with a rename.
	if renamed {
		fills, err := s.abastecimentos.Load(ctx)
		if err != nil {
			return nil, err
		}
		changed := false
		for i := range fills {
			if fills[i].VeiculoID == id {
				fills[i].VeiculoNome = v.Nome
				changed = true
			}
		}
		if changed {
			if err := s.abastecimentos.Save(ctx, fills); err != nil {
				return nil, err
			}
		}
	}
	return &v, nil
}

// ExcluirVeiculo removes the vehicle and cascades to every fill that
// references it.
func (s *frotaService) ExcluirVeiculo(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	veiculos, err := s.veiculos.Load(ctx)
	if err != nil {
		return err
	}
	found := false
	kept := make([]model.Veiculo, 0, len(veiculos))
	for _, v := range veiculos {
		if v.ID == id {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	if !found {
		return ErrVeiculoNaoEncontrado
	}

	fills, err := s.abastecimentos.Load(ctx)
	if err != nil {
		return err
	}
	keptFills := make([]model.Abastecimento, 0, len(fills))
	for _, a := range fills {
		if a.VeiculoID != id {
			keptFills = append(keptFills, a)
		}
	}

	if err := s.abastecimentos.Save(ctx, keptFills); err != nil {
		return err
	}
	return s.veiculos.Save(ctx, kept)
}

func (s *frotaService) ListarVeiculos(ctx context.Context) ([]model.Veiculo, error) {
	return s.veiculos.Load(ctx)
}

func validateAbastecimento(req dto.CriarAbastecimentoRequest) ValidationErrors {
	var errs ValidationErrors
	if req.Data == "" {
		errs = append(errs, "Data é obrigatória")
	} else if !query.IsValidDate(req.Data) {
		errs = append(errs, "Data inválida")
	}
	if !req.Litros.IsPositive() {
		errs = append(errs, "Informe uma quantidade de litros válida")
	}
	if !req.PrecoLitro.IsPositive() {
		errs = append(errs, "Informe um preço por litro válido")
	}
	if !req.ValorTotal.IsPositive() {
		errs = append(errs, "Informe um valor total válido")
	}
	return errs
}

func (s *frotaService) CriarAbastecimento(ctx context.Context, req dto.CriarAbastecimentoRequest) (*model.Abastecimento, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if errs := validateAbastecimento(req); len(errs) > 0 {
		return nil, errs
	}

	veiculos, err := s.veiculos.Load(ctx)
	if err != nil {
		return nil, err
	}
	var veiculo *model.Veiculo
	for i := range veiculos {
		if veiculos[i].ID == req.VeiculoID {
			veiculo = &veiculos[i]
			break
		}
	}
	if veiculo == nil {
		return nil, ErrVeiculoNaoEncontrado
	}

	fills, err := s.abastecimentos.Load(ctx)
	if err != nil {
		return nil, err
	}

	novo := model.Abastecimento{
		ID:          timestampID(takenIDs(fills)),
		VeiculoID:   req.VeiculoID,
		VeiculoNome: veiculo.Nome,
		Data:        req.Data,
		Combustivel: req.Combustivel,
		Litros:      req.Litros,
		PrecoLitro:  req.PrecoLitro,
		ValorTotal:  req.ValorTotal,
		Odometro:    req.Odometro,
	}
	if novo.Combustivel == "" {
		novo.Combustivel = veiculo.CombustivelPadrao
	}
	fills = append(fills, novo)

	if err := s.abastecimentos.Save(ctx, fills); err != nil {
		return nil, err
	}
	if err := s.recomputeAndSave(ctx, veiculos, fills, req.VeiculoID); err != nil {
		return nil, err
	}
	return &novo, nil
}

func (s *frotaService) AtualizarAbastecimento(ctx context.Context, id int64, req dto.CriarAbastecimentoRequest) (*model.Abastecimento, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if errs := validateAbastecimento(req); len(errs) > 0 {
		return nil, errs
	}

	fills, err := s.abastecimentos.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, a := range fills {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrAbastecimentoNaoEncontrado
	}

	veiculos, err := s.veiculos.Load(ctx)
	if err != nil {
		return nil, err
	}
	var veiculo *model.Veiculo
	for i := range veiculos {
		if veiculos[i].ID == req.VeiculoID {
			veiculo = &veiculos[i]
			break
		}
	}
	if veiculo == nil {
		return nil, ErrVeiculoNaoEncontrado
	}

	anterior := fills[idx].VeiculoID
	atualizado := model.Abastecimento{
		ID:          id,
		VeiculoID:   req.VeiculoID,
		VeiculoNome: veiculo.Nome,
		Data:        req.Data,
		Combustivel: req.Combustivel,
		Litros:      req.Litros,
		PrecoLitro:  req.PrecoLitro,
		ValorTotal:  req.ValorTotal,
		Odometro:    req.Odometro,
	}
	fills[idx] = atualizado

	if err := s.abastecimentos.Save(ctx, fills); err != nil {
		return nil, err
	}
	// Both the previous and the new owner need their aggregates rebuilt
	// when a fill moves between vehicles.
	if err := s.recomputeAndSave(ctx, veiculos, fills, anterior, req.VeiculoID); err != nil {
		return nil, err
	}
	return &atualizado, nil
}

func (s *frotaService) ExcluirAbastecimento(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fills, err := s.abastecimentos.Load(ctx)
	if err != nil {
		return err
	}
	var dono int64
	found := false
	kept := make([]model.Abastecimento, 0, len(fills))
	for _, a := range fills {
		if a.ID == id {
			dono = a.VeiculoID
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return ErrAbastecimentoNaoEncontrado
	}

	if err := s.abastecimentos.Save(ctx, kept); err != nil {
		return err
	}
	veiculos, err := s.veiculos.Load(ctx)
	if err != nil {
		return err
	}
	return s.recomputeAndSave(ctx, veiculos, kept, dono)
}

// recomputeAndSave rebuilds the derived aggregates of the given vehicle ids
// and persists the vehicle collection.
func (s *frotaService) recomputeAndSave(ctx context.Context, veiculos []model.Veiculo, fills []model.Abastecimento, ids ...int64) error {
	for _, id := range ids {
		for i := range veiculos {
			if veiculos[i].ID == id {
				veiculos[i] = query.RecomputeVeiculo(veiculos[i], fills)
			}
		}
	}
	return s.veiculos.Save(ctx, veiculos)
}

func (s *frotaService) ListarAbastecimentos(ctx context.Context, filter query.AbastecimentoFilter) ([]model.Abastecimento, error) {
	fills, err := s.abastecimentos.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterAbastecimentos(fills, filter), nil
}

func (s *frotaService) Stats(ctx context.Context) (*query.FrotaStats, error) {
	veiculos, err := s.veiculos.Load(ctx)
	if err != nil {
		return nil, err
	}
	fills, err := s.abastecimentos.Load(ctx)
	if err != nil {
		return nil, err
	}
	stats := query.FleetStats(veiculos, fills)
	return &stats, nil
}

func (s *frotaService) ExportarBackup(ctx context.Context) (*export.BackupFrota, error) {
	veiculos, err := s.veiculos.Load(ctx)
	if err != nil {
		return nil, err
	}
	fills, err := s.abastecimentos.Load(ctx)
	if err != nil {
		return nil, err
	}
	return export.NewBackupFrota(veiculos, fills), nil
}

// ImportarBackup replaces both collections with the backup contents, after
// recomputing every vehicle's aggregates from the imported fills — backup
// files produced elsewhere may carry stale derived values.
func (s *frotaService) ImportarBackup(ctx context.Context, raw []byte) error {
	backup, err := export.ParseBackupFrota(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range backup.Veiculos {
		backup.Veiculos[i] = query.RecomputeVeiculo(backup.Veiculos[i], backup.Abastecimentos)
	}
	if err := s.veiculos.Save(ctx, backup.Veiculos); err != nil {
		return err
	}
	return s.abastecimentos.Save(ctx, backup.Abastecimentos)
}

func (s *frotaService) LimparTudo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.abastecimentos.Clear(ctx); err != nil {
		return err
	}
	return s.veiculos.Clear(ctx)
}
