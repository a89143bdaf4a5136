package service

import (
	"context"
	"sync"
	"time"

	"github.com/pauloeilson-hash/ctrlpgto/internal/export"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

// maxBackupsLocais caps the local backup history. Oldest entries are dropped
// first.
const maxBackupsLocais = 10

// BackupService keeps the local pharmacy backup history and the automatic
// backup schedule.
type BackupService interface {
	SalvarLocal(ctx context.Context, backup *export.BackupFarmacia) error
	ListarLocais(ctx context.Context) ([]export.BackupFarmacia, error)
	Config(ctx context.Context) (model.BackupConfig, error)
	AtualizarConfig(ctx context.Context, cfg model.BackupConfig) error
	MarcarExecutado(ctx context.Context, t time.Time) error
}

type backupService struct {
	historico *store.Value[[]export.BackupFarmacia]
	config    *store.Value[model.BackupConfig]
	mu        sync.Mutex
}

func NewBackupService(kv store.KV) BackupService {
	return &backupService{
		historico: store.NewValue[[]export.BackupFarmacia](kv, store.KeyBackups),
		config:    store.NewValue[model.BackupConfig](kv, store.KeyBackupConfig),
	}
}

// SalvarLocal prepends the backup to the history and trims it to the cap.
func (s *backupService) SalvarLocal(ctx context.Context, backup *export.BackupFarmacia) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	historico, _, err := s.historico.Load(ctx)
	if err != nil {
		return err
	}
	historico = append([]export.BackupFarmacia{*backup}, historico...)
	if len(historico) > maxBackupsLocais {
		historico = historico[:maxBackupsLocais]
	}
	return s.historico.Save(ctx, historico)
}

func (s *backupService) ListarLocais(ctx context.Context) ([]export.BackupFarmacia, error) {
	historico, ok, err := s.historico.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []export.BackupFarmacia{}, nil
	}
	return historico, nil
}

func (s *backupService) Config(ctx context.Context) (model.BackupConfig, error) {
	cfg, ok, err := s.config.Load(ctx)
	if err != nil {
		return model.BackupConfig{}, err
	}
	if !ok {
		return model.BackupConfig{Ativo: false, Frequencia: model.BackupDiario}, nil
	}
	return cfg, nil
}

func (s *backupService) AtualizarConfig(ctx context.Context, cfg model.BackupConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cfg.Frequencia {
	case model.BackupDiario, model.BackupSemanal, model.BackupMensal:
	case "":
		cfg.Frequencia = model.BackupDiario
	default:
		return ValidationErrors{"Frequência de backup inválida"}
	}

	// Preserve the last-run stamp across config edits.
	atual, ok, err := s.config.Load(ctx)
	if err != nil {
		return err
	}
	if ok && cfg.UltimoBackup == nil {
		cfg.UltimoBackup = atual.UltimoBackup
	}
	return s.config.Save(ctx, cfg)
}

func (s *backupService) MarcarExecutado(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, _, err := s.config.Load(ctx)
	if err != nil {
		return err
	}
	cfg.UltimoBackup = &t
	return s.config.Save(ctx, cfg)
}
