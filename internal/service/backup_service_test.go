package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauloeilson-hash/ctrlpgto/internal/export"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
)

func TestSalvarLocalTrimsHistory(t *testing.T) {
	svc := NewBackupService(newMemKV())
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		backup := export.NewBackupFarmacia(nil, nil, nil)
		backup.Nome = fmt.Sprintf("backup_%02d", i)
		require.NoError(t, svc.SalvarLocal(ctx, backup))
	}

	historico, err := svc.ListarLocais(ctx)
	require.NoError(t, err)
	require.Len(t, historico, 10, "only the ten most recent snapshots survive")
	assert.Equal(t, "backup_11", historico[0].Nome, "newest first")
	assert.Equal(t, "backup_02", historico[9].Nome)
}

func TestBackupConfigDefaults(t *testing.T) {
	svc := NewBackupService(newMemKV())
	cfg, err := svc.Config(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.Ativo)
	assert.Equal(t, model.BackupDiario, cfg.Frequencia)
}

func TestAtualizarConfigValidatesFrequencia(t *testing.T) {
	svc := NewBackupService(newMemKV())
	ctx := context.Background()

	err := svc.AtualizarConfig(ctx, model.BackupConfig{Ativo: true, Frequencia: "quinzenal"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	// Empty frequency normalizes to daily.
	require.NoError(t, svc.AtualizarConfig(ctx, model.BackupConfig{Ativo: true}))
	cfg, err := svc.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.BackupDiario, cfg.Frequencia)
}

func TestAtualizarConfigPreservesUltimoBackup(t *testing.T) {
	svc := NewBackupService(newMemKV())
	ctx := context.Background()

	executado := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, svc.AtualizarConfig(ctx, model.BackupConfig{Ativo: true, Frequencia: model.BackupDiario}))
	require.NoError(t, svc.MarcarExecutado(ctx, executado))

	require.NoError(t, svc.AtualizarConfig(ctx, model.BackupConfig{Ativo: true, Frequencia: model.BackupSemanal}))

	cfg, err := svc.Config(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg.UltimoBackup)
	assert.True(t, cfg.UltimoBackup.Equal(executado))
}

func TestDeveFazerBackup(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	ontem := now.Add(-25 * time.Hour)
	haPouco := now.Add(-time.Hour)

	assert.False(t, model.BackupConfig{}.DeveFazerBackup(now), "disabled config never fires")
	assert.True(t, model.BackupConfig{Ativo: true}.DeveFazerBackup(now), "never ran means due")
	assert.True(t, model.BackupConfig{Ativo: true, Frequencia: model.BackupDiario, UltimoBackup: &ontem}.DeveFazerBackup(now))
	assert.False(t, model.BackupConfig{Ativo: true, Frequencia: model.BackupDiario, UltimoBackup: &haPouco}.DeveFazerBackup(now))
	assert.False(t, model.BackupConfig{Ativo: true, Frequencia: model.BackupSemanal, UltimoBackup: &ontem}.DeveFazerBackup(now))
}
