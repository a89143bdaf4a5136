package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pauloeilson-hash/ctrlpgto/internal/service"
)

// Backup job domains.
const (
	DominioPagamentos = "pagamentos"
	DominioFrota      = "frota"
	DominioEstoque    = "estoque"
)

// BackupRunner snapshots one domain's collections to a JSON file under Dir.
// Pharmacy backups additionally go into the local backup history.
type BackupRunner struct {
	Pagamentos service.PagamentoService
	Frota      service.FrotaService
	Estoque    service.EstoqueService
	Backups    service.BackupService
	Dir        string
}

func (r *BackupRunner) Run(ctx context.Context, dominio string) error {
	var payload any
	switch dominio {
	case DominioPagamentos:
		backup, err := r.Pagamentos.ExportarBackup(ctx)
		if err != nil {
			return err
		}
		payload = backup
	case DominioFrota:
		backup, err := r.Frota.ExportarBackup(ctx)
		if err != nil {
			return err
		}
		payload = backup
	case DominioEstoque:
		backup, err := r.Estoque.ExportarBackup(ctx)
		if err != nil {
			return err
		}
		if err := r.Backups.SalvarLocal(ctx, backup); err != nil {
			return err
		}
		payload = backup
	default:
		return fmt.Errorf("worker: domínio desconhecido %q", dominio)
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("backup_%s_%s.json", dominio, time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(r.Dir, name)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	log.Info().Str("dominio", dominio).Str("file", path).Msg("backup written")
	return nil
}

// RunAll snapshots every domain, returning the first error.
func (r *BackupRunner) RunAll(ctx context.Context) error {
	for _, dominio := range []string{DominioPagamentos, DominioFrota, DominioEstoque} {
		if err := r.Run(ctx, dominio); err != nil {
			return err
		}
	}
	return nil
}
