package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
)

// BackupMetadata describes a payments backup file. TotalValue is the sum of
// all record values at export time, kept so a restore can be sanity-checked
// without replaying the records.
type BackupMetadata struct {
	App         string          `json:"app"`
	Version     string          `json:"version"`
	ExportedAt  time.Time       `json:"exportedAt"`
	RecordCount int             `json:"recordCount"`
	TotalValue  decimal.Decimal `json:"totalValue"`
}

// BackupPagamentos is the payments backup envelope, the same shape written
// to local files and to the remote drive folder.
type BackupPagamentos struct {
	Data     []model.Pagamento `json:"data"`
	Metadata BackupMetadata    `json:"metadata"`
}

func NewBackupPagamentos(records []model.Pagamento) *BackupPagamentos {
	total := decimal.Zero
	for _, p := range records {
		total = total.Add(p.Valor)
	}
	return &BackupPagamentos{
		Data: records,
		Metadata: BackupMetadata{
			App:         "Controle de Pagamentos",
			Version:     "1.0",
			ExportedAt:  time.Now().UTC(),
			RecordCount: len(records),
			TotalValue:  total,
		},
	}
}

// ParseBackupPagamentos reads a payments backup in any of the shapes that
// have been in circulation: the canonical envelope, a bare record array, and
// older files keyed "records" or "dados".
func ParseBackupPagamentos(raw []byte) ([]model.Pagamento, error) {
	var envelope BackupPagamentos
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var bare []model.Pagamento
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	var legacy struct {
		Records []model.Pagamento `json:"records"`
		Dados   []model.Pagamento `json:"dados"`
	}
	if err := json.Unmarshal(raw, &legacy); err == nil {
		if legacy.Records != nil {
			return legacy.Records, nil
		}
		if legacy.Dados != nil {
			return legacy.Dados, nil
		}
	}
	return nil, fmt.Errorf("backup: formato de arquivo não reconhecido")
}

// FrotaMetadata describes a fleet backup file.
type FrotaMetadata struct {
	DataExportacao      time.Time `json:"dataExportacao"`
	TotalVeiculos       int       `json:"totalVeiculos"`
	TotalAbastecimentos int       `json:"totalAbastecimentos"`
	VersaoSistema       string    `json:"versaoSistema"`
}

// BackupFrota bundles vehicles and fills in one file. Vehicle aggregates are
// recomputed on restore, so stale values in the file are harmless.
type BackupFrota struct {
	Metadata       FrotaMetadata         `json:"metadata"`
	Veiculos       []model.Veiculo       `json:"veiculos"`
	Abastecimentos []model.Abastecimento `json:"abastecimentos"`
}

func NewBackupFrota(veiculos []model.Veiculo, fills []model.Abastecimento) *BackupFrota {
	return &BackupFrota{
		Metadata: FrotaMetadata{
			DataExportacao:      time.Now().UTC(),
			TotalVeiculos:       len(veiculos),
			TotalAbastecimentos: len(fills),
			VersaoSistema:       "1.0",
		},
		Veiculos:       veiculos,
		Abastecimentos: fills,
	}
}

func ParseBackupFrota(raw []byte) (*BackupFrota, error) {
	var backup BackupFrota
	if err := json.Unmarshal(raw, &backup); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	if backup.Veiculos == nil && backup.Abastecimentos == nil {
		return nil, fmt.Errorf("backup: formato de arquivo não reconhecido")
	}
	if backup.Veiculos == nil {
		backup.Veiculos = []model.Veiculo{}
	}
	if backup.Abastecimentos == nil {
		backup.Abastecimentos = []model.Abastecimento{}
	}
	return &backup, nil
}

// DadosFarmacia carries the three pharmacy collections. Any of them may be
// absent: backups can be exported with a subset selected.
type DadosFarmacia struct {
	Estoque       []model.Produto      `json:"estoque,omitempty"`
	Movimentacoes []model.Movimentacao `json:"movimentacoes,omitempty"`
	Categorias    []model.Categoria    `json:"categorias,omitempty"`
}

// BackupFarmacia is the pharmacy backup envelope. Data is the export
// timestamp in ISO form, Nome the user-facing backup label.
type BackupFarmacia struct {
	Nome   string        `json:"nome"`
	Data   string        `json:"data"`
	Versao string        `json:"versao"`
	Dados  DadosFarmacia `json:"dados"`
}

func NewBackupFarmacia(produtos []model.Produto, movs []model.Movimentacao, categorias []model.Categoria) *BackupFarmacia {
	now := time.Now().UTC()
	return &BackupFarmacia{
		Nome:   "backup_farmacia_" + now.Format("20060102_150405"),
		Data:   now.Format(time.RFC3339),
		Versao: "1.0",
		Dados: DadosFarmacia{
			Estoque:       produtos,
			Movimentacoes: movs,
			Categorias:    categorias,
		},
	}
}

func ParseBackupFarmacia(raw []byte) (*BackupFarmacia, error) {
	var backup BackupFarmacia
	if err := json.Unmarshal(raw, &backup); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	if backup.Dados.Estoque == nil && backup.Dados.Movimentacoes == nil && backup.Dados.Categorias == nil {
		return nil, fmt.Errorf("backup: formato de arquivo não reconhecido")
	}
	if backup.Dados.Estoque == nil {
		backup.Dados.Estoque = []model.Produto{}
	}
	if backup.Dados.Movimentacoes == nil {
		backup.Dados.Movimentacoes = []model.Movimentacao{}
	}
	return &backup, nil
}
