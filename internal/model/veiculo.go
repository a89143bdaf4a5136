package model

import "github.com/shopspring/decimal"

// Veiculo is a registered vehicle of the fuel tracker.
// TotalGasto, TotalLitros and UltimoAbastecimento are derived: they are
// recomputed from the set of Abastecimento records referencing this vehicle
// whenever that set changes, never edited directly.
type Veiculo struct {
	ID                  int64           `json:"id"`
	Nome                string          `json:"nome"`
	Placa               string          `json:"placa"`
	Tipo                string          `json:"tipo"`
	CombustivelPadrao   string          `json:"combustivelPadrao"`
	TotalGasto          decimal.Decimal `json:"totalGasto"`
	TotalLitros         decimal.Decimal `json:"totalLitros"`
	UltimoAbastecimento *string         `json:"ultimoAbastecimento"`
}

func (v Veiculo) RecordID() int64 { return v.ID }
