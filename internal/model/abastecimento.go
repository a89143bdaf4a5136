package model

import "github.com/shopspring/decimal"

// Abastecimento is one fuel fill. VeiculoNome is a denormalized snapshot of the
// vehicle name at posting time, kept so the record stays readable after the
// vehicle is renamed or removed from a backup file.
//
// Litros, PrecoLitro and ValorTotal are cross-derivable but the service accepts
// any positive combination; deriving the third value from the other two is a
// client-side convenience only.
type Abastecimento struct {
	ID          int64           `json:"id"`
	VeiculoID   int64           `json:"veiculoId"`
	VeiculoNome string          `json:"veiculoNome"`
	Data        string          `json:"data"`
	Combustivel string          `json:"combustivel"`
	Litros      decimal.Decimal `json:"litros"`
	PrecoLitro  decimal.Decimal `json:"precoLitro"`
	ValorTotal  decimal.Decimal `json:"valorTotal"`
	Odometro    *int            `json:"odometro"`
}

func (a Abastecimento) RecordID() int64 { return a.ID }
