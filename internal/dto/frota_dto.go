package dto

import "github.com/shopspring/decimal"

type CriarVeiculoRequest struct {
	Nome              string `json:"nome"              validate:"required,min=2,max=100"`
	Placa             string `json:"placa"             validate:"required,max=10"`
	Tipo              string `json:"tipo"              validate:"required"`
	CombustivelPadrao string `json:"combustivelPadrao" validate:"required"`
}

type AtualizarVeiculoRequest struct {
	Nome              *string `json:"nome"              validate:"omitempty,min=2,max=100"`
	Placa             *string `json:"placa"             validate:"omitempty,max=10"`
	Tipo              *string `json:"tipo"`
	CombustivelPadrao *string `json:"combustivelPadrao"`
}

type CriarAbastecimentoRequest struct {
	VeiculoID   int64           `json:"veiculoId" validate:"required"`
	Data        string          `json:"data"      validate:"required"`
	Combustivel string          `json:"combustivel"`
	Litros      decimal.Decimal `json:"litros"`
	PrecoLitro  decimal.Decimal `json:"precoLitro"`
	ValorTotal  decimal.Decimal `json:"valorTotal"`
	Odometro    *int            `json:"odometro"`
}
