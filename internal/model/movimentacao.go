package model

// Movement kinds. The accent in "saída" is part of the stored value — legacy
// collections use it and reports match on it.
const (
	TipoEntrada = "entrada"
	TipoSaida   = "saída"
)

// Movimentacao is one stock movement (entry or exit). ProdutoNome is a
// denormalized snapshot; Motivo and Observacoes are only set for exits.
type Movimentacao struct {
	ID          int64  `json:"id"`
	Data        string `json:"data"`
	ProdutoID   int64  `json:"produtoId"`
	ProdutoNome string `json:"produtoNome"`
	Tipo        string `json:"tipo"`
	Quantidade  int    `json:"quantidade"`
	Lote        string `json:"lote"`
	Motivo      string `json:"motivo,omitempty"`
	Observacoes string `json:"observacoes,omitempty"`
}

func (m Movimentacao) RecordID() int64 { return m.ID }
