package dto

type CriarProdutoRequest struct {
	Nome          string `json:"nome"          validate:"required,min=2,max=150"`
	Categoria     string `json:"categoria"     validate:"required"`
	EstoqueMinimo int    `json:"estoqueMinimo" validate:"min=0"`
}

type AtualizarProdutoRequest struct {
	Nome          *string `json:"nome"          validate:"omitempty,min=2,max=150"`
	Categoria     *string `json:"categoria"`
	EstoqueMinimo *int    `json:"estoqueMinimo" validate:"omitempty,min=0"`
}

type CriarCategoriaRequest struct {
	Nome      string `json:"nome"      validate:"required,min=2,max=100"`
	Descricao string `json:"descricao" validate:"max=300"`
}

type AtualizarCategoriaRequest struct {
	Nome      *string `json:"nome"      validate:"omitempty,min=2,max=100"`
	Descricao *string `json:"descricao" validate:"omitempty,max=300"`
}

// EntradaRequest posts a stock entry: a new lot plus its movement record.
type EntradaRequest struct {
	ProdutoID  int64  `json:"produtoId"  validate:"required"`
	Quantidade int    `json:"quantidade" validate:"required,gt=0"`
	Lote       string `json:"lote"       validate:"required"`
	Validade   string `json:"validade"   validate:"required"`
	Fornecedor string `json:"fornecedor"`
}

// SaidaRequest posts a stock exit against one specific lot.
type SaidaRequest struct {
	ProdutoID   int64  `json:"produtoId"  validate:"required"`
	Quantidade  int    `json:"quantidade" validate:"required,gt=0"`
	Lote        string `json:"lote"       validate:"required"`
	Motivo      string `json:"motivo"     validate:"required"`
	Observacoes string `json:"observacoes"`
}
