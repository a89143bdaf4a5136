package model

// Lote is one batch of a stocked product. Lots are embedded in the product
// record; total stock is always the sum over them.
type Lote struct {
	Numero     string `json:"numero"`
	Validade   string `json:"validade"`
	Quantidade int    `json:"quantidade"`
	Fornecedor string `json:"fornecedor"`
}

// Produto is a pharmacy stock item. Categoria references a Categoria record
// by name.
type Produto struct {
	ID            int64  `json:"id"`
	Nome          string `json:"nome"`
	Categoria     string `json:"categoria"`
	EstoqueMinimo int    `json:"estoqueMinimo"`
	Lotes         []Lote `json:"lotes"`
}

func (p Produto) RecordID() int64 { return p.ID }

// TotalEstoque returns the stock on hand across all lots.
func (p Produto) TotalEstoque() int {
	total := 0
	for _, l := range p.Lotes {
		total += l.Quantidade
	}
	return total
}

// AbaixoDoMinimo reports whether current stock is at or below the threshold.
func (p Produto) AbaixoDoMinimo() bool {
	return p.TotalEstoque() <= p.EstoqueMinimo
}
