package model

// CategoriaOutros is the sentinel category: it always exists and cannot be
// deleted, so products always have a classification to fall back on.
const CategoriaOutros = "Outros"

// Categoria classifies pharmacy products. Names are unique case-insensitively.
type Categoria struct {
	ID        int64  `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
}

func (c Categoria) RecordID() int64 { return c.ID }

// CategoriasPadrao is the seed collection written on first use, matching the
// stock manager's factory defaults.
func CategoriasPadrao() []Categoria {
	return []Categoria{
		{ID: 1, Nome: "Analgésico", Descricao: "Medicamentos para alívio da dor"},
		{ID: 2, Nome: "Antibiótico", Descricao: "Medicamentos para tratamento de infecções"},
		{ID: 3, Nome: "Antialérgico", Descricao: "Medicamentos para tratamento de alergias"},
		{ID: 4, Nome: "Anti-inflamatório", Descricao: "Medicamentos para redução de inflamações"},
		{ID: 5, Nome: CategoriaOutros, Descricao: "Outros tipos de medicamentos"},
	}
}
