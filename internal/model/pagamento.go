package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Legacy collections persist amounts as plain JSON numbers; keep the wire
	// format compatible so old backups re-import without conversion.
	decimal.MarshalJSONWithoutQuotes = true
}

// Valid payment statuses. Records migrated from schema v3 (which had no
// status at all) default to "efetuado".
const (
	StatusPendente = "pendente"
	StatusEfetuado = "efetuado"
)

// Pagamento is one entry of the payments ledger.
// Data is a calendar date in ISO form (YYYY-MM-DD); lexicographic order on it
// matches chronological order, which the filter and sort layers rely on.
type Pagamento struct {
	ID        int64           `json:"id"`
	Nome      string          `json:"nome"`
	Data      string          `json:"data"`
	Valor     decimal.Decimal `json:"valor"`
	Historico string          `json:"historico"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (p Pagamento) RecordID() int64 { return p.ID }
