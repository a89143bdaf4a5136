package dto

import (
	"github.com/shopspring/decimal"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────
// Binding tags only guard the JSON shape; the business rules (future dates,
// name length, positive amounts) are validated in the service so every
// violation is reported at once.

type CriarPagamentoRequest struct {
	Nome      string          `json:"nome"`
	Data      string          `json:"data"`
	Valor     decimal.Decimal `json:"valor"`
	Historico string          `json:"historico"`
	Status    string          `json:"status"`
}

type AtualizarPagamentoRequest struct {
	Nome      *string          `json:"nome"`
	Data      *string          `json:"data"`
	Valor     *decimal.Decimal `json:"valor"`
	Historico *string          `json:"historico"`
	Status    *string          `json:"status"`
}

type BulkStatusRequest struct {
	IDs    []int64 `json:"ids"    validate:"required,min=1"`
	Status string  `json:"status" validate:"required"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type BulkStatusResponse struct {
	Atualizados int `json:"atualizados"`
	Solicitados int `json:"solicitados"`
}

type PagamentoListResponse struct {
	Data  []model.Pagamento    `json:"data"`
	Total int                  `json:"total"`
	Stats query.PagamentoStats `json:"stats"`
}

// ImportResultado is the per-batch summary of a CSV import: rows lacking the
// required fields are silently skipped, rows with bad values become per-row
// errors, and neither aborts the rest of the batch.
type ImportResultado struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
	Total   int      `json:"total"`
}
