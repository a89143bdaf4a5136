package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
)

func formatBRL(v decimal.Decimal) string {
	return "R$ " + strings.Replace(v.StringFixed(2), ".", ",", 1)
}

func formatDateBR(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// formatPeriodo renders the date span covered by the records, collapsing to
// a single date when they all fall on the same day.
func formatPeriodo(records []model.Pagamento) string {
	if len(records) == 0 {
		return "-"
	}
	first, last := records[0].Data, records[0].Data
	for _, p := range records {
		if p.Data < first {
			first = p.Data
		}
		if p.Data > last {
			last = p.Data
		}
	}
	if first == last {
		return formatDateBR(first)
	}
	return formatDateBR(first) + " a " + formatDateBR(last)
}

// WriteRelatorioPDF writes the payments report: title, period and count
// header, the record table, and a bold grand total.
func WriteRelatorioPDF(w io.Writer, titulo string, records []model.Pagamento) error {
	total := decimal.Zero
	for _, p := range records {
		total = total.Add(p.Valor)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(190, 8, tr(titulo), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(190, 5, tr("Período: "+formatPeriodo(records)), "", 1, "L", false, 0, "")
	pdf.CellFormat(190, 5, fmt.Sprintf("Registros: %d", len(records)), "", 1, "L", false, 0, "")
	pdf.CellFormat(190, 5, tr("Somatório: "+formatBRL(total)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	widths := []float64{18, 58, 24, 28, 62}
	headers := []string{"ID", "Nome", "Data", "Valor (R$)", "Histórico"}
	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, tr(h), "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, p := range records {
		historico := p.Historico
		if len(historico) > 45 {
			historico = historico[:44] + "…"
		}
		pdf.CellFormat(widths[0], 5, fmt.Sprintf("%d", p.ID), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 5, tr(p.Nome), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 5, formatDateBR(p.Data), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 5, tr(formatBRL(p.Valor)), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 5, tr(historico), "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(190, 7, tr("SOMATÓRIO TOTAL: "+formatBRL(total)), "T", 1, "L", false, 0, "")

	return pdf.Output(w)
}

// WriteAnnualPDF writes the annual pivot in landscape, one month per column.
func WriteAnnualPDF(w io.Writer, summary query.AnnualSummary, ano string) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(277, 8, tr("Relatório Anual "+ano), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	nameW := 55.0
	totalW := 26.0
	monthW := (277 - nameW - totalW) / float64(max(len(summary.Months), 1))

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(nameW, 6, "Nome", "B", 0, "L", false, 0, "")
	for _, m := range summary.Months {
		pdf.CellFormat(monthW, 6, m, "B", 0, "R", false, 0, "")
	}
	pdf.CellFormat(totalW, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, row := range summary.Rows {
		pdf.CellFormat(nameW, 5, tr(row.Nome), "", 0, "L", false, 0, "")
		for _, v := range row.Values {
			cell := ""
			if !v.IsZero() {
				cell = strings.Replace(v.StringFixed(2), ".", ",", 1)
			}
			pdf.CellFormat(monthW, 5, cell, "", 0, "R", false, 0, "")
		}
		pdf.CellFormat(totalW, 5, tr(formatBRL(row.Total)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(277, 7, tr("TOTAL DO ANO: "+formatBRL(summary.Total)), "T", 1, "L", false, 0, "")

	return pdf.Output(w)
}

// WriteMovimentacoesPDF writes the stock movement report.
func WriteMovimentacoesPDF(w io.Writer, titulo string, movs []model.Movimentacao) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(190, 8, tr(titulo), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(190, 5, fmt.Sprintf("Movimentações: %d", len(movs)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	widths := []float64{22, 52, 20, 18, 26, 52}
	headers := []string{"Data", "Produto", "Tipo", "Qtd", "Lote", "Motivo"}
	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, tr(h), "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, m := range movs {
		pdf.CellFormat(widths[0], 5, formatDateBR(m.Data), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 5, tr(m.ProdutoNome), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 5, tr(m.Tipo), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 5, fmt.Sprintf("%d", m.Quantidade), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 5, tr(m.Lote), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 5, tr(m.Motivo), "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}
