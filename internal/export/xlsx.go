package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
)

const sheet = "Sheet1"

// WritePagamentosXLSX writes the payments workbook: one sheet, one record
// per row, numeric Valor cells so spreadsheet formulas work on them.
func WritePagamentosXLSX(w io.Writer, records []model.Pagamento) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"ID", "Nome", "Data", "Valor (R$)", "Histórico", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, p := range records {
		row := i + 2
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), p.ID)
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), p.Nome)
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), p.Data)
		valor, _ := p.Valor.Float64()
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), valor)
		f.SetCellValue(sheet, "E"+fmt.Sprint(row), p.Historico)
		f.SetCellValue(sheet, "F"+fmt.Sprint(row), p.Status)
	}
	return f.Write(w)
}

// WriteAnnualXLSX writes the nome × mês pivot: month columns, one payee per
// row, row totals in the last column and a grand total row at the bottom.
func WriteAnnualXLSX(w io.Writer, summary query.AnnualSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue(sheet, "A1", "Nome")
	for i, m := range summary.Months {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(sheet, cell, m)
	}
	totalCol := len(summary.Months) + 2
	cell, _ := excelize.CoordinatesToCellName(totalCol, 1)
	f.SetCellValue(sheet, cell, "Total")

	for r, row := range summary.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		f.SetCellValue(sheet, cell, row.Nome)
		for c, v := range row.Values {
			cell, _ := excelize.CoordinatesToCellName(c+2, r+2)
			valor, _ := v.Float64()
			f.SetCellValue(sheet, cell, valor)
		}
		cell, _ = excelize.CoordinatesToCellName(totalCol, r+2)
		valor, _ := row.Total.Float64()
		f.SetCellValue(sheet, cell, valor)
	}

	lastRow := len(summary.Rows) + 2
	cell, _ = excelize.CoordinatesToCellName(1, lastRow)
	f.SetCellValue(sheet, cell, "TOTAL")
	cell, _ = excelize.CoordinatesToCellName(totalCol, lastRow)
	total, _ := summary.Total.Float64()
	f.SetCellValue(sheet, cell, total)

	return f.Write(w)
}

// WriteMovimentacoesXLSX writes the stock movement workbook.
func WriteMovimentacoesXLSX(w io.Writer, movs []model.Movimentacao) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"ID", "Data", "Produto", "Tipo", "Quantidade", "Lote", "Motivo", "Observações"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, m := range movs {
		row := i + 2
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), m.ID)
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), m.Data)
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), m.ProdutoNome)
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), m.Tipo)
		f.SetCellValue(sheet, "E"+fmt.Sprint(row), m.Quantidade)
		f.SetCellValue(sheet, "F"+fmt.Sprint(row), m.Lote)
		f.SetCellValue(sheet, "G"+fmt.Sprint(row), m.Motivo)
		f.SetCellValue(sheet, "H"+fmt.Sprint(row), m.Observacoes)
	}
	return f.Write(w)
}
