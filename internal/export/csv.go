package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
)

// PagamentoCSVRow is one parsed import line. Linha is 1-based and counts data
// rows, not the header, so it matches what the user sees in a spreadsheet
// minus the header line.
type PagamentoCSVRow struct {
	Linha     int
	Nome      string
	Data      string
	Valor     decimal.Decimal
	Historico string
	Status    string
}

// ParsePagamentosCSV reads an import file. Header names are matched
// case-insensitively and the column order is free; Valor accepts both comma
// and dot decimals and an optional R$ prefix. Rows with an unparseable value
// come back with Valor zero so the caller can report the line number.
func ParsePagamentosCSV(r io.Reader) ([]PagamentoCSVRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	pick := func(record []string, names ...string) string {
		for _, n := range names {
			if i, ok := cols[n]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
		}
		return ""
	}

	var rows []PagamentoCSVRow
	linha := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: linha %d: %w", linha+1, err)
		}
		linha++

		row := PagamentoCSVRow{
			Linha:     linha,
			Nome:      pick(record, "nome"),
			Data:      pick(record, "data"),
			Historico: pick(record, "histórico", "historico"),
			Status:    strings.ToLower(pick(record, "status")),
		}
		if raw := pick(record, "valor", "value", "valor (r$)"); raw != "" {
			if v, err := ParseNumber(raw); err == nil {
				row.Valor = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseNumber reads a pt-BR or plain numeric string: "R$ 1.234,56",
// "1234,56" and "1234.56" all parse to the same value.
func ParseNumber(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		// Comma is the decimal separator; dots are thousand separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// WritePagamentosCSV writes the spreadsheet-facing listing: full columns,
// decimal comma, BR-formatted timestamps.
func WritePagamentosCSV(w io.Writer, records []model.Pagamento) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ID", "Nome", "Data", "Valor", "Histórico", "Status", "Criado em", "Atualizado em"}); err != nil {
		return err
	}
	for _, p := range records {
		row := []string{
			fmt.Sprintf("%d", p.ID),
			p.Nome,
			p.Data,
			strings.Replace(p.Valor.StringFixed(2), ".", ",", 1),
			p.Historico,
			p.Status,
			p.CreatedAt.Format("02/01/2006 15:04"),
			p.UpdatedAt.Format("02/01/2006 15:04"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBackupPagamentosCSV writes the interchange variant: raw dot decimals
// and no timestamps, the shape ParsePagamentosCSV round-trips losslessly.
func WriteBackupPagamentosCSV(w io.Writer, records []model.Pagamento) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ID", "Nome", "Data", "Valor", "Histórico", "Status"}); err != nil {
		return err
	}
	for _, p := range records {
		row := []string{
			fmt.Sprintf("%d", p.ID),
			p.Nome,
			p.Data,
			p.Valor.String(),
			p.Historico,
			p.Status,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteProdutosCSV writes the stock listing with lots collapsed into a
// single "numero(qtd); numero(qtd)" column.
func WriteProdutosCSV(w io.Writer, produtos []model.Produto) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ID", "Nome", "Categoria", "Estoque", "Estoque Mínimo", "Lotes"}); err != nil {
		return err
	}
	for _, p := range produtos {
		lotes := make([]string, 0, len(p.Lotes))
		for _, l := range p.Lotes {
			lotes = append(lotes, fmt.Sprintf("%s(%d)", l.Numero, l.Quantidade))
		}
		row := []string{
			fmt.Sprintf("%d", p.ID),
			p.Nome,
			p.Categoria,
			fmt.Sprintf("%d", p.TotalEstoque()),
			fmt.Sprintf("%d", p.EstoqueMinimo),
			strings.Join(lotes, "; "),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMovimentacoesCSV writes the movement log export.
func WriteMovimentacoesCSV(w io.Writer, movs []model.Movimentacao) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ID", "Data", "Produto", "Tipo", "Quantidade", "Lote", "Motivo", "Observações"}); err != nil {
		return err
	}
	for _, m := range movs {
		row := []string{
			fmt.Sprintf("%d", m.ID),
			m.Data,
			m.ProdutoNome,
			m.Tipo,
			fmt.Sprintf("%d", m.Quantidade),
			m.Lote,
			m.Motivo,
			m.Observacoes,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAbastecimentosCSV writes the fuel fill export, decimal comma for the
// money and volume columns.
func WriteAbastecimentosCSV(w io.Writer, fills []model.Abastecimento) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ID", "Veículo", "Data", "Combustível", "Litros", "Preço/Litro", "Valor Total"}); err != nil {
		return err
	}
	for _, a := range fills {
		row := []string{
			fmt.Sprintf("%d", a.ID),
			a.VeiculoNome,
			a.Data,
			a.Combustivel,
			strings.Replace(a.Litros.StringFixed(2), ".", ",", 1),
			strings.Replace(a.PrecoLitro.StringFixed(3), ".", ",", 1),
			strings.Replace(a.ValorTotal.StringFixed(2), ".", ",", 1),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
