package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
)

func TestParseNumber(t *testing.T) {
	cases := map[string]string{
		"R$ 1.234,56": "1234.56",
		"1234,56":     "1234.56",
		"1234.56":     "1234.56",
		"150":         "150",
		"0,5":         "0.5",
	}
	for input, want := range cases {
		v, err := ParseNumber(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, v.String(), input)
	}

	_, err := ParseNumber("abc")
	assert.Error(t, err)
}

func TestParsePagamentosCSVHeaderTolerance(t *testing.T) {
	csv := strings.Join([]string{
		"Data,NOME,Valor (R$),Histórico,Status",
		"2024-01-10,Luz,\"R$ 150,50\",conta,EFETUADO",
	}, "\n")

	rows, err := ParsePagamentosCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Linha)
	assert.Equal(t, "Luz", rows[0].Nome)
	assert.Equal(t, "150.5", rows[0].Valor.String())
	assert.Equal(t, "efetuado", rows[0].Status, "status is lowercased")
}

func TestParsePagamentosCSVBadValueIsZero(t *testing.T) {
	csv := "Nome,Data,Valor\nLuz,2024-01-10,abc\n"
	rows, err := ParsePagamentosCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Valor.IsZero(), "bad values surface as zero, not as a parse failure")
}

func TestParsePagamentosCSVEmpty(t *testing.T) {
	rows, err := ParsePagamentosCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBackupCSVRoundTrip(t *testing.T) {
	records := []model.Pagamento{
		{ID: 1, Nome: "Luz", Data: "2024-01-10", Valor: decimal.RequireFromString("150.50"), Historico: "conta", Status: model.StatusEfetuado},
		{ID: 2, Nome: "Água", Data: "2024-01-11", Valor: decimal.RequireFromString("80"), Status: model.StatusPendente},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBackupPagamentosCSV(&buf, records))

	rows, err := ParsePagamentosCSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Luz", rows[0].Nome)
	assert.True(t, rows[0].Valor.Equal(records[0].Valor))
	assert.Equal(t, "Água", rows[1].Nome)
	assert.Equal(t, model.StatusPendente, rows[1].Status)
}

func TestWritePagamentosCSVUsesDecimalComma(t *testing.T) {
	records := []model.Pagamento{
		{ID: 1, Nome: "Luz", Data: "2024-01-10", Valor: decimal.RequireFromString("150.5"), Status: model.StatusPendente},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePagamentosCSV(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "Histórico")
	assert.Contains(t, out, "\"150,50\"")
}
