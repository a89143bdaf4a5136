package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
)

func pg(id int64, nome, data string, valor float64, status string) model.Pagamento {
	return model.Pagamento{
		ID:     id,
		Nome:   nome,
		Data:   data,
		Valor:  decimal.NewFromFloat(valor),
		Status: status,
	}
}

func TestFilterPagamentosCombinesCriteria(t *testing.T) {
	records := []model.Pagamento{
		pg(1, "Luz", "2024-01-10", 100, model.StatusEfetuado),
		pg(2, "Luz", "2024-03-15", 120, model.StatusPendente),
		pg(3, "Água", "2024-03-20", 80, model.StatusPendente),
		pg(4, "Luz", "2023-03-15", 90, model.StatusPendente),
	}

	out := FilterPagamentos(records, PagamentoFilter{
		Nome:        "Luz",
		DataInicial: "2024-01-01",
		Status:      model.StatusPendente,
	})
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].ID)
}

func TestFilterPagamentosHistoricoSubstring(t *testing.T) {
	records := []model.Pagamento{
		{ID: 1, Nome: "Luz", Data: "2024-01-10", Historico: "Conta de Energia"},
		{ID: 2, Nome: "Luz", Data: "2024-02-10", Historico: "outra coisa"},
	}
	out := FilterPagamentos(records, PagamentoFilter{Historico: "energia"})
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
}

func TestSortPagamentosDateDescIDDescTie(t *testing.T) {
	records := []model.Pagamento{
		pg(1, "a", "2024-05-01", 1, ""),
		pg(3, "b", "2024-05-01", 1, ""),
		pg(2, "c", "2024-06-01", 1, ""),
	}
	out := SortPagamentos(records)
	assert.Equal(t, []int64{2, 3, 1}, []int64{out[0].ID, out[1].ID, out[2].ID})
	// input untouched
	assert.Equal(t, int64(1), records[0].ID)
}

func TestStatisticsEmpty(t *testing.T) {
	stats := Statistics(nil)
	assert.Equal(t, 0, stats.Count)
	assert.True(t, stats.Total.IsZero())
	assert.True(t, stats.Average.IsZero())
	assert.Nil(t, stats.StartDate)
	assert.Nil(t, stats.EndDate)
}

func TestStatisticsAggregates(t *testing.T) {
	records := []model.Pagamento{
		pg(1, "a", "2024-02-01", 10, ""),
		pg(2, "b", "2024-01-01", 20, ""),
		pg(3, "c", "2024-03-01", 15, ""),
	}
	stats := Statistics(records)
	assert.Equal(t, 3, stats.Count)
	assert.True(t, stats.Total.Equal(decimal.NewFromInt(45)))
	assert.True(t, stats.Average.Equal(decimal.NewFromInt(15)))
	require.NotNil(t, stats.StartDate)
	assert.Equal(t, "2024-01-01", *stats.StartDate)
	assert.Equal(t, "2024-03-01", *stats.EndDate)
	assert.True(t, stats.MinValue.Equal(decimal.NewFromInt(10)))
	assert.True(t, stats.MaxValue.Equal(decimal.NewFromInt(20)))
}

func TestStatisticsAverageRounded(t *testing.T) {
	records := []model.Pagamento{
		pg(1, "a", "2024-01-01", 10, ""),
		pg(2, "b", "2024-01-02", 10, ""),
		pg(3, "c", "2024-01-03", 5, ""),
	}
	stats := Statistics(records)
	assert.Equal(t, "8.33", stats.Average.StringFixed(2))
}

func TestBuildAnnualSummary(t *testing.T) {
	records := []model.Pagamento{
		pg(1, "Luz", "2024-01-10", 100, ""),
		pg(2, "Luz", "2024-03-05", 50, ""),
		pg(3, "Água", "2024-03-20", 80, ""),
		pg(4, "Luz", "2023-06-01", 999, ""), // other year, excluded
	}

	summary := BuildAnnualSummary(records, "2024")
	assert.Equal(t, []string{"01/2024", "03/2024"}, summary.Months)
	require.Len(t, summary.Rows, 2)

	// locale-aware alphabetical: Água before Luz
	assert.Equal(t, "Água", summary.Rows[0].Nome)
	assert.Equal(t, "Luz", summary.Rows[1].Nome)

	luz := summary.Rows[1]
	assert.True(t, luz.Values[0].Equal(decimal.NewFromInt(100)))
	assert.True(t, luz.Values[1].Equal(decimal.NewFromInt(50)))
	assert.True(t, luz.Total.Equal(decimal.NewFromInt(150)))
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(230)))
}

func TestTotaisPorNomeDescending(t *testing.T) {
	records := []model.Pagamento{
		pg(1, "Luz", "2024-01-01", 10, ""),
		pg(2, "Água", "2024-01-02", 30, ""),
		pg(3, "Luz", "2024-01-03", 5, ""),
	}
	out := TotaisPorNome(records)
	require.Len(t, out, 2)
	assert.Equal(t, "Água", out[0].Nome)
	assert.True(t, out[0].Total.Equal(decimal.NewFromInt(30)))
	assert.True(t, out[1].Total.Equal(decimal.NewFromInt(15)))
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2024-02-29"))
	assert.False(t, IsValidDate("2023-02-29"))
	assert.False(t, IsValidDate("2024-13-01"))
	assert.False(t, IsValidDate("10/01/2024"))
	assert.False(t, IsValidDate(""))
}
