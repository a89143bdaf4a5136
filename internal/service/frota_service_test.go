package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauloeilson-hash/ctrlpgto/internal/dto"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

func newFrotaSvc() FrotaService {
	kv := newMemKV()
	return NewFrotaService(
		store.NewCollection[model.Veiculo](kv, store.KeyVeiculos),
		store.NewCollection[model.Abastecimento](kv, store.KeyAbastecimentos),
	)
}

func criarVeiculo(t *testing.T, svc FrotaService) *model.Veiculo {
	t.Helper()
	v, err := svc.CriarVeiculo(context.Background(), dto.CriarVeiculoRequest{
		Nome:              "Gol",
		Placa:             "abc1d23",
		Tipo:              "carro",
		CombustivelPadrao: "gasolina",
	})
	require.NoError(t, err)
	return v
}

func abastecerReq(veiculoID int64, data string, litros, total float64) dto.CriarAbastecimentoRequest {
	return dto.CriarAbastecimentoRequest{
		VeiculoID:  veiculoID,
		Data:       data,
		Litros:     decimal.NewFromFloat(litros),
		PrecoLitro: decimal.NewFromFloat(total / litros),
		ValorTotal: decimal.NewFromFloat(total),
	}
}

func TestCriarVeiculo(t *testing.T) {
	svc := newFrotaSvc()
	v := criarVeiculo(t, svc)

	assert.Equal(t, "ABC1D23", v.Placa, "plates are stored uppercase")
	assert.True(t, v.TotalGasto.IsZero())
	assert.Nil(t, v.UltimoAbastecimento)
	assert.Greater(t, v.ID, int64(1_600_000_000_000), "ids are millisecond timestamps")
}

func TestCriarVeiculoValidation(t *testing.T) {
	svc := newFrotaSvc()
	_, err := svc.CriarVeiculo(context.Background(), dto.CriarVeiculoRequest{Nome: " ", Placa: ""})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestCriarAbastecimentoRecomputesVehicle(t *testing.T) {
	svc := newFrotaSvc()
	ctx := context.Background()
	v := criarVeiculo(t, svc)

	a, err := svc.CriarAbastecimento(ctx, abastecerReq(v.ID, "2024-05-10", 40, 220))
	require.NoError(t, err)
	assert.Equal(t, "gasolina", a.Combustivel, "empty fuel falls back to the vehicle default")
	assert.Equal(t, "Gol", a.VeiculoNome)

	_, err = svc.CriarAbastecimento(ctx, abastecerReq(v.ID, "2024-05-01", 35, 200))
	require.NoError(t, err)

	veiculos, err := svc.ListarVeiculos(ctx)
	require.NoError(t, err)
	require.Len(t, veiculos, 1)
	assert.Equal(t, "420", veiculos[0].TotalGasto.String())
	assert.Equal(t, "75", veiculos[0].TotalLitros.String())
	require.NotNil(t, veiculos[0].UltimoAbastecimento)
	assert.Equal(t, "2024-05-10", *veiculos[0].UltimoAbastecimento)
}

func TestCriarAbastecimentoCollectsViolations(t *testing.T) {
	svc := newFrotaSvc()
	_, err := svc.CriarAbastecimento(context.Background(), dto.CriarAbastecimentoRequest{
		VeiculoID: 1,
		Data:      "",
		Litros:    decimal.Zero,
	})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.GreaterOrEqual(t, len(verrs), 3)
	assert.Contains(t, strings.Join(verrs, "; "), "litros")
}

func TestCriarAbastecimentoVeiculoInexistente(t *testing.T) {
	svc := newFrotaSvc()
	_, err := svc.CriarAbastecimento(context.Background(), abastecerReq(999, "2024-05-10", 40, 220))
	assert.ErrorIs(t, err, ErrVeiculoNaoEncontrado)
}

func TestExcluirAbastecimentoRecomputes(t *testing.T) {
	svc := newFrotaSvc()
	ctx := context.Background()
	v := criarVeiculo(t, svc)
	a, err := svc.CriarAbastecimento(ctx, abastecerReq(v.ID, "2024-05-10", 40, 220))
	require.NoError(t, err)

	require.NoError(t, svc.ExcluirAbastecimento(ctx, a.ID))

	veiculos, err := svc.ListarVeiculos(ctx)
	require.NoError(t, err)
	assert.True(t, veiculos[0].TotalGasto.IsZero())
	assert.Nil(t, veiculos[0].UltimoAbastecimento)
}

func TestAtualizarVeiculoRenameSyncsFills(t *testing.T) {
	svc := newFrotaSvc()
	ctx := context.Background()
	v := criarVeiculo(t, svc)
	_, err := svc.CriarAbastecimento(ctx, abastecerReq(v.ID, "2024-05-10", 40, 220))
	require.NoError(t, err)

	nome := "Gol Bola"
	_, err = svc.AtualizarVeiculo(ctx, v.ID, dto.AtualizarVeiculoRequest{Nome: &nome})
	require.NoError(t, err)

	fills, err := svc.ListarAbastecimentos(ctx, query.AbastecimentoFilter{})
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, "Gol Bola", fills[0].VeiculoNome)
}

func TestExcluirVeiculoCascades(t *testing.T) {
	svc := newFrotaSvc()
	ctx := context.Background()
	v := criarVeiculo(t, svc)
	_, err := svc.CriarAbastecimento(ctx, abastecerReq(v.ID, "2024-05-10", 40, 220))
	require.NoError(t, err)

	require.NoError(t, svc.ExcluirVeiculo(ctx, v.ID))

	fills, err := svc.ListarAbastecimentos(ctx, query.AbastecimentoFilter{})
	require.NoError(t, err)
	assert.Empty(t, fills, "fills of a deleted vehicle go with it")
}

func TestFrotaBackupRoundTrip(t *testing.T) {
	svc := newFrotaSvc()
	ctx := context.Background()
	v := criarVeiculo(t, svc)
	_, err := svc.CriarAbastecimento(ctx, abastecerReq(v.ID, "2024-05-10", 40, 220))
	require.NoError(t, err)

	backup, err := svc.ExportarBackup(ctx)
	require.NoError(t, err)

	other := newFrotaSvc()
	require.NoError(t, other.ImportarBackup(ctx, mustJSON(t, backup)))

	veiculos, err := other.ListarVeiculos(ctx)
	require.NoError(t, err)
	require.Len(t, veiculos, 1)
	assert.Equal(t, "220", veiculos[0].TotalGasto.String(), "aggregates rebuilt from imported fills")
}
