package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagamentosMigrationChain(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()

	legacy := []map[string]any{
		{"id": 1, "nome": "Luz", "data": "2024-01-10", "valor": 150.5},
		{"id": 2, "nome": "Água", "data": "2024-02-05", "valor": 80, "status": "pendente"},
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, KeyPagamentosV2, raw))

	require.NoError(t, RunMigrations(ctx, kv, PagamentosMigrations()))

	data, err := kv.Get(ctx, KeyPagamentos)
	require.NoError(t, err)

	var migrated []map[string]any
	require.NoError(t, json.Unmarshal(data, &migrated))
	require.Len(t, migrated, 2)
	assert.Equal(t, "efetuado", migrated[0]["status"], "records predating the field default to efetuado")
	assert.Equal(t, "pendente", migrated[1]["status"], "existing statuses are untouched")
}

func TestMigrationsIdempotent(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, KeyPagamentosV2, []byte(`[{"id":1,"nome":"Luz","data":"2024-01-10","valor":10}]`)))
	require.NoError(t, RunMigrations(ctx, kv, PagamentosMigrations()))

	// Mutate the migrated collection, then run again: it must not be
	// overwritten by a second pass over the legacy key.
	require.NoError(t, kv.Set(ctx, KeyPagamentos, []byte(`[]`)))
	require.NoError(t, RunMigrations(ctx, kv, PagamentosMigrations()))

	data, err := kv.Get(ctx, KeyPagamentos)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), data)
}

func TestMigrationsNoLegacyData(t *testing.T) {
	kv := newMemKV()
	require.NoError(t, RunMigrations(context.Background(), kv, PagamentosMigrations()))

	_, err := kv.Get(context.Background(), KeyPagamentos)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
