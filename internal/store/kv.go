// Package store implements whole-collection persistence over a key/value
// substrate. Every domain collection lives under a single key and is always
// read and written in full — there is no partial update.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been written
// (or was cleared). Callers treat it as "empty collection", never as fatal.
var ErrKeyNotFound = errors.New("store: key not found")

// KV is the persistence substrate contract. Implementations must make Set
// atomic per key: a concurrent reader sees either the old or the new value,
// never a torn write.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Storage keys, one per collection. The versioned payments key matches the
// legacy web app so existing exports and backups stay importable.
const (
	KeyPagamentosV2 = "pagamentos_data_v2"
	KeyPagamentosV3 = "pagamentos_data_v3"
	KeyPagamentos   = "pagamentos_data_v4"

	KeyVeiculos       = "veiculos"
	KeyAbastecimentos = "abastecimentos"

	KeyEstoque       = "estoque"
	KeyMovimentacoes = "movimentacoes"
	KeyCategorias    = "categorias"
	KeyBackups       = "backups"

	KeyBackupConfig = "backupConfig"
	KeyPreferencias = "preferencias"
	KeyDriveToken   = "driveToken"
)
