package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Migration copies one collection key forward to its next schema version.
// Transform receives the raw stored payload and returns the upgraded one;
// a nil Transform copies the data verbatim.
type Migration struct {
	FromKey   string
	ToKey     string
	Transform func([]byte) ([]byte, error)
}

// RunMigrations applies each step in order. A step is skipped when its target
// key already exists (the guard that makes the chain idempotent) or when the
// source key was never written. Safe to call on every startup.
func RunMigrations(ctx context.Context, kv KV, migrations []Migration) error {
	for _, m := range migrations {
		if _, err := kv.Get(ctx, m.ToKey); err == nil {
			continue
		} else if err != ErrKeyNotFound {
			return err
		}

		data, err := kv.Get(ctx, m.FromKey)
		if err == ErrKeyNotFound {
			continue
		}
		if err != nil {
			return err
		}

		if m.Transform != nil {
			data, err = m.Transform(data)
			if err != nil {
				return fmt.Errorf("store: migrate %s -> %s: %w", m.FromKey, m.ToKey, err)
			}
		}
		if err := kv.Set(ctx, m.ToKey, data); err != nil {
			return err
		}
		log.Info().Str("from", m.FromKey).Str("to", m.ToKey).Msg("collection migrated")
	}
	return nil
}

// PagamentosMigrations is the payments schema chain: v2 carried the same
// record shape as v3 (verbatim copy), and v4 introduced the status field,
// defaulting pre-existing records to "efetuado" since they were already paid
// when the field appeared.
func PagamentosMigrations() []Migration {
	return []Migration{
		{FromKey: KeyPagamentosV2, ToKey: KeyPagamentosV3},
		{FromKey: KeyPagamentosV3, ToKey: KeyPagamentos, Transform: addDefaultStatus},
	}
}

func addDefaultStatus(data []byte) ([]byte, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for _, r := range records {
		if _, ok := r["status"]; !ok {
			r["status"] = "efetuado"
		}
	}
	return json.Marshal(records)
}
