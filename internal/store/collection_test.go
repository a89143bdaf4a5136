package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory KV stub ────────────────────────────────────────────────────────

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type testRec struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}

func (r testRec) RecordID() int64 { return r.ID }

// ── Collection ───────────────────────────────────────────────────────────────

func TestCollectionLoadAbsentKey(t *testing.T) {
	col := NewCollection[testRec](newMemKV(), "itens")

	records, err := col.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCollectionLoadSeedsOnFirstUse(t *testing.T) {
	col := NewCollection[testRec](newMemKV(), "itens").
		WithSeed(func() []testRec { return []testRec{{ID: 1, Nome: "padrão"}} })

	records, err := col.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "padrão", records[0].Nome)
}

func TestCollectionSaveLoadRoundTrip(t *testing.T) {
	col := NewCollection[testRec](newMemKV(), "itens")
	ctx := context.Background()

	require.NoError(t, col.Save(ctx, []testRec{{ID: 1, Nome: "a"}, {ID: 2, Nome: "b"}}))

	records, err := col.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[1].ID)
}

func TestCollectionLoadCorruptPayload(t *testing.T) {
	kv := newMemKV()
	require.NoError(t, kv.Set(context.Background(), "itens", []byte("{not json")))

	col := NewCollection[testRec](kv, "itens")
	records, err := col.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records, "corrupt payload reads as empty, never as an error")
}

func TestCollectionSubscribe(t *testing.T) {
	col := NewCollection[testRec](newMemKV(), "itens")
	ctx := context.Background()

	var events []ChangeEvent
	dispose := col.Subscribe(func(ev ChangeEvent) { events = append(events, ev) })

	require.NoError(t, col.Save(ctx, []testRec{{ID: 1}}))
	require.NoError(t, col.Clear(ctx))

	require.Len(t, events, 2)
	assert.Equal(t, ActionSave, events[0].Action)
	assert.Equal(t, 1, events[0].Count)
	assert.Equal(t, ActionClear, events[1].Action)

	dispose()
	require.NoError(t, col.Save(ctx, []testRec{{ID: 2}}))
	assert.Len(t, events, 2, "disposed subscriber receives nothing")
}

func TestValueRoundTrip(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()
	val := NewValue[testRec](kv, "singleton")

	_, ok, err := val.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, val.Save(ctx, testRec{ID: 7, Nome: "x"}))
	got, ok, err := val.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), got.ID)
}

func TestFileKVRoundTrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = kv.Get(ctx, "chave")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "chave", []byte(`[1,2]`)))
	data, err := kv.Get(ctx, "chave")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), data)

	require.NoError(t, kv.Delete(ctx, "chave"))
	_, err = kv.Get(ctx, "chave")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
