package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Record is any persisted entity with a numeric identity.
type Record interface {
	RecordID() int64
}

// Actions reported by change notifications.
const (
	ActionSave  = "save"
	ActionClear = "clear"
)

// ChangeEvent describes one successful write to a collection.
type ChangeEvent struct {
	Key    string
	Action string
	Count  int
}

// notifier fans ChangeEvents out to subscribers. Subscribe returns a disposer;
// callers must invoke it on teardown so handlers never accumulate.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(ChangeEvent)
}

func (n *notifier) subscribe(fn func(ChangeEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(ChangeEvent))
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) publish(ev ChangeEvent) {
	n.mu.Lock()
	fns := make([]func(ChangeEvent), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Collection persists an ordered sequence of records of one entity type under
// a single key. Load always yields a usable snapshot: a missing key gives the
// seed (or an empty slice), corrupt stored JSON is logged and treated as no
// data rather than failing startup.
type Collection[T Record] struct {
	kv   KV
	key  string
	seed func() []T
	n    notifier
}

func NewCollection[T Record](kv KV, key string) *Collection[T] {
	return &Collection[T]{kv: kv, key: key}
}

// WithSeed sets the records returned the first time the key is read.
func (c *Collection[T]) WithSeed(seed func() []T) *Collection[T] {
	c.seed = seed
	return c
}

func (c *Collection[T]) Key() string { return c.key }

// Load reads the full collection. The returned error is only non-nil for
// substrate failures (backend unreachable); absent or corrupt data is not
// an error.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	data, err := c.kv.Get(ctx, c.key)
	if err == ErrKeyNotFound {
		if c.seed != nil {
			return c.seed(), nil
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Str("key", c.key).Err(err).Msg("corrupt collection, treating as empty")
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save replaces the whole collection and notifies subscribers.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := c.kv.Set(ctx, c.key, data); err != nil {
		return err
	}
	c.n.publish(ChangeEvent{Key: c.key, Action: ActionSave, Count: len(records)})
	return nil
}

// Clear removes the collection and notifies subscribers.
func (c *Collection[T]) Clear(ctx context.Context) error {
	if err := c.kv.Delete(ctx, c.key); err != nil {
		return err
	}
	c.n.publish(ChangeEvent{Key: c.key, Action: ActionClear})
	return nil
}

// Subscribe registers fn for change events and returns its disposer.
func (c *Collection[T]) Subscribe(fn func(ChangeEvent)) func() {
	return c.n.subscribe(fn)
}

// Value persists a single document (preferences, backup config) under one key.
type Value[T any] struct {
	kv  KV
	key string
}

func NewValue[T any](kv KV, key string) *Value[T] {
	return &Value[T]{kv: kv, key: key}
}

// Load reads the value; ok is false when nothing was ever saved.
func (v *Value[T]) Load(ctx context.Context) (T, bool, error) {
	var out T
	data, err := v.kv.Get(ctx, v.key)
	if err == ErrKeyNotFound {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		log.Warn().Str("key", v.key).Err(err).Msg("corrupt value, treating as unset")
		return out, false, nil
	}
	return out, true, nil
}

func (v *Value[T]) Save(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return v.kv.Set(ctx, v.key, data)
}
