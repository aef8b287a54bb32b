package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trip-tracker/internal/ports"
)

// KVStore keeps JSON documents in the kv_store table.
type KVStore struct {
	pool *pgxpool.Pool
}

// NewKVStore constructs a KVStore on pool.
func NewKVStore(pool *pgxpool.Pool) ports.KeyValueStore {
	return &KVStore{pool: pool}
}

// Get returns the raw JSON stored under key.
func (store *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := querier(ctx, store.pool).QueryRow(ctx,
		`SELECT value FROM kv_store WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

// Put upserts value under key. value must be valid JSON.
func (store *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("kv put %q: value is not valid JSON", key)
	}
	_, err := querier(ctx, store.pool).Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}
