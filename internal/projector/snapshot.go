package projector

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshot é a projeção de leitura do bankroll mantida no Redis para os
// dashboards. É derivada dos eventos ledger_appended; a fonte de verdade
// continua sendo o Postgres.
type Snapshot struct {
	CurrentCents   int64  `json:"current_cents"`
	AvailableCents int64  `json:"available_cents"`
	LastEntryID    string `json:"last_entry_id"`
	TsUnixMs       int64  `json:"ts_unix_ms"`
}

const snapshotKey = "bankroll:snapshot"

// RedisSnapshotStore guarda o snapshot corrente do bankroll no Redis.
type RedisSnapshotStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSnapshotStore(c *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{Client: c, TTL: ttl}
}

// Set grava o snapshot com TTL definido.
func (r *RedisSnapshotStore) Set(ctx context.Context, s Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, snapshotKey, b, r.TTL).Err()
}

// Get lê o snapshot corrente; devolve redis.Nil quando não há snapshot.
func (r *RedisSnapshotStore) Get(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	b, err := r.Client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(b, &s)
	return s, err
}
