package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fvicente/mazmorra/internal/errors"
)

const (
	snapshotKeyPrefix = "game:session:"
	snapshotIndexKey  = "game:sessions"

	// Saved games keep for 30 days of inactivity.
	defaultSnapshotTTL = 30 * 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository.
type RedisRepoConfig struct {
	Client      redis.UniversalClient
	SnapshotTTL time.Duration
}

// redisRepository implements Repository using Redis.
type redisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRepository creates a new Redis-backed session repository.
func NewRedisRepository(cfg *RedisRepoConfig) (Repository, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, errors.InvalidArgument("redis client is required")
	}
	ttl := cfg.SnapshotTTL
	if ttl == 0 {
		ttl = defaultSnapshotTTL
	}
	return &redisRepository{client: cfg.Client, ttl: ttl}, nil
}

// Create stores a new snapshot.
func (r *redisRepository) Create(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.InvalidArgument("snapshot cannot be nil")
	}
	if snap.ID == "" {
		return errors.InvalidArgument("snapshot ID cannot be empty")
	}

	key := snapshotKeyPrefix + snap.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "failed to check session existence")
	}
	if exists > 0 {
		return errors.AlreadyExistsf("session %s already exists", snap.ID)
	}

	now := time.Now()
	snap.CreatedAt = now
	snap.UpdatedAt = now

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "failed to serialize snapshot")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, string(data), r.ttl)
	pipe.SAdd(ctx, snapshotIndexKey, snap.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to create session")
	}
	return nil
}

// Get retrieves a snapshot by ID, refreshing its TTL.
func (r *redisRepository) Get(ctx context.Context, id string) (*Snapshot, error) {
	key := snapshotKeyPrefix + id

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("session %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to get session")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize snapshot")
	}

	r.client.Expire(ctx, key, r.ttl)
	return &snap, nil
}

// Update replaces an existing snapshot.
func (r *redisRepository) Update(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.InvalidArgument("snapshot cannot be nil")
	}
	if snap.ID == "" {
		return errors.InvalidArgument("snapshot ID cannot be empty")
	}

	existing, err := r.Get(ctx, snap.ID)
	if err != nil {
		return err
	}

	snap.CreatedAt = existing.CreatedAt
	snap.UpdatedAt = time.Now()

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "failed to serialize snapshot")
	}

	if err := r.client.Set(ctx, snapshotKeyPrefix+snap.ID, data, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to update session")
	}
	return nil
}

// Delete removes a snapshot and its index entry.
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, snapshotKeyPrefix+id)
	pipe.SRem(ctx, snapshotIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}
	return nil
}

// List returns all stored snapshots. Index entries whose snapshot expired
// are skipped.
func (r *redisRepository) List(ctx context.Context) ([]*Snapshot, error) {
	ids, err := r.client.SMembers(ctx, snapshotIndexKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}
	if len(ids) == 0 {
		return []*Snapshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = snapshotKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}

	snapshots := make([]*Snapshot, 0, len(values))
	for _, val := range values {
		data, ok := val.(string)
		if !ok {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			continue
		}
		snapshots = append(snapshots, &snap)
	}
	return snapshots, nil
}
