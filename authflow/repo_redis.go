package authflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dottapps/auth-gateway/internal/errors"
)

const redisKeyPrefix = "authflow:"

// RedisRepo implements Repo on Redis so multiple gateway instances can
// share flow state. Expiry is enforced by the key TTL; single use is
// enforced with GETDEL.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepo creates a Redis-backed transaction repository.
func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

// Upsert stores a transaction under its state value with the flow TTL.
func (r *RedisRepo) Upsert(ctx context.Context, txn *Transaction) error {
	if txn == nil || txn.State == "" {
		return errors.Wrapf(errors.ErrInternal, "[RedisRepo Upsert] empty transaction")
	}

	data, err := json.Marshal(txn)
	if err != nil {
		return errors.Wrapf(err, "[RedisRepo Upsert] marshal transaction")
	}
	return r.client.Set(ctx, redisKeyPrefix+txn.State, data, r.ttl).Err()
}

// Consume atomically fetches and deletes the transaction for a state.
func (r *RedisRepo) Consume(ctx context.Context, state string) (*Transaction, error) {
	if state == "" {
		return nil, errors.ErrFlowStateMissing
	}

	data, err := r.client.GetDel(ctx, redisKeyPrefix+state).Result()
	if err == redis.Nil {
		return nil, errors.ErrFlowStateMissing
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[RedisRepo Consume] getdel")
	}

	var txn Transaction
	if err := json.Unmarshal([]byte(data), &txn); err != nil {
		return nil, errors.Wrapf(err, "[RedisRepo Consume] unmarshal transaction")
	}
	return &txn, nil
}
