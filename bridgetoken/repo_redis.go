package bridgetoken

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dottapps/auth-gateway/internal/errors"
)

const (
	liveKeyPrefix     = "bridge:"
	consumedKeyPrefix = "bridge:consumed:"
)

// redeemScript moves a token from its live key to a consumed tombstone
// in one atomic step, so concurrent duplicate submissions cannot both
// observe it as unconsumed. Returns {0, payload} on first redemption,
// {1, payload} on a replay against the tombstone, {2} when neither key
// exists.
var redeemScript = redis.NewScript(`
local live = redis.call('GET', KEYS[1])
if live then
  redis.call('SET', KEYS[2], live, 'PX', ARGV[1])
  redis.call('DEL', KEYS[1])
  return {0, live}
end
local consumed = redis.call('GET', KEYS[2])
if consumed then
  return {1, consumed}
end
return {2, ''}
`)

// RedisRepo implements Repo on Redis for multi-instance deployments.
type RedisRepo struct {
	client *redis.Client
	window time.Duration
	nowFn  func() time.Time
}

// NewRedisRepo creates a Redis-backed bridge token repository with the
// given freshness window.
func NewRedisRepo(client *redis.Client, window time.Duration) *RedisRepo {
	return &RedisRepo{client: client, window: window, nowFn: time.Now}
}

var _ Repo = (*RedisRepo)(nil)

// Issue stores a freshly minted token under its value with the window
// as TTL.
func (r *RedisRepo) Issue(ctx context.Context, token *Token) error {
	if token == nil || token.Value == "" {
		return errors.Wrapf(errors.ErrInternal, "[RedisRepo Issue] empty token")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return errors.Wrapf(err, "[RedisRepo Issue] marshal token")
	}
	return r.client.Set(ctx, liveKeyPrefix+token.Value, data, r.window).Err()
}

// Redeem consumes a token, idempotently within the freshness window.
func (r *RedisRepo) Redeem(ctx context.Context, value string) (*Token, bool, error) {
	if value == "" {
		return nil, false, errors.ErrTokenNotFound
	}

	// Tombstones outlive the window so late replays are reported as
	// replays rather than unknown tokens.
	tombstoneTTL := 4 * r.window
	res, err := redeemScript.Run(ctx, r.client,
		[]string{liveKeyPrefix + value, consumedKeyPrefix + value},
		tombstoneTTL.Milliseconds(),
	).Slice()
	if err != nil {
		return nil, false, errors.Wrapf(err, "[RedisRepo Redeem] script")
	}
	if len(res) == 0 {
		return nil, false, errors.ErrTokenNotFound
	}

	outcome, _ := res[0].(int64)
	if outcome == 2 {
		return nil, false, errors.ErrTokenNotFound
	}

	payload, _ := res[1].(string)
	var token Token
	if err := json.Unmarshal([]byte(payload), &token); err != nil {
		return nil, false, errors.Wrapf(err, "[RedisRepo Redeem] unmarshal token")
	}

	if r.nowFn().Sub(token.IssuedAt) > r.window {
		if outcome == 1 {
			return nil, false, errors.ErrTokenReplayed
		}
		return nil, false, errors.ErrTokenExpired
	}
	return &token, outcome == 1, nil
}
