package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "content:"

// ContentCache stores content query results and indexes them by invalidation tag.
// Each tag is a Redis set holding the keys cached under it.
type ContentCache struct {
	client *redis.Client
	prefix string
}

// NewContentCache creates a cache on client. An empty prefix selects "content:".
func NewContentCache(client *redis.Client, prefix string) *ContentCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &ContentCache{client: client, prefix: prefix}
}

// Get returns the cached value of key; ok is false on a miss
func (c *ContentCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis content cache get: %w", err)
	}
	return val, true, nil
}

// setWithTagsScript stores an entry and registers it under each tag index.
// An index TTL only grows, so it always outlives the entries it points to.
// KEYS[1] = entry key, KEYS[2..n] = tag index keys
// ARGV[1] = value, ARGV[2] = TTL in milliseconds (0 = no expiry)
const setWithTagsScript = `
local ttl = tonumber(ARGV[2])
if ttl > 0 then
    redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
else
    redis.call('SET', KEYS[1], ARGV[1])
end
for i = 2, #KEYS do
    local current = redis.call('PTTL', KEYS[i])
    redis.call('SADD', KEYS[i], KEYS[1])
    if ttl <= 0 then
        redis.call('PERSIST', KEYS[i])
    elseif current == -2 or (current >= 0 and current < ttl) then
        redis.call('PEXPIRE', KEYS[i], ttl)
    end
end
return 1
`

// Set stores value under key for ttl and registers key under every tag.
// A ttl of zero keeps the entry until it is invalidated.
func (c *ContentCache) Set(ctx context.Context, key string, value []byte, tags []string, ttl time.Duration) error {
	keys := make([]string, 0, len(tags)+1)
	keys = append(keys, c.entryKey(key))
	for _, tag := range tags {
		keys = append(keys, c.tagKey(tag))
	}

	ttlMillis := ttl.Milliseconds()
	if ttl > 0 && ttlMillis == 0 {
		ttlMillis = 1
	}
	if ttlMillis < 0 {
		ttlMillis = 0
	}

	if err := c.client.Eval(ctx, setWithTagsScript, keys, value, ttlMillis).Err(); err != nil {
		return fmt.Errorf("redis content cache set: %w", err)
	}
	return nil
}

// InvalidateTags deletes every entry cached under one of tags and returns how many were removed
func (c *ContentCache) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	removed := 0
	for _, tag := range tags {
		tagKey := c.tagKey(tag)
		members, err := c.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			return removed, fmt.Errorf("redis content cache invalidate %s: %w", tag, err)
		}
		keys := append(members, tagKey)
		n, err := c.client.Del(ctx, keys...).Result()
		if err != nil {
			return removed, fmt.Errorf("redis content cache invalidate %s: %w", tag, err)
		}
		// Del also counts the tag set itself, which exists whenever it has members
		if len(members) > 0 {
			n--
		}
		removed += int(n)
	}
	return removed, nil
}

func (c *ContentCache) entryKey(key string) string {
	return c.prefix + "entry:" + key
}

func (c *ContentCache) tagKey(tag string) string {
	return c.prefix + "tag:" + tag
}
