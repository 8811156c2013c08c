package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisCache struct {
	redisRemoteCache *redis.Client
	keyPrefix        string
}

func InitRedisCache(ctx context.Context, redisAddress string, keyPrefix string) (*RedisCache, error) {
	rdc := redis.NewClient(&redis.Options{
		Addr:        redisAddress,
		ReadTimeout: time.Second * 20,
	})

	if err := rdc.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	r := &RedisCache{
		redisRemoteCache: rdc,
		keyPrefix:        keyPrefix,
	}
	return r, nil
}

func (cache *RedisCache) key(key string) string {
	return fmt.Sprintf("%s%s", cache.keyPrefix, key)
}

func (cache *RedisCache) SetBytes(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return cache.redisRemoteCache.Set(ctx, cache.key(key), value, expiration).Err()
}

func (cache *RedisCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	value, err := cache.redisRemoteCache.Get(ctx, cache.key(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (cache *RedisCache) Delete(ctx context.Context, key string) error {
	return cache.redisRemoteCache.Del(ctx, cache.key(key)).Err()
}

func (cache *RedisCache) Close() error {
	return cache.redisRemoteCache.Close()
}
