package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"github.com/sirupsen/logrus"
)

// Tiered cache is a cache implementation combining a local & remote cache
type TieredCache struct {
	localGoCache *freecache.Cache
	remoteCache  RemoteCache
	logger       logrus.FieldLogger
}

type cachedValue struct {
	Version uint64      `json:"i"`
	Timeout uint64      `json:"t"`
	Value   interface{} `json:"v"`
}

var ErrCacheMiss = errors.New("cache miss")

type RemoteCache interface {
	SetBytes(ctx context.Context, key string, value []byte, expiration time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewTieredCache creates a local cache of cacheSize MB, backed by redis when redisAddress is set
func NewTieredCache(cacheSize int, redisAddress string, redisPrefix string) (*TieredCache, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	logger := logrus.StandardLogger().WithField("module", "cache")

	var remoteCache RemoteCache
	if redisAddress != "" {
		var err error
		remoteCache, err = InitRedisCache(ctx, redisAddress, redisPrefix)
		if err != nil {
			logger.WithError(err).Errorf("error initializing remote redis cache. address: %v", redisAddress)
			return nil, err
		}
	}

	return newTieredCache(cacheSize, remoteCache, logger), nil
}

func newTieredCache(cacheSize int, remoteCache RemoteCache, logger logrus.FieldLogger) *TieredCache {
	if cacheSize <= 0 {
		cacheSize = 10
	}
	return &TieredCache{
		remoteCache:  remoteCache,
		localGoCache: freecache.NewCache(cacheSize * 1024 * 1024),
		logger:       logger,
	}
}

func (cache *TieredCache) Set(key string, value interface{}, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	cacheValue := cachedValue{
		Version: 1,
		Value:   value,
	}
	if expiration > 0 {
		cacheValue.Timeout = uint64(time.Now().Add(expiration).Unix())
	}

	valueMarshal, err := json.Marshal(cacheValue)
	if err != nil {
		return err
	}
	err = cache.localGoCache.Set([]byte(key), valueMarshal, int(expiration.Seconds()))
	if err != nil {
		return err
	}
	if cache.remoteCache != nil {
		return cache.remoteCache.SetBytes(ctx, key, valueMarshal, expiration)
	}
	return nil
}

func (cache *TieredCache) Get(key string, returnValue interface{}) (interface{}, error) {
	cacheValue := &cachedValue{
		Value: returnValue,
	}

	// try to retrieve the key from the local cache
	wanted, err := cache.localGoCache.Get([]byte(key))
	if err == nil {
		err = json.Unmarshal(wanted, cacheValue)
		if err != nil {
			cache.logger.WithError(err).WithField("key", key).Error("error unmarshalling data for key")
			cache.localGoCache.Del([]byte(key))
			return nil, err
		}

		return returnValue, nil
	}

	if cache.remoteCache == nil {
		return nil, ErrCacheMiss
	}

	// retrieve the key from the remote cache
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	wanted, err = cache.remoteCache.GetBytes(ctx, key)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(wanted, cacheValue)
	if err != nil {
		cache.logger.WithError(err).WithField("key", key).Error("error unmarshalling remote data for key")
		cache.remoteCache.Delete(ctx, key)
		return nil, err
	}

	if cacheValue.Timeout == 0 || cacheValue.Timeout > uint64(time.Now().Add(2*time.Second).Unix()) {
		var timeout uint64
		if cacheValue.Timeout != 0 {
			timeout = cacheValue.Timeout - uint64(time.Now().Unix())
		}
		cache.localGoCache.Set([]byte(key), wanted, int(timeout))
	}
	return returnValue, nil
}
