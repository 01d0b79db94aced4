// Package redis provides a Redis extension for unchained applications.
//
// The extension wraps a [github.com/redis/go-redis/v9] client. It connects
// when the extensions hook initializes it, retrying transient failures,
// contributes a readiness check and closes the client on shutdown.
//
// # Configuration
//
// Config carries yaml and env tags:
//
//	REDIS_URL            - redis:// or rediss:// URL
//	REDIS_POOL_SIZE      - Maximum connections (default: 10)
//	REDIS_MIN_IDLE_CONNS - Minimum idle connections (default: 5)
//	REDIS_RETRY_ATTEMPTS - Connection attempts (default: 3)
//	REDIS_RETRY_INTERVAL - Base retry interval (default: 5s)
//
// # Usage
//
//	cfg, err := redis.ConfigFromEnv()
//	if err != nil {
//		return err
//	}
//
//	var Bundle = &unchained.Bundle{
//		Type:   "CacheBundle",
//		Module: "cache",
//		Extensions: []unchained.ExtensionEntry{
//			{Name: redis.Name, Extension: redis.New(cfg)},
//		},
//	}
//
// Views reach the client through the request context:
//
//	ext, _ := unchained.ExtensionAs[*redis.Extension](c, redis.Name)
//	hits, err := ext.Client().Incr(c, "hits").Result()
package redis
