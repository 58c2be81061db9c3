package config

// Redis backs the distributed rate limiter and the payment webhook
// de-duplication. When the server is unreachable at startup the client is
// nil and callers degrade gracefully: no rate limiting, and webhook
// idempotency relies on the membership transition alone.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// RedisConfig is read from REDIS_* variables. REDIS_HOST and REDIS_PORT take
// precedence over the REDIS_ADDR shorthand when both are set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

func setRedisDefaults(v *viper.Viper) {
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_tls", false)
}

func loadRedisConfig(v *viper.Viper) RedisConfig {
	addr := v.GetString("redis_addr")
	if host, port := v.GetString("redis_host"), v.GetString("redis_port"); host != "" && port != "" {
		addr = host + ":" + port
	}
	return RedisConfig{
		Addr:     addr,
		Password: v.GetString("redis_password"),
		DB:       v.GetInt("redis_db"),
		TLS:      v.GetBool("redis_tls"),
	}
}

// NewRedisClient connects using cfg and pings the server. The returned
// client is nil if a connection cannot be established.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	// Ping the server with a short timeout. Return nil on failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
