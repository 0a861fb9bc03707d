package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Connect builds a universal client for a comma separated address list and
// verifies it answers PING.
func Connect(ctx context.Context, addrs string) (goredis.UniversalClient, error) {
	list := splitAddrs(addrs)
	if len(list) == 0 {
		return nil, fmt.Errorf("redis address is empty")
	}
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: list})
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// ConnectOrFallback returns nil with a no-op cleanup when addrs is empty or
// unreachable, so callers keep payment references in memory.
func ConnectOrFallback(ctx context.Context, addrs string, logger *slog.Logger) (goredis.UniversalClient, func()) {
	if strings.TrimSpace(addrs) == "" {
		if logger != nil {
			logger.Warn("REDIS_ADDR not set, keeping payment references in memory")
		}
		return nil, func() {}
	}
	client, err := Connect(ctx, addrs)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to connect to redis, keeping payment references in memory", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("redis connection established", slog.String("addrs", addrs))
	}
	return client, func() { _ = client.Close() }
}

func splitAddrs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
