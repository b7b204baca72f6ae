package factory

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Vijaykv5/Intereractive-GD/internal/config"
	"github.com/Vijaykv5/Intereractive-GD/internal/turn"
)

// NewTurnStore returns the turn state backend and a release function.
func NewTurnStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (turn.Store, func(), error) {
	initial, err := turn.Parse(cfg.InitialTurn)
	if err != nil {
		return nil, nil, err
	}
	switch cfg.TurnStore {
	case "memory":
		return turn.NewMemoryStore(initial), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		log.Debug().Str("addr", cfg.RedisAddr).Str("prefix", cfg.RedisPrefix).Dur("ttl", cfg.TurnTTL).Msg("redis turn store ready")
		st := turn.NewRedisStore(client, initial, turn.WithTTL(cfg.TurnTTL), turn.WithPrefix(cfg.RedisPrefix))
		return st, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown TURN_STORE: %s", cfg.TurnStore)
	}
}
