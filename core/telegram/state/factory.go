package state

import (
	"fmt"
	"time"

	coreconfig "jobbot/core/config"
)

// NewManager builds the session manager selected by configuration.
func NewManager(cfg coreconfig.SessionConfig) (Manager, error) {
	switch cfg.Backend {
	case "", coreconfig.SessionMemory:
		return NewMemoryManager(), nil
	case coreconfig.SessionRedis:
		mgr, err := NewRedisManager(RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      time.Duration(cfg.Redis.TTLSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("state: redis backend: %w", err)
		}
		return mgr, nil
	default:
		return nil, fmt.Errorf("state: unknown session backend %q", cfg.Backend)
	}
}
